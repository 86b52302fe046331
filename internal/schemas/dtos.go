package schemas

import "github.com/google/uuid"

// ErrorDTO is a struct that represents an error response
// Error is the custom error, see CustomError
type ErrorDTO struct {
	Error CustomError `json:"error"`
}

// MetadataDTO is a struct that represents the service metadata response
type MetadataDTO struct {
	ApiVersion  string `json:"apiVersion"`
	ApiName     string `json:"apiName"`
	PullRequest string `json:"pullRequest,omitempty"`
}

// UserDTO is a struct that represents a user response
// FullName is the full name of the user
// Email is the email of the user
// Phone is the phone number of the user
// Role is the role of the user
type UserDTO struct {
	UserId   string `json:"userId"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Verified bool   `json:"verified"`
}

// TokenDTO is a struct that represents a token response
// Token is the JWT token
type TokenDTO struct {
	Token string `json:"token"`
}

// VerificationDTO is a struct that represents a verification issuance response
// ExpiresInMinutes tells the client how long the emailed code stays valid
type VerificationDTO struct {
	Email            string `json:"email"`
	ExpiresInMinutes int    `json:"expiresInMinutes"`
}

// PropertyDTO is a struct that represents a property response
type PropertyDTO struct {
	PropertyId  string     `json:"propertyId"`
	AgentId     *uuid.UUID `json:"agentId"`
	Title       string     `json:"title"`
	Location    string     `json:"location"`
	Price       float64    `json:"price"`
	RoomType    string     `json:"roomType"`
	Images      []string   `json:"images"`
	Amenities   []string   `json:"amenities"`
	IsAvailable bool       `json:"isAvailable"`
	CreatedAt   string     `json:"createdAt"`
}

// BookingDTO is a struct that represents a booking response
type BookingDTO struct {
	BookingId      string  `json:"bookingId"`
	PropertyId     string  `json:"propertyId"`
	AgentId        string  `json:"agentId"`
	TenantId       string  `json:"tenantId"`
	PropertyType   string  `json:"propertyType"`
	MoveInDate     string  `json:"moveInDate"`
	MoveOutDate    *string `json:"moveOutDate,omitempty"`
	Duration       string  `json:"duration"`
	Gender         string  `json:"gender"`
	SpecialRequest string  `json:"specialRequest,omitempty"`
	Amount         float64 `json:"amount"`
	Status         string  `json:"status"`
	PaymentStatus  string  `json:"paymentStatus"`
	CreatedAt      string  `json:"createdAt"`
}

// BookingListDTO is a struct that represents the role-scoped booking listing
// Bookings is sorted newest first
// Count is the number of returned bookings
// LastUpdated is the most recent update timestamp across the listed bookings
type BookingListDTO struct {
	Bookings    []*BookingDTO `json:"bookings"`
	Count       int           `json:"count"`
	LastUpdated string        `json:"lastUpdated"`
}

// PaginatedResponse is a struct that represents a paginated response
// Records is the records of the response
// Pagination is the pagination of the response
type PaginatedResponse struct {
	Records    interface{} `json:"records"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination is a struct that represents a pagination
// Offset is the given offset of the pagination
// Limit is the given limit of the pagination
// Records is the total records of the pagination
type Pagination struct {
	Offset  int `json:"offset"`
	Limit   int `json:"limit"`
	Records int `json:"records"`
}
