// Package schemas defines the request structures for various operations in the application.
package schemas

// RegistrationRequest is a struct that represents a registration request
// FullName is required and must be less than 60 characters
// Email is required and must be a valid email
// Phone is required and must be a valid phone number
// Password is required and must be at least 8 characters
// Role is required and must be student or agent
type RegistrationRequest struct {
	FullName string `json:"fullName" validate:"required,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,phone_validation"`
	Password string `json:"password" validate:"required,min=8,password_validation"`
	Role     string `json:"role" validate:"required,oneof=student agent"`
}

// LoginRequest is a struct that represents a login request
// Email is required and must be a valid email
// Password is required and must be at least 8 characters
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// VerifyCodeRequest is a struct that represents a code verification request
// Email is required and must be a valid email
// Code is required and must be a 6-digit number
type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,numeric,len=6"`
}

// ResendCodeRequest is a struct that represents a code resend request
// Email is required and must be a valid email
type ResendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPasswordRequest is a struct that represents a forgot password request
// Email is required and must be a valid email
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is a struct that represents a password reset request
// Email is required and must be a valid email
// Code is required and must be a 6-digit number
// NewPassword is required and must be at least 8 characters
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,numeric,len=6"`
	NewPassword string `json:"newPassword" validate:"required,min=8,password_validation"`
}

// ChangePasswordRequest is a struct that represents a password change request
// OldPassword is required and must be at least 8 characters
// NewPassword is required and must be at least 8 characters
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required,min=8"`
	NewPassword string `json:"newPassword" validate:"required,min=8,password_validation"`
}

// UpdateProfileRequest is a struct that represents a profile update request
// FullName is required and must be less than 60 characters
// Phone is required and must be a valid phone number
type UpdateProfileRequest struct {
	FullName string `json:"fullName" validate:"required,max=60"`
	Phone    string `json:"phone" validate:"required,phone_validation"`
}

// CreatePropertyRequest is a struct that represents a property creation request
// Title, Location, Price and RoomType are required
type CreatePropertyRequest struct {
	Title       string   `json:"title" validate:"required,max=120"`
	Location    string   `json:"location" validate:"required,max=200"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	RoomType    string   `json:"roomType" validate:"required,max=40"`
	Images      []string `json:"images" validate:"dive,url"`
	Amenities   []string `json:"amenities" validate:"dive,max=60"`
	IsAvailable *bool    `json:"isAvailable"`
}

// UpdatePropertyRequest is a struct that represents a property update request
type UpdatePropertyRequest struct {
	Title       string   `json:"title" validate:"required,max=120"`
	Location    string   `json:"location" validate:"required,max=200"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	RoomType    string   `json:"roomType" validate:"required,max=40"`
	Images      []string `json:"images" validate:"dive,url"`
	Amenities   []string `json:"amenities" validate:"dive,max=60"`
	IsAvailable *bool    `json:"isAvailable"`
}

// CreateBookingRequest is a struct that represents a booking creation request
// PropertyId, PropertyType, MoveInDate, Duration, Gender and Amount are required.
// Tenant is required when the caller is an agent and ignored for students.
type CreateBookingRequest struct {
	PropertyId     string  `json:"propertyId" validate:"required,uuid"`
	Tenant         string  `json:"tenant" validate:"omitempty,uuid"`
	PropertyType   string  `json:"propertyType" validate:"required,max=40"`
	MoveInDate     string  `json:"moveInDate" validate:"required,datetime=2006-01-02"`
	MoveOutDate    string  `json:"moveOutDate" validate:"omitempty,datetime=2006-01-02"`
	Duration       string  `json:"duration" validate:"required,max=60"`
	Gender         string  `json:"gender" validate:"required,oneof=male female other"`
	SpecialRequest string  `json:"specialRequest" validate:"max=500"`
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	PaymentStatus  string  `json:"paymentStatus" validate:"omitempty,oneof=pending paid refunded"`
}

// UpdateBookingStatusRequest is a struct that represents a booking status update request
// Status is required and must be a valid booking status
type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled completed"`
}
