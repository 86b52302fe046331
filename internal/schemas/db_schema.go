// Package schemas defines the data structures
package schemas

import (
	"time"

	"github.com/google/uuid"
)

// Role values stored in the user_roles table. Exactly one role row exists
// per user, keyed by user_id.
const (
	RoleStudent = "student"
	RoleAgent   = "agent"
	RoleAdmin   = "admin"
)

// Token purposes. A pending token is only authoritative for its purpose.
const (
	PurposeEmailVerification = "emailVerification"
	PurposeLogin             = "login"
	PurposeResetPassword     = "resetPassword"
)

// Token statuses. Only pending tokens are eligible for verification;
// verified and expired are terminal.
const (
	TokenPending  = "pending"
	TokenVerified = "verified"
	TokenExpired  = "expired"
)

// Booking statuses.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// Payment statuses.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// User represents the data model for a user in the system.
type User struct {
	ID         *uuid.UUID `json:"id"`          // Unique identifier for the user.
	FullName   string     `json:"full_name"`   // Full name of the user.
	Email      string     `json:"email"`       // Email address, unique, stored lower-cased.
	Phone      string     `json:"phone"`       // Phone number, unique.
	Password   string     `json:"password"`    // Password hash of the user.
	VerifiedAt *time.Time `json:"verified_at"` // Timestamp when the email was verified.
	CreatedAt  *time.Time `json:"created_at"`  // Timestamp when the user was created.
}

// UserRole is the one-to-one role record for a user.
type UserRole struct {
	UserID *uuid.UUID `json:"user_id"` // Identifier of the user owning this role.
	Role   string     `json:"role"`    // One of student, agent, admin.
}

// Token represents a single-use, time-limited verification code.
type Token struct {
	ID        *uuid.UUID `json:"id"`         // Unique identifier for the token.
	UserID    *uuid.UUID `json:"user_id"`    // Identifier of the owning user.
	Purpose   string     `json:"purpose"`    // One of the Purpose* constants.
	Code      string     `json:"code"`       // 6-digit code string.
	Email     string     `json:"email"`      // Denormalized owner email for lookups.
	ExpiresAt *time.Time `json:"expires_at"` // Timestamp when the code expires.
	Attempts  int        `json:"attempts"`   // Failed verification attempts so far.
	Status    string     `json:"status"`     // One of the Token* status constants.
	CreatedAt *time.Time `json:"created_at"` // Timestamp when the code was issued.
}

// Property represents a housing listing managed by an agent.
type Property struct {
	ID          *uuid.UUID `json:"id"`           // Unique identifier for the property.
	AgentID     *uuid.UUID `json:"agent_id"`     // Identifier of the managing agent, may be nil.
	Title       string     `json:"title"`        // Listing title.
	Location    string     `json:"location"`     // Free-text location.
	Price       float64    `json:"price"`        // Listed price.
	RoomType    string     `json:"room_type"`    // Room type, e.g. single, shared.
	Images      []string   `json:"images"`       // Image URLs.
	Amenities   []string   `json:"amenities"`    // Amenity labels.
	IsAvailable bool       `json:"is_available"` // Whether the property can be booked.
	CreatedAt   *time.Time `json:"created_at"`   // Timestamp when the listing was created.
}

// Booking represents a tenancy request between a tenant and the property's
// agent. Agent and tenant are resolved at creation and immutable afterwards.
type Booking struct {
	ID             *uuid.UUID `json:"id"`              // Unique identifier for the booking.
	PropertyID     *uuid.UUID `json:"property_id"`     // Identifier of the booked property.
	AgentID        *uuid.UUID `json:"agent_id"`        // Agent copied from the property at creation.
	TenantID       *uuid.UUID `json:"tenant_id"`       // The renting student.
	PropertyType   string     `json:"property_type"`   // Room arrangement requested.
	MoveInDate     *time.Time `json:"move_in_date"`    // Requested move-in date.
	MoveOutDate    *time.Time `json:"move_out_date"`   // Optional move-out date.
	Duration       string     `json:"duration"`        // Free-text tenancy duration.
	Gender         string     `json:"gender"`          // Tenant gender for shared arrangements.
	SpecialRequest string     `json:"special_request"` // Optional free-text request.
	Amount         float64    `json:"amount"`          // Agreed amount.
	Status         string     `json:"status"`          // One of the Booking* constants.
	PaymentStatus  string     `json:"payment_status"`  // One of the Payment* constants.
	Version        int        `json:"version"`         // Incremented on every status update.
	CreatedAt      *time.Time `json:"created_at"`      // Timestamp when the booking was created.
	UpdatedAt      *time.Time `json:"updated_at"`      // Timestamp of the last mutation.
}
