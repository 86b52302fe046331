package schemas

// CustomError is a struct that represents a custom error
// Code is the error code, e.g. ERR-001
// Message is the error message stated by the API contract
type CustomError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	BadRequest = &CustomError{
		Code:    "ERR-001",
		Message: "The request body is invalid. Please check the request body and try again.",
	}
	EmailTaken = &CustomError{
		Code:    "ERR-002",
		Message: "The email is already taken.",
	}
	PhoneTaken = &CustomError{
		Code:    "ERR-003",
		Message: "The phone number is already taken.",
	}
	UserNotFound = &CustomError{
		Code:    "ERR-004",
		Message: "The user was not found.",
	}
	InvalidCredentials = &CustomError{
		Code:    "ERR-005",
		Message: "The credentials are invalid.",
	}
	UserNotVerified = &CustomError{
		Code:    "ERR-006",
		Message: "The account is not verified yet. Please verify your email first.",
	}
	UserAlreadyVerified = &CustomError{
		Code:    "ERR-007",
		Message: "The account is already verified.",
	}
	InvalidCode = &CustomError{
		Code:    "ERR-008",
		Message: "The verification code is incorrect.",
	}
	CodeExpired = &CustomError{
		Code:    "ERR-009",
		Message: "The verification code has expired. Please request a new one.",
	}
	MaxAttemptsExceeded = &CustomError{
		Code:    "ERR-010",
		Message: "Too many failed attempts for this code. Please request a new one.",
	}
	RateLimitExceeded = &CustomError{
		Code:    "ERR-011",
		Message: "Too many verification codes requested. Please try again later.",
	}
	CodeGenerationFailed = &CustomError{
		Code:    "ERR-012",
		Message: "A verification code could not be generated. Please try again.",
	}
	LinkExpired = &CustomError{
		Code:    "ERR-013",
		Message: "The verification link has expired. Please request a new one.",
	}
	LinkMalformed = &CustomError{
		Code:    "ERR-014",
		Message: "The verification link is invalid.",
	}
	Unauthorized = &CustomError{
		Code:    "ERR-015",
		Message: "The request is unauthorized. Please login to your account.",
	}
	PropertyNotFound = &CustomError{
		Code:    "ERR-016",
		Message: "The property was not found.",
	}
	PropertyUnmanaged = &CustomError{
		Code:    "ERR-017",
		Message: "The property has no managing agent and cannot be booked.",
	}
	TenantRequired = &CustomError{
		Code:    "ERR-018",
		Message: "A tenant must be specified for this booking.",
	}
	BookingNotFound = &CustomError{
		Code:    "ERR-019",
		Message: "The booking was not found.",
	}
	InvalidStatusTransition = &CustomError{
		Code:    "ERR-020",
		Message: "The requested status change is not allowed from the current status.",
	}
	BookingConflict = &CustomError{
		Code:    "ERR-021",
		Message: "The booking was modified concurrently. Please reload and try again.",
	}
	DatabaseError = &CustomError{
		Code:    "ERR-022",
		Message: "The database encountered an error. Please try again later.",
	}
	InternalServerError = &CustomError{
		Code:    "ERR-023",
		Message: "The server encountered an error. Please try again later.",
	}
	EmailNotSent = &CustomError{
		Code:    "ERR-024",
		Message: "The email could not be sent. Please try again later.",
	}
	EmailUnreachable = &CustomError{
		Code:    "ERR-025",
		Message: "The email address appears to be unreachable.",
	}
)
