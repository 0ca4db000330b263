package model

// Standard error codes for API responses
const (
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeInvalidAttachment  = "INVALID_ATTACHMENT"
	ErrCodeAttachmentTooLarge = "ATTACHMENT_TOO_LARGE"
	ErrCodeInvalidStatus      = "INVALID_STATUS"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeReceiptNotFound    = "RECEIPT_NOT_FOUND"
	ErrCodeInvalidRate        = "INVALID_RATE"
	ErrCodePersistence        = "PERSISTENCE_ERROR"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a business-rule violation carrying a stable error code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrMissingFields      = NewDomainError(ErrCodeMissingField, "Missing required fields: offer_id, item_name, price and username are required")
	ErrInvalidAttachment  = NewDomainError(ErrCodeInvalidAttachment, "Only image files are allowed as payment receipts")
	ErrAttachmentTooLarge = NewDomainError(ErrCodeAttachmentTooLarge, "Payment receipt must not exceed 5 MiB")
	ErrInvalidStatus      = NewDomainError(ErrCodeInvalidStatus, "Status must be one of pending, completed or failed")
	ErrOrderNotFound      = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrReceiptNotFound    = NewDomainError(ErrCodeReceiptNotFound, "Payment receipt not found")
	ErrInvalidRate        = NewDomainError(ErrCodeInvalidRate, "Rate must be a positive number")
	ErrPersistence        = NewDomainError(ErrCodePersistence, "Order could not be persisted")
)
