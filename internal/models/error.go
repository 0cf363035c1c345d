package models

// APIError represents a standardized error response for the API
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error code constants
const (
	// General errors
	ErrBadRequest       = "BAD_REQUEST"
	ErrUnauthorized     = "UNAUTHORIZED"
	ErrForbidden        = "FORBIDDEN"
	ErrNotFound         = "NOT_FOUND"
	ErrConflict         = "CONFLICT"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrValidationFailed = "VALIDATION_FAILED"
	ErrPayloadTooLarge  = "PAYLOAD_TOO_LARGE"

	// Recipe errors
	ErrEmptyIngredientList = "EMPTY_INGREDIENT_LIST"
	ErrDuplicateIngredient = "DUPLICATE_INGREDIENT"
	ErrUnknownIngredient   = "UNKNOWN_INGREDIENT"
	ErrInvalidAmount       = "INVALID_AMOUNT"
	ErrInvalidCookingTime  = "INVALID_COOKING_TIME"
	ErrInvalidImage        = "INVALID_IMAGE"

	// Relationship errors
	ErrAlreadyExists        = "ALREADY_EXISTS"
	ErrNotLinked            = "NOT_LINKED"
	ErrCodeSelfSubscription = "SELF_SUBSCRIPTION"
	ErrEmptyCart            = "EMPTY_CART"

	// Account errors
	ErrInvalidCredentials = "INVALID_CREDENTIALS"
)

// NewAPIError creates a new API error with the given code and message
func NewAPIError(code, message string, details ...map[string]interface{}) APIError {
	err := APIError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// OAuth2Error represents an OAuth2 error response (RFC 6749)
type OAuth2Error struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorURI         string `json:"error_uri,omitempty"`
}

// NewOAuth2Error creates a new OAuth2 error response
func NewOAuth2Error(error, description string) OAuth2Error {
	return OAuth2Error{
		Error:            error,
		ErrorDescription: description,
	}
}
