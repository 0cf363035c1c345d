package services

import (
	"errors"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
)

// Sentinel errors returned by the services. Controllers map them to HTTP
// statuses with errors.Is; the wrapped message is safe to show to callers.
var (
	ErrEmptyIngredientList = errors.New("at least one ingredient is required")
	ErrDuplicateIngredient = errors.New("ingredients must not repeat")
	ErrUnknownIngredient   = errors.New("ingredient does not exist")
	ErrInvalidAmount       = errors.New("ingredient amount is below the minimum")
	ErrInvalidCookingTime  = errors.New("cooking time is below the minimum")
	ErrInvalidImage        = errors.New("image must be a base64 encoded data URI")

	ErrAlreadyExists    = errors.New("already exists")
	ErrNotFound         = errors.New("not found")
	ErrSelfSubscription = models.ErrSelfSubscription
	ErrEmptyCart        = errors.New("shopping cart is empty")

	ErrForbidden          = errors.New("only the author may change this recipe")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ErrNotLinked is the NotFound flavour raised when removing a relationship
// that does not exist. It is a state conflict rather than a missing resource.
var ErrNotLinked = withMessage(ErrNotFound, "relationship does not exist")

// detailedError keeps a sentinel kind reachable through errors.Is while
// replacing its text with a more specific message.
type detailedError struct {
	kind error
	msg  string
}

func (e *detailedError) Error() string {
	return e.msg
}

func (e *detailedError) Unwrap() error {
	return e.kind
}

func withMessage(kind error, msg string) error {
	return &detailedError{kind: kind, msg: msg}
}
