package domain

import (
	"errors"
	"fmt"
)

// DomainError marks permanent business rejections, as opposed to retryable
// infrastructure failures which are plain wrapped errors.
type DomainError interface {
	error
	DomainError()
}

// IsDomainError reports whether err is (or wraps) a business rejection.
func IsDomainError(err error) bool {
	var de DomainError
	return errors.As(err, &de)
}

type notAuthenticatedError struct{}

func (notAuthenticatedError) Error() string { return "you must be logged in" }
func (notAuthenticatedError) DomainError() {}

// ErrNotAuthenticated is returned when an operation is attempted without a principal.
var ErrNotAuthenticated error = notAuthenticatedError{}

type emptyOrderError struct{}

func (emptyOrderError) Error() string { return "order must have at least one line" }
func (emptyOrderError) DomainError() {}

// ErrEmptyOrder is returned when an order proposal carries no lines.
var ErrEmptyOrder error = emptyOrderError{}

type invalidCredentialsError struct{}

func (invalidCredentialsError) Error() string { return "invalid username or password" }
func (invalidCredentialsError) DomainError() {}

// ErrInvalidCredentials is returned on any failed login attempt. The message
// deliberately does not distinguish unknown users from wrong passwords.
var ErrInvalidCredentials error = invalidCredentialsError{}

// PermissionDeniedError is raised when the policy matrix rejects an action.
type PermissionDeniedError struct {
	Module string
	Action string
	Reason string
}

func (e PermissionDeniedError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("you do not have permission to %s %s", e.Action, e.Module)
}
func (PermissionDeniedError) DomainError() {}

// NotFoundError is raised when a referenced entity row does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}
func (NotFoundError) DomainError() {}

// ProductNotFoundError is raised when an order line references a missing product.
type ProductNotFoundError struct {
	ProductID int64
}

func (e ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}
func (ProductNotFoundError) DomainError() {}

// InvalidQuantityError is raised when an order line quantity is not positive.
type InvalidQuantityError struct {
	ProductID int64
	Quantity  int
}

func (e InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %d, got %d", e.ProductID, e.Quantity)
}
func (InvalidQuantityError) DomainError() {}

// InsufficientStockError is raised when a line requests more stock than is on hand.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}
func (InsufficientStockError) DomainError() {}

// InvalidFieldError is raised when an input field violates an account or
// form invariant that schema validation cannot express.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
func (InvalidFieldError) DomainError() {}

// DuplicateKeyError is raised when a unique field value already exists.
type DuplicateKeyError struct {
	Field string
	Value string
}

func (e DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s '%s' already exists", e.Field, e.Value)
}
func (DuplicateKeyError) DomainError() {}
