package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("Not authenticated")
	ErrNotFound        = errors.New("Resource not found")
	ErrConflict        = errors.New("Resource already exists")
)

// DenyReason names the policy rule that rejected an operation.
type DenyReason string

const (
	ReasonMaterialRestricted  DenyReason = "MaterialRestricted"
	ReasonLandlordNotApproved DenyReason = "LandlordNotApproved"
	ReasonNotOwner            DenyReason = "NotOwner"
	ReasonInsufficientRole    DenyReason = "InsufficientRole"
)

var denyMessages = map[DenyReason]string{
	ReasonMaterialRestricted:  "Only Admins and Managers can list construction materials",
	ReasonLandlordNotApproved: "Landlord account is awaiting approval",
	ReasonNotOwner:            "User not authorized to modify this listing",
	ReasonInsufficientRole:    "User is Forbidden from performing this action",
}

// DeniedError is returned when the authorization policy rejects an operation.
type DeniedError struct {
	Reason DenyReason
}

func (e *DeniedError) Error() string {
	if msg, ok := denyMessages[e.Reason]; ok {
		return msg
	}
	return string(e.Reason)
}

// Deny builds a DeniedError for reason.
func Deny(reason DenyReason) error {
	return &DeniedError{Reason: reason}
}

// IsDenied reports whether err is a DeniedError and returns its reason.
func IsDenied(err error) (DenyReason, bool) {
	var d *DeniedError
	if errors.As(err, &d) {
		return d.Reason, true
	}
	return "", false
}

// ValidationError reports a malformed payload field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// StorageError wraps an underlying persistence failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Storage wraps err as a StorageError, passing nil and domain errors through.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
