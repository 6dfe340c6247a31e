package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is reported for any 401/403 from an authenticated call.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoSession indicates an authenticated call was attempted anonymously.
	ErrNoSession = errors.New("no active session")
	// ErrSessionExpired indicates the token expiry claim has passed.
	ErrSessionExpired = errors.New("session expired")
	// ErrMalformedCredential covers undecodable tokens and missing claims.
	ErrMalformedCredential = errors.New("malformed credential")
	// ErrAccessRestricted is an application-level rejection: the backend
	// accepted the login but the role may not use this portal.
	ErrAccessRestricted = errors.New("access restricted to professionals and admins")
	// ErrMissingProfessionalID rejects a professional account without a
	// professional profile.
	ErrMissingProfessionalID = errors.New("account is not configured as a professional")
	// ErrBusy is returned when the same action is already in flight.
	ErrBusy = errors.New("action already in progress")
	// ErrInvalidTransition rejects a status change the item cannot make.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNotFound indicates the backend has no such route or record.
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx backend response. Message holds the server's
// "error" field when it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
}

// Is lets callers match status classes with errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// TransportError wraps network failures and undecodable responses.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

// Validation codes shared by forms.
const (
	CodeCredentialsRequired = "credentials_required"
	CodeFullNameRequired    = "full_name_required"
	CodePasswordMismatch    = "password_mismatch"
	CodePasswordTooShort    = "password_too_short"
	CodeInvalidSpecialty    = "invalid_specialty"
	CodeCityRequired        = "city_required"
	CodeInvalidRegion       = "invalid_region"
	CodeInvalidSlot         = "invalid_slot"
	CodeInvalidAgeRange     = "invalid_age_range"
	CodeTemplateName        = "template_name_required"
	CodeTemplateQuestions   = "template_questions_required"
	CodeSendSelection       = "send_selection_required"
	CodeContactCode         = "contact_code_required"
	CodeDelayDays           = "delay_days_out_of_range"
	CodeImageCrop           = "invalid_crop"
	CodeProfileNotLoaded    = "profile_not_loaded"
)

// ValidationError is a client-side form failure caught before any request.
type ValidationError struct {
	Field string
	Code  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Code)
}
