package usecase

import (
	"errors"
	"fmt"
	"net/http"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/season"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrTransient             = crerr.New("transient platform failure")
)

// FetchReason classifies a failed platform request.
type FetchReason string

const (
	ReasonUnauthorized FetchReason = "unauthorized"
	ReasonNotFound     FetchReason = "not_found"
	ReasonTransient    FetchReason = "transient"
	ReasonUnknown      FetchReason = "unknown"
)

// FetchFailure is the typed error every platform client returns.
type FetchFailure struct {
	Reason     FetchReason
	StatusCode int
	Cause      error
}

func (e *FetchFailure) Error() string {
	msg := "platform fetch " + string(e.Reason)
	if e.StatusCode > 0 {
		msg += fmt.Sprintf(" status=%d", e.StatusCode)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *FetchFailure) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match a failure against the sentinel of its reason.
func (e *FetchFailure) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Reason == ReasonUnauthorized
	case ErrNotFound:
		return e.Reason == ReasonNotFound
	case ErrTransient:
		return e.Reason == ReasonTransient
	default:
		return false
	}
}

// ClassifyHTTPStatus maps a non-200 platform status to a failure reason.
func ClassifyHTTPStatus(status int) FetchReason {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ReasonUnauthorized
	case status == http.StatusNotFound:
		return ReasonNotFound
	case status == http.StatusRequestTimeout, status == http.StatusTooEarly, status == http.StatusTooManyRequests:
		return ReasonTransient
	case status >= 500:
		return ReasonTransient
	default:
		return ReasonUnknown
	}
}

// FetchReasonOf extracts the failure reason, treating foreign errors as unknown.
func FetchReasonOf(err error) FetchReason {
	var failure *FetchFailure
	if errors.As(err, &failure) {
		return failure.Reason
	}
	if errors.Is(err, ErrDependencyUnavailable) || crerr.Is(err, ErrTransient) {
		return ReasonTransient
	}
	return ReasonUnknown
}

// AssemblyFailure aborts one season; nothing of it is persisted.
type AssemblyFailure struct {
	Season   int
	Endpoint season.Endpoint
	Cause    error
}

func (e *AssemblyFailure) Error() string {
	if e.Endpoint == "" {
		return fmt.Sprintf("assemble season %d: %v", e.Season, e.Cause)
	}
	return fmt.Sprintf("assemble season %d endpoint %s: %v", e.Season, e.Endpoint, e.Cause)
}

func (e *AssemblyFailure) Unwrap() error {
	return e.Cause
}

// PersistenceFailure means a season write did not land. Re-running is safe.
type PersistenceFailure struct {
	Season int
	Mode   season.WriteMode
	Cause  error
}

func (e *PersistenceFailure) Error() string {
	return fmt.Sprintf("write season %d (%s): %v", e.Season, e.Mode, e.Cause)
}

func (e *PersistenceFailure) Unwrap() error {
	return e.Cause
}

// TokenError is an OAuth2 token endpoint rejection.
type TokenError struct {
	Code        string
	Description string
}

func (e *TokenError) Error() string {
	if e.Description == "" {
		return "token exchange failed: " + e.Code
	}
	return "token exchange failed: " + e.Code + ": " + e.Description
}
