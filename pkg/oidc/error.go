package oidc

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

type errorType string

const (
	InvalidRequest         errorType = "invalid_request"
	InvalidScope           errorType = "invalid_scope"
	InvalidClient          errorType = "invalid_client"
	InvalidGrant           errorType = "invalid_grant"
	UnauthorizedClient     errorType = "unauthorized_client"
	UnsupportedGrantType   errorType = "unsupported_grant_type"
	UnsupportedResponseTyp errorType = "unsupported_response_type"
	ServerError            errorType = "server_error"
	InteractionRequired    errorType = "interaction_required"
	LoginRequired          errorType = "login_required"
	ConsentRequired        errorType = "consent_required"
	RequestNotSupported    errorType = "request_not_supported"
	AccessDenied           errorType = "access_denied"
	InvalidToken           errorType = "invalid_token"
	InvalidClientMetadata  errorType = "invalid_client_metadata"
	InvalidRedirectURI     errorType = "invalid_redirect_uri"
	InvalidSoftwareStmt    errorType = "invalid_software_statement"
	UsernameInvalid        errorType = "username_invalid"
	SessionNotPassed       errorType = "session_not_passed"
	// InvalidGrantAndSession signals that both the presented grant and the
	// session it was bound to have been invalidated, usually after a
	// replayed authorization code.
	InvalidGrantAndSession errorType = "invalid_grant_and_session"
)

var (
	ErrInvalidRequest = func() *Error {
		return &Error{
			ErrorType: InvalidRequest,
		}
	}
	ErrInvalidRequestRedirectURI = func() *Error {
		return &Error{
			ErrorType:        InvalidRequest,
			redirectDisabled: true,
		}
	}
	ErrInvalidScope = func() *Error {
		return &Error{
			ErrorType: InvalidScope,
		}
	}
	ErrInvalidClient = func() *Error {
		return &Error{
			ErrorType: InvalidClient,
		}
	}
	ErrInvalidGrant = func() *Error {
		return &Error{
			ErrorType: InvalidGrant,
		}
	}
	ErrInvalidGrantAndSession = func() *Error {
		return &Error{
			ErrorType: InvalidGrantAndSession,
		}
	}
	ErrUnauthorizedClient = func() *Error {
		return &Error{
			ErrorType: UnauthorizedClient,
		}
	}
	ErrUnsupportedGrantType = func() *Error {
		return &Error{
			ErrorType: UnsupportedGrantType,
		}
	}
	ErrUnsupportedResponseType = func() *Error {
		return &Error{
			ErrorType: UnsupportedResponseTyp,
		}
	}
	ErrServerError = func() *Error {
		return &Error{
			ErrorType: ServerError,
		}
	}
	ErrInteractionRequired = func() *Error {
		return &Error{
			ErrorType: InteractionRequired,
		}
	}
	ErrLoginRequired = func() *Error {
		return &Error{
			ErrorType: LoginRequired,
		}
	}
	ErrConsentRequired = func() *Error {
		return &Error{
			ErrorType: ConsentRequired,
		}
	}
	ErrRequestNotSupported = func() *Error {
		return &Error{
			ErrorType: RequestNotSupported,
		}
	}
	ErrAccessDenied = func() *Error {
		return &Error{
			ErrorType: AccessDenied,
		}
	}
	ErrInvalidToken = func() *Error {
		return &Error{
			ErrorType: InvalidToken,
		}
	}
	ErrInvalidClientMetadata = func() *Error {
		return &Error{
			ErrorType:        InvalidClientMetadata,
			redirectDisabled: true,
		}
	}
	ErrInvalidRedirectURI = func() *Error {
		return &Error{
			ErrorType:        InvalidRedirectURI,
			redirectDisabled: true,
		}
	}
	ErrInvalidSoftwareStatement = func() *Error {
		return &Error{
			ErrorType: InvalidSoftwareStmt,
		}
	}
	ErrUsernameInvalid = func() *Error {
		return &Error{
			ErrorType: UsernameInvalid,
		}
	}
	ErrSessionNotPassed = func() *Error {
		return &Error{
			ErrorType: SessionNotPassed,
		}
	}
)

type Error struct {
	Parent           error     `json:"-" schema:"-"`
	ErrorType        errorType `json:"error" schema:"error"`
	Description      string    `json:"error_description,omitempty" schema:"error_description,omitempty"`
	State            string    `json:"state,omitempty" schema:"state,omitempty"`
	redirectDisabled bool      `schema:"-"`
	returnParent     bool      `schema:"-"`
}

func (e *Error) MarshalJSON() ([]byte, error) {
	m := struct {
		Error       errorType `json:"error"`
		Description string    `json:"error_description,omitempty"`
		State       string    `json:"state,omitempty"`
		Parent      string    `json:"parent,omitempty"`
	}{
		Error:       e.ErrorType,
		Description: e.Description,
		State:       e.State,
	}
	if e.returnParent && e.Parent != nil {
		m.Parent = e.Parent.Error()
	}
	return json.Marshal(m)
}

func (e *Error) Error() string {
	message := "ErrorType=" + string(e.ErrorType)
	if e.Description != "" {
		message += " Description=" + e.Description
	}
	if e.Parent != nil {
		message += " Parent=" + e.Parent.Error()
	}
	return message
}

func (e *Error) Unwrap() error {
	return e.Parent
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.ErrorType == t.ErrorType &&
		(e.Description == t.Description || t.Description == "") &&
		(e.State == t.State || t.State == "")
}

func (e *Error) WithParent(err error) *Error {
	e.Parent = err
	return e
}

// WithReturnParentToClient allows returning the details of the parent error
// to the client. Only set this if the parent error does not leak internals.
func (e *Error) WithReturnParentToClient(b bool) *Error {
	e.returnParent = b
	return e
}

func (e *Error) WithDescription(desc string, args ...any) *Error {
	e.Description = fmt.Sprintf(desc, args...)
	return e
}

func (e *Error) IsRedirectDisabled() bool {
	return e.redirectDisabled
}

// DefaultToServerError checks if the error is an Error
// if not the provided error will be wrapped into a ServerError
func DefaultToServerError(err error, description string) *Error {
	oauth := new(Error)
	if ok := errors.As(err, &oauth); !ok {
		oauth.ErrorType = ServerError
		oauth.Description = description
		oauth.Parent = err
	}
	return oauth
}

// LogLevel returns a suggested logging level for the error.
// Server errors are logged on error level, everything else on warn.
func (e *Error) LogLevel() slog.Level {
	if e.ErrorType == ServerError {
		return slog.LevelError
	}
	return slog.LevelWarn
}

// LogValue implements the [slog.LogValuer] interface.
// The parent error is preserved for operators while never being
// returned to the client unless explicitly allowed.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 4)
	if e.ErrorType != "" {
		attrs = append(attrs, slog.String("oauth_error", string(e.ErrorType)))
	}
	if e.Description != "" {
		attrs = append(attrs, slog.String("description", e.Description))
	}
	if e.State != "" {
		attrs = append(attrs, slog.String("state", e.State))
	}
	if e.Parent != nil {
		attrs = append(attrs, slog.Any("parent", e.Parent))
	}
	return slog.GroupValue(attrs...)
}
