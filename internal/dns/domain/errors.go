package domain

import "fmt"

// ErrorKind enumerates the error taxonomy surfaced to callers.
type ErrorKind string

const (
	ErrNoServerAlive      ErrorKind = "no_server_alive"
	ErrConnectionRefused  ErrorKind = "connection_refused"
	ErrTimeout            ErrorKind = "timeout"
	ErrServerError        ErrorKind = "server_error"
	ErrIncompleteResponse ErrorKind = "incomplete_response"
	ErrTooManyHops        ErrorKind = "too_many_hops"
	ErrInvalidResponse    ErrorKind = "invalid_response"
	ErrInvalidQuery       ErrorKind = "invalid_query"
)

// ResolveError is the typed error returned by the resolver and
// transport layers. Server and Code are populated only when the
// triggering condition names them.
type ResolveError struct {
	Kind   ErrorKind
	Server string // the nameserver implicated, if any
	Code   string // underlying OS/network error code, for ServerError
	Err    error  // wrapped cause, if any
}

func (e *ResolveError) Error() string {
	switch {
	case e.Server != "" && e.Code != "":
		return fmt.Sprintf("%s: server %s: %s", e.Kind, e.Server, e.Code)
	case e.Server != "":
		return fmt.Sprintf("%s: server %s", e.Kind, e.Server)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// Is supports errors.Is comparisons against a bare *ResolveError with
// only Kind set, e.g. errors.Is(err, &ResolveError{Kind: ErrTooManyHops}).
func (e *ResolveError) Is(target error) bool {
	t, ok := target.(*ResolveError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func NewNoServerAlive() error {
	return &ResolveError{Kind: ErrNoServerAlive}
}

func NewConnectionRefused(server string, cause error) error {
	return &ResolveError{Kind: ErrConnectionRefused, Server: server, Err: cause}
}

func NewTimeout(server string, cause error) error {
	return &ResolveError{Kind: ErrTimeout, Server: server, Err: cause}
}

func NewServerError(server, code string, cause error) error {
	return &ResolveError{Kind: ErrServerError, Server: server, Code: code, Err: cause}
}

func NewIncompleteResponse(server string) error {
	return &ResolveError{Kind: ErrIncompleteResponse, Server: server}
}

func NewTooManyHops() error {
	return &ResolveError{Kind: ErrTooManyHops}
}

func NewInvalidResponse(cause error) error {
	return &ResolveError{Kind: ErrInvalidResponse, Err: cause}
}

func NewInvalidQuery(cause error) error {
	return &ResolveError{Kind: ErrInvalidQuery, Err: cause}
}
