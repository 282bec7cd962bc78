package ai

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// Kind classifies a failed completion.
type Kind int

const (
	// KindUnexpected covers anything the completion capability reports that
	// is not a transport problem.
	KindUnexpected Kind = iota
	// KindConnection means the endpoint could not be reached at all.
	KindConnection
	// KindRequest means the transport failed while the request was in flight.
	KindRequest
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection_failure"
	case KindRequest:
		return "request_failure"
	default:
		return "unexpected_failure"
	}
}

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrConnection = &Error{Kind: KindConnection}
	ErrRequest    = &Error{Kind: KindRequest}
	ErrUnexpected = &Error{Kind: KindUnexpected}
)

// Error is the dispatcher's failure result.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Err == nil && t.Kind == e.Kind
}

// UserMessage is the inline text shown to the user for this failure.
func (e *Error) UserMessage() string {
	detail := "unknown error"
	if e.Err != nil {
		detail = rootCause(e.Err)
	}
	switch e.Kind {
	case KindConnection:
		return "Failed to connect to the model server: " + detail + ". Please check the server status or URL."
	case KindRequest:
		return "An error occurred during request: " + detail
	default:
		return "Unexpected error: " + detail
	}
}

// KindOf returns the kind of err, or KindUnexpected if err is not an *Error.
func KindOf(err error) Kind {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr.Kind
	}
	return KindUnexpected
}

// classify wraps err into an *Error. Already classified errors pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return err
	}
	return &Error{Kind: kindFor(err), Err: err}
}

func kindFor(err error) Kind {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return KindConnection
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindConnection
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return KindConnection
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, syscall.ECONNRESET) {
		return KindRequest
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return KindRequest
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindRequest
	}

	return KindUnexpected
}

// rootCause returns a one-line description of the transport failure under
// err, without the framework's node-path trailer.
func rootCause(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Error()
	}

	root := err
	for next := errors.Unwrap(root); next != nil; next = errors.Unwrap(root) {
		root = next
	}

	msg := root.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	if strings.HasPrefix(msg, "[") {
		if i := strings.Index(msg, "] "); i >= 0 {
			msg = msg[i+2:]
		}
	}
	return strings.TrimSpace(msg)
}
