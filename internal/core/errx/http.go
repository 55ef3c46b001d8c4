package errx

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// FromStatus classifies an HTTP response status into an Error carrying the
// given display message. The message is the backend's own wording when it
// provided one, otherwise an endpoint-specific fallback chosen by the caller.
func FromStatus(status int, message string) *Error {
	kind := KindUnknown
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindAuth
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status >= 400 && status < 500:
		kind = KindValidation
	case status >= 500:
		kind = KindServer
	}
	return &Error{Kind: kind, Status: status, Message: message}
}

// FromTransport classifies a failed round trip: deadline overruns become
// timeouts, everything else a network error. Timeout errors carry a
// retry-suggesting message because slow backend scraping is a known cause.
func FromTransport(err error) *Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return &Error{
			Err:     err,
			Kind:    KindTimeout,
			Message: "the request timed out, please try again",
		}
	}
	return &Error{
		Err:     err,
		Kind:    KindNetwork,
		Message: "network connection failed, please check your connection",
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
