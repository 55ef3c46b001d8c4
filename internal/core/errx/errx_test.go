package errx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusForbidden, KindAuth},
		{http.StatusNotFound, KindNotFound},
		{http.StatusBadRequest, KindValidation},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusInternalServerError, KindServer},
		{http.StatusBadGateway, KindServer},
		{http.StatusTeapot, KindValidation},
	}
	for _, tc := range cases {
		e := FromStatus(tc.status, "msg")
		assert.Equal(t, tc.want, e.Kind, "status %d", tc.status)
		assert.Equal(t, tc.status, e.Status)
		assert.Equal(t, "msg", e.Message)
	}
}

func TestFromTransport(t *testing.T) {
	assert.Nil(t, FromTransport(nil))

	e := FromTransport(fmt.Errorf("dial: %w", context.DeadlineExceeded))
	assert.Equal(t, KindTimeout, e.Kind)

	e = FromTransport(errors.New("connection refused"))
	assert.Equal(t, KindNetwork, e.Kind)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("bad input")))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))

	wrapped := fmt.Errorf("submit: %w", FromStatus(500, "boom"))
	assert.Equal(t, KindServer, KindOf(wrapped))
}

func TestDisplayMessage(t *testing.T) {
	assert.Equal(t, "bad input", DisplayMessage(Validation("bad input")))
	assert.Equal(t, SystemErrorMessage, DisplayMessage(errors.New("stack trace detail")))
	assert.Equal(t, SystemErrorMessage, DisplayMessage(&Error{Kind: KindServer}))
}

func TestErrorChain(t *testing.T) {
	cause := errors.New("root cause")
	e := New(cause, KindServer, 500, "display")

	assert.ErrorIs(t, e, cause)
	assert.Contains(t, e.Error(), "display")
	assert.Contains(t, e.Error(), "root cause")

	var target *Error
	require.ErrorAs(t, fmt.Errorf("wrap: %w", e), &target)
	assert.Equal(t, 500, target.Status)
}

func TestIsRetryWorthy(t *testing.T) {
	assert.True(t, IsRetryWorthy(FromTransport(errors.New("refused"))))
	assert.True(t, IsRetryWorthy(&Error{Kind: KindTimeout}))
	assert.False(t, IsRetryWorthy(Validation("nope")))
	assert.False(t, IsRetryWorthy(FromStatus(500, "boom")))
}
