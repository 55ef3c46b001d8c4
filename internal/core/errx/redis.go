package errx

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

// WrapStore maps client-side state store errors to the unified Error type.
func WrapStore(err error) *Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return New(err, KindNotFound, 0, StoreNotFoundMessage)
	}
	return New(err, KindUnknown, 0, StoreErrorMessage)
}
