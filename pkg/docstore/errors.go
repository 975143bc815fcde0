package docstore

import (
	"errors"
	"fmt"

	"github.com/dsx-project/dsx/pkg/models"
)

const component = "DocumentStore"

// ErrUnavailable is returned while the backing store is unreachable.
var ErrUnavailable = models.NewBaseError("document store unavailable").
	WithCode(models.ServiceUnavailable).
	WithComponent(component)

// ErrNotFound is returned by FindOne when no record exists for the key.
type ErrNotFound struct {
	Key string
}

func NewErrNotFound(key string) ErrNotFound {
	return ErrNotFound{Key: key}
}

func (e ErrNotFound) Error() string {
	return "document not found: " + e.Key
}

// IsNotFound reports whether err is, or wraps, an ErrNotFound.
func IsNotFound(err error) bool {
	var notFound ErrNotFound
	return errors.As(err, &notFound)
}

// IsUnavailable reports whether err is, or wraps, ErrUnavailable.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// NewErrUnavailable wraps a backend failure so that callers can match it
// with IsUnavailable while keeping the original cause in the message.
func NewErrUnavailable(op string, cause error) error {
	return fmt.Errorf("%s: %w: %s", op, ErrUnavailable, cause.Error())
}
