//go:build !statsview

package statsview

import (
	"context"
	"errors"
)

// ErrNotAvailable is returned by Launch when the binary was built without
// the statsview tag.
var ErrNotAvailable = errors.New("statsview not available: rebuild with -tags statsview")

// Launch always fails without the statsview build tag.
func Launch(ctx context.Context) error {
	return ErrNotAvailable
}

// Available reports whether this binary was built with the stats server.
func Available() bool {
	return false
}
