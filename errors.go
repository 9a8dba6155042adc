package vecdex

import (
	"errors"
	"fmt"

	"github.com/aifocal/vecdex/index"
)

var (
	// ErrNotFound is returned when an id is not present in the index.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when inserting an id that is already
	// present. Delete the old entry first to replace a vector.
	ErrAlreadyExists = errors.New("id already exists")

	// ErrDimensionMismatch is returned when a vector's length does not
	// match the dimension the index was built with.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidParameter is returned when a configuration or call
	// parameter is rejected.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInternal is returned when an index detects a violated
	// invariant. It indicates a bug or a corrupted snapshot.
	ErrInternal = errors.New("internal error")

	// ErrInvalidSnapshot is returned when a stream does not decode as a
	// vecdex snapshot: wrong magic, unsupported version, unknown
	// compression or engine kind, or a corrupt payload.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// translateError maps index-level typed errors onto the public
// sentinels. The original error stays in the chain, so errors.As still
// reaches the typed detail (field values) while errors.Is matches the
// sentinel.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dimErr *index.ErrDimensionMismatch
	if errors.As(err, &dimErr) {
		return fmt.Errorf("%w: %w", ErrDimensionMismatch, err)
	}

	var paramErr *index.ErrInvalidParameter
	if errors.As(err, &paramErr) {
		return fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}

	var existsErr *index.ErrAlreadyExists
	if errors.As(err, &existsErr) {
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	}

	var internalErr *index.ErrInternal
	if errors.As(err, &internalErr) {
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}

	return err
}
