package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")          // 404
	ErrInvalidInput      = errors.New("invalid input")      // 400
	ErrInsufficientStock = errors.New("insufficient stock") // 400
	ErrForbidden         = errors.New("forbidden")          // 403
	ErrUnauthenticated   = errors.New("unauthenticated")    // 401
	ErrConflict          = errors.New("conflict")           // 409
	ErrInternal          = errors.New("internal error")     // 500
)

var kinds = []error{
	ErrNotFound,
	ErrInvalidInput,
	ErrInsufficientStock,
	ErrForbidden,
	ErrUnauthenticated,
	ErrConflict,
	ErrInternal,
}

// KindOf returns the sentinel wrapped by err, or ErrInternal for anything else.
func KindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}
