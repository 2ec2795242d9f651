package store

import "github.com/listenupapp/pagetrail-server/internal/errors"

// Sentinel errors. They carry domain codes so the API maps them directly.
var (
	ErrReaderNotFound = errors.ErrNotFound.WithMessage("reader not found")
	ErrBookNotFound   = errors.ErrNotFound.WithMessage("book not found")
	ErrAlreadyExists  = errors.ErrAlreadyExists.WithMessage("record already exists")
)

// Persistence wraps a backend failure as PERSISTENCE_FAILURE unless it is
// already a domain error (not found, already exists).
func Persistence(err error, op string) error {
	if err == nil {
		return nil
	}
	var domainErr *errors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return errors.Persistence(err, op)
}
