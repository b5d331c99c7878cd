package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal")

	// ErrNoProvider means the user has no usable AI credential configured.
	// Indexing swallows it, retrieval returns empty results, generation
	// surfaces it as a user-actionable setup error.
	ErrNoProvider = errors.New("no ai provider configured")

	// ErrIntegrity means a stored credential failed authenticated
	// decryption. Never downgraded to ErrNoProvider.
	ErrIntegrity = errors.New("credential integrity check failed")

	// ErrProvider marks failures of an upstream model API request, as
	// opposed to missing configuration.
	ErrProvider = errors.New("ai provider request failed")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsNoProvider(err error) bool {
	return errors.Is(err, ErrNoProvider)
}
