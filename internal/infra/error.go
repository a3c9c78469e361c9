package infra

import (
	"errors"

	"wave-studio-api/internal/pkg/errs"
)

type RepositoryErrorKind string

// Infrastructure-specific error kinds. KindCapacityExceeded and
// KindDuplicateKey are the store-side backstops for the check-then-act
// races; callers translate them into the same user-facing errors as the
// application-level fast-path checks.
const (
	KindNotFound         RepositoryErrorKind = "NOT_FOUND"
	KindDuplicateKey     RepositoryErrorKind = "DUPLICATE_KEY"
	KindCapacityExceeded RepositoryErrorKind = "CAPACITY_EXCEEDED"
	KindDBFailure        RepositoryErrorKind = "DB_FAILURE"
)

type RepositoryError struct {
	Kind RepositoryErrorKind
	msg  string
	err  error // wrapped low-level error
}

func (e RepositoryError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e RepositoryError) Unwrap() error {
	return e.err
}

// WrapRepoErr classifies a low-level store error. Kind defaults to
// KindDBFailure when omitted.
func WrapRepoErr(msg string, err error, kinds ...RepositoryErrorKind) error {
	kind := KindDBFailure
	if len(kinds) > 0 {
		kind = kinds[0]
	}
	if err != nil {
		err = errs.Wrap(err, msg)
	}
	return RepositoryError{Kind: kind, msg: msg, err: err}
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var e RepositoryError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
