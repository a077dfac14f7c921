package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
)

func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassPermanent
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001":
			return ErrorClassSerialization
		case "40P01":
			return ErrorClassDeadlock
		case "55P03":
			return ErrorClassTransient
		case "23505", "23503", "23502", "23514":
			return ErrorClassPermanent
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrorClassPermanent
	}

	return ErrorClassPermanent
}

func IsRetryable(err error) bool {
	class := ClassifyError(err)
	return class == ErrorClassTransient ||
		class == ErrorClassDeadlock ||
		class == ErrorClassSerialization
}

// Not-found outcomes are expected business results: callers map them to an
// empty response rather than a crash. ErrNothingPersisted marks a commit that
// reported zero affected rows, which is a failure distinct from not-found.
var (
	ErrProductNotFound      = errors.New("product not found")
	ErrBrandNotFound        = errors.New("brand not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrShippingTypeNotFound = errors.New("shipping type not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrCartNotFound         = errors.New("cart not found")
	ErrNothingPersisted     = errors.New("nothing was persisted")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrBrandNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrShippingTypeNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrCartNotFound)
}
