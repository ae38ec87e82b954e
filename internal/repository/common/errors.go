package common

import (
	"errors"

	"github.com/lib/pq"
)

// pqUniqueViolation код ошибки PostgreSQL unique_violation.
const pqUniqueViolation = "23505"

// UniqueViolation сообщает, нарушено ли ограничение уникальности, и какое именно.
func UniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}
