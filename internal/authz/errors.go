package authz

import (
	"errors"
	"fmt"
)

// DataAccessError wraps an infrastructure fault from the grant store. It is
// the only error class the engine propagates: "user not found" and "not
// authorized" are ordinary results, never errors. Callers must fail closed
// when they see one.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("authz: %s: %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// IsDataAccess reports whether err is (or wraps) a DataAccessError.
func IsDataAccess(err error) bool {
	var dae *DataAccessError
	return errors.As(err, &dae)
}

func dataAccessErr(op string, err error) error {
	return &DataAccessError{Op: op, Err: err}
}
