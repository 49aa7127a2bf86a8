package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates malformed input rejected at the boundary.
	ErrValidation = errors.New("validation failed")
)

// UserSafeMessage returns a message suitable to show to an operator. Wrapped
// driver errors keep their text so constraint violations stay diagnosable.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
