package pipeline

import "fmt"

// NoValidRecordsError aborts a run in which no identifier resolved to a user.
type NoValidRecordsError struct {
	Attempted int
}

func (e *NoValidRecordsError) Error() string {
	return fmt.Sprintf("no valid user loaded from the API (%d ids attempted)", e.Attempted)
}
