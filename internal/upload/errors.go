package upload

import (
	"errors"
	"fmt"
)

// ErrConversionTimeout signals that the server-side format conversion did
// not finish within the deadline. Kept distinct from generic upload
// failures so the UI can show a tailored message.
var ErrConversionTimeout = errors.New("file conversion timed out")

// ValidationError rejects a file before any network call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid file: %s", e.Reason)
}
