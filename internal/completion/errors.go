package completion

import (
	"errors"
	"fmt"

	"mom-assistant/internal/apperrors"
)

// ErrInvalidRequest indicates a CompletionRequest that was rejected before
// any network call was made.
var ErrInvalidRequest = errors.New("invalid completion request")

// ProviderError reports a non-success status or transport failure from the
// completion service. StatusCode is zero when no HTTP response was received.
type ProviderError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("completion provider returned status %d: %s", e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("completion provider returned status %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("completion provider request failed: %v", e.Err)
	default:
		return "completion provider request failed"
	}
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == apperrors.ErrProvider }

// MalformedResponseError reports a response that could not be turned into
// at least one choice with textual content.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed completion response: %s: %v", e.Reason, e.Err)
	}
	return "malformed completion response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Is(target error) bool {
	return target == apperrors.ErrMalformedResponse
}
