// Package services defines the shared error taxonomy for the pipeline and
// hosts adapters for external collaborators such as ffprobe.
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks errors caused by invalid or missing settings.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation marks inputs that fail a structural precondition.
	ErrValidation = errors.New("validation error")
	// ErrExternalTool marks failures of an external binary such as ffprobe.
	ErrExternalTool = errors.New("external tool error")
	// ErrDestination marks an unusable output root. These are the only
	// failures that abort a run.
	ErrDestination = errors.New("destination error")
	// ErrTransient marks per-entry failures that the run isolates and
	// continues past.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes phase context while tagging it
// with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, phase, operation, message string, err error) error {
	detail := buildDetail(phase, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error must abort the run rather than be
// isolated to a single entry.
func IsFatal(err error) bool {
	return errors.Is(err, ErrDestination) || errors.Is(err, ErrConfiguration)
}

func buildDetail(phase, operation, message string) string {
	parts := make([]string, 0, 3)
	if phase = strings.TrimSpace(phase); phase != "" {
		parts = append(parts, phase)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
