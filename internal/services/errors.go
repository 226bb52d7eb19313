package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInput marks a required event series that is empty with no fallback.
// ErrInfeasible marks an alignment that could not be computed (cost +Inf).
var (
	ErrInput         = errors.New("input error")
	ErrInfeasible    = errors.New("alignment infeasible")
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
)

// Exit codes reported by the CLI for each error marker.
const (
	ExitGeneric       = 1
	ExitInput         = 2
	ExitInfeasible    = 3
	ExitExternalTool  = 4
	ExitConfiguration = 5
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps an error to the process exit status the CLI should return.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInput):
		return ExitInput
	case errors.Is(err, ErrInfeasible):
		return ExitInfeasible
	case errors.Is(err, ErrExternalTool):
		return ExitExternalTool
	case errors.Is(err, ErrConfiguration):
		return ExitConfiguration
	default:
		return ExitGeneric
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "alignment failure"
	}
	return strings.Join(parts, ": ")
}
