package cli

import (
	"fmt"

	"github.com/chazuruo/aoss-console/internal/errors"
)

// Hint returns a line to print under err telling the user what to do next,
// or "" when the error message says enough.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.IsCanceled(err):
		return "Interrupted. Nothing was recorded."
	case errors.IsProvisioning(err):
		if we, ok := errors.AsWorkflowError(err); ok && we.Resource != "" {
			return fmt.Sprintf("%s was not created. Try again with --retries N or --interactive.", we.Resource)
		}
		return "Try again with --retries N or --interactive."
	case errors.IsBusy(err):
		return "A creation is already running for this form."
	}
	if ce, ok := errors.AsConfigError(err); ok {
		if errors.IsNotFound(err) {
			return `Run "aoss config init" to write a default config.`
		}
		if ce.Path != "" {
			return fmt.Sprintf("Fix %s or point --config at another file.", ce.Path)
		}
		return "Check the AOSS_* environment overrides."
	}
	if errors.IsIO(err) {
		return "Check that [storage].path is writable."
	}
	return ""
}
