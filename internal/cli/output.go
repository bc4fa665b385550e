package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/diagnosis/visitor-hosts/internal/hostsync"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the pass ran but was aborted
	ExitCommandError = 2 // bad flags or unusable configuration
)

// ExitError carries the process exit code for a command failure.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error, defaulting to ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// writeSummary prints a pass summary as JSON or as aligned text.
func writeSummary(w io.Writer, format string, s *hostsync.Summary) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	fmt.Fprintf(w, "run:            %s\n", s.RunID)
	fmt.Fprintf(w, "fetched:        %d\n", s.Fetched)
	fmt.Fprintf(w, "existing:       %d\n", s.Existing)
	fmt.Fprintf(w, "inserted:       %d\n", s.Inserted)
	fmt.Fprintf(w, "users created:  %d\n", s.UsersCreated)
	fmt.Fprintf(w, "phones updated: %d\n", s.PhonesUpdated)
	fmt.Fprintf(w, "rejected:       %d\n", s.Rejected)
	for _, r := range s.Rejections {
		fmt.Fprintf(w, "  - %s (%s): %s\n", r.ExternalID, r.Name, r.Reason)
	}
	fmt.Fprintf(w, "duration:       %s\n", s.Duration())
	if s.Err != "" {
		fmt.Fprintf(w, "error:          %s\n", s.Err)
	}
	return nil
}
