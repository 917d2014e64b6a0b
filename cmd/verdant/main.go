package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess      = 0 // Command completed normally
	ExitNoCandidates = 1 // A comparison ran but every provider failed
	ExitError        = 2 // Configuration or runtime error
)

// NoCandidatesError indicates that a comparison round completed but no
// provider produced a usable result.
type NoCandidatesError struct {
	Message string
}

func (e *NoCandidatesError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Check error type to determine exit code
		var noCandidatesErr *NoCandidatesError
		if errors.As(err, &noCandidatesErr) {
			os.Exit(ExitNoCandidates)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
