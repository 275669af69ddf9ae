package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/matsen/bibclean/internal/bibtex"
	"github.com/matsen/bibclean/internal/config"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitCodeFor maps an error to the exit code of its class.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, bibtex.ErrMalformed):
		return ExitDataError
	case errors.Is(err, config.ErrInvalidTemplate), errors.Is(err, errConfig):
		return ExitConfigError
	}
	return ExitError
}

// errConfig marks configuration problems found outside the config package.
var errConfig = errors.New("configuration error")

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
