package actions

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownOperation is returned when a kind is not in the registry.
var ErrUnknownOperation = errors.New("unknown operation")

// Reason classifies a validation failure.
type Reason string

const (
	ReasonEmptyURL              Reason = "EmptyUrl"
	ReasonMalformedURL          Reason = "MalformedUrl"
	ReasonAmbiguousMultipleURLs Reason = "AmbiguousMultipleUrls"
	ReasonEmptyURLList          Reason = "EmptyUrlList"
)

// ValidationError is a local input failure. It never reaches the network.
type ValidationError struct {
	Reason Reason
	// Entries lists the offending inputs for ReasonMalformedURL.
	Entries []string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonEmptyURL:
		return "Please enter a URL"
	case ReasonEmptyURLList:
		return "Please enter at least one URL"
	case ReasonAmbiguousMultipleURLs:
		return "Multiple URLs detected; use Fetch multiple URLs for comma-separated lists"
	case ReasonMalformedURL:
		if len(e.Entries) == 1 {
			return fmt.Sprintf("Invalid URL: %s", e.Entries[0])
		}
		return fmt.Sprintf("Invalid URLs: %s", strings.Join(e.Entries, ", "))
	}
	return string(e.Reason)
}

// IsValidationError reports whether err carries a ValidationError with the given reason.
func IsValidationError(err error, reason Reason) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Reason == reason
}
