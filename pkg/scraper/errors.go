package scraper

import "fmt"

// ErrorType categorizes different types of scraper errors
type ErrorType string

const (
	ErrorTypeTransport       ErrorType = "transport"
	ErrorTypeTimeout         ErrorType = "timeout"
	ErrorTypeHTTPStatus      ErrorType = "http_status"
	ErrorTypeServerReported  ErrorType = "server_reported"
	ErrorTypeInvalidResponse ErrorType = "invalid_response"
	ErrorTypeCancelled       ErrorType = "cancelled"
)

// GenericTransportMessage is shown when the server offers nothing better.
const GenericTransportMessage = "An error occurred while contacting the scraper service. Please check the URL and try again."

// ScraperError represents a structured error from the scraper service
type ScraperError struct {
	Type    ErrorType
	Message string
	// Detail is the server-supplied explanation, when there is one.
	Detail     string
	StatusCode int
	Cause      error
}

// Error implements the error interface
func (e *ScraperError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// Unwrap returns the underlying error for error unwrapping
func (e *ScraperError) Unwrap() error {
	return e.Cause
}

// IsServerReported reports whether the call succeeded at the transport level
// but the payload carried an error.
func (e *ScraperError) IsServerReported() bool {
	return e.Type == ErrorTypeServerReported
}

// UserMessage returns the message shown in place of a result, preferring
// server-supplied detail.
func (e *ScraperError) UserMessage() string {
	if e.Detail != "" {
		return e.Detail
	}
	switch e.Type {
	case ErrorTypeTimeout:
		return "Request timed out. The URL may be slow to load or the service may be busy."
	case ErrorTypeCancelled:
		return "Request was cancelled."
	case ErrorTypeInvalidResponse:
		return "Received invalid response from scraper service. Please try again."
	case ErrorTypeHTTPStatus:
		return fmt.Sprintf("Scraper service returned status %d. %s", e.StatusCode, GenericTransportMessage)
	default:
		return GenericTransportMessage
	}
}

func newTransportError(cause error) *ScraperError {
	return &ScraperError{
		Type:    ErrorTypeTransport,
		Message: "Network error",
		Cause:   cause,
	}
}

func newTimeoutError(cause error) *ScraperError {
	return &ScraperError{
		Type:    ErrorTypeTimeout,
		Message: "Request timed out",
		Cause:   cause,
	}
}

func newCancelledError(cause error) *ScraperError {
	return &ScraperError{
		Type:    ErrorTypeCancelled,
		Message: "Operation cancelled",
		Cause:   cause,
	}
}

func newHTTPStatusError(status int, detail string) *ScraperError {
	return &ScraperError{
		Type:       ErrorTypeHTTPStatus,
		Message:    fmt.Sprintf("unexpected status %d", status),
		Detail:     detail,
		StatusCode: status,
	}
}

func newServerReportedError(detail string) *ScraperError {
	return &ScraperError{
		Type:    ErrorTypeServerReported,
		Message: "service reported an error",
		Detail:  detail,
	}
}

func newInvalidResponseError(message string, cause error) *ScraperError {
	return &ScraperError{
		Type:    ErrorTypeInvalidResponse,
		Message: message,
		Cause:   cause,
	}
}
