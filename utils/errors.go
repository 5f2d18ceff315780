package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorKind classifies failures for programmatic handling. The human-readable
// message is always preserved alongside the kind.
type ErrorKind int

const (
	// KindValidation covers rejected input: non-PDF uploads, malformed
	// bodies, empty queries. No side effects have occurred.
	KindValidation ErrorKind = iota
	// KindUpstream covers failures of external collaborators: the embedding
	// model, the vector store, or the language model. Never retried.
	KindUpstream
	// KindProcessing covers failures inside the pipeline itself, including
	// unparseable PDFs and configuration mismatches.
	KindProcessing
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindUpstream:
		return "upstream_unavailable"
	default:
		return "processing_failure"
	}
}

// AppError carries an ErrorKind together with a diagnostic message and the
// underlying cause.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// ValidationError builds a KindValidation error.
func ValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// UpstreamError wraps a failure from an external service.
func UpstreamError(message string, err error) *AppError {
	return &AppError{Kind: KindUpstream, Message: message, Err: err}
}

// ProcessingError wraps a pipeline failure.
func ProcessingError(message string, err error) *AppError {
	return &AppError{Kind: KindProcessing, Message: message, Err: err}
}

// KindOf extracts the ErrorKind from err, defaulting to KindProcessing for
// errors that were never classified.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindProcessing
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	ErrorCode string      `json:"error_code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// RespondWithError sends a standardized error response
func RespondWithError(c *gin.Context, statusCode int, errorCode, message string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		ErrorCode: errorCode,
		Message:   message,
		Details:   details,
	})
}

// RespondWithBadRequest sends a 400 Bad Request error
func RespondWithBadRequest(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, "bad_request", message, details)
}

// RespondWithNotFound sends a 404 Not Found error
func RespondWithNotFound(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotFound, "not_found", message, nil)
}

// RespondWithInternalError sends a 500 Internal Server Error
func RespondWithInternalError(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusInternalServerError, "internal_error", message, details)
}

// RespondWithAppError maps a classified error to the right status code while
// preserving the diagnostic message.
func RespondWithAppError(c *gin.Context, err error) {
	kind := KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case KindValidation:
		status = http.StatusBadRequest
	case KindUpstream:
		status = http.StatusBadGateway
	}
	RespondWithError(c, status, kind.String(), err.Error(), nil)
}
