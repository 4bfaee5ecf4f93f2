// Package errors provides standardized error handling for the migration API.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeHubSpotNotConnected    ErrorCode = "HUBSPOT_NOT_CONNECTED"
	ErrCodeSFMCNotConnected       ErrorCode = "SFMC_NOT_CONNECTED"
	ErrCodeCredentialLookupFailed ErrorCode = "CREDENTIAL_LOOKUP_FAILED"
	ErrCodeTokenExchangeFailed    ErrorCode = "TOKEN_EXCHANGE_FAILED"

	ErrCodeFolderNotFound         ErrorCode = "FOLDER_NOT_FOUND"
	ErrCodeFolderResolutionFailed ErrorCode = "FOLDER_RESOLUTION_FAILED"

	ErrCodeHubSpotFetchFailed ErrorCode = "HUBSPOT_FETCH_FAILED"

	ErrCodeTemplateConversionFailed ErrorCode = "TEMPLATE_CONVERSION_FAILED"
	ErrCodeAssetCreateFailed        ErrorCode = "ASSET_CREATE_FAILED"

	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewValidationFailedError creates a non-retryable request validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotConnectedError creates a non-retryable error for a user with no
// stored credentials for the given provider.
func NewNotConnectedError(provider, userID string) *StandardError {
	code := ErrCodeHubSpotNotConnected
	if provider == "sfmc" {
		code = ErrCodeSFMCNotConnected
	}
	return &StandardError{
		Code:      code,
		Message:   fmt.Sprintf("No %s credentials connected for this user", provider),
		Details:   fmt.Sprintf("userId: %s, provider: %s", userID, provider),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCredentialLookupFailedError creates a retryable credential store error.
func NewCredentialLookupFailedError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCredentialLookupFailed,
		Message:   "Credential store lookup failed",
		Details:   fmt.Sprintf("provider: %s, error: %s", provider, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTokenExchangeFailedError creates a non-retryable SFMC auth error.
func NewTokenExchangeFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTokenExchangeFailed,
		Message:   "SFMC token exchange failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFolderNotFoundError creates a non-retryable root folder error.
func NewFolderNotFoundError(folderName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFolderNotFound,
		Message:   "Destination root folder not found",
		Details:   fmt.Sprintf("folderName: %s", folderName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFolderResolutionFailedError creates a retryable folder list/create error.
func NewFolderResolutionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFolderResolutionFailed,
		Message:   "Failed to resolve destination folder",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHubSpotFetchFailedError creates a retryable error for a fully exhausted
// endpoint fallback chain. The wrapped error names the last endpoint tried.
func NewHubSpotFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHubSpotFetchFailed,
		Message:   "All HubSpot template endpoints failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAssetCreateFailedError creates a retryable per-item asset creation error.
func NewAssetCreateFailedError(templateName string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAssetCreateFailed,
		Message:   "Failed to create SFMC asset",
		Details:   fmt.Sprintf("template: %s, error: %s", templateName, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternalError,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// HTTPStatusMapping maps internal error codes to HTTP response statuses.
// Validation, auth and folder-resolution failures are caller problems (400);
// a fully failed upstream fetch and anything unexpected are 500s.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeValidationFailed:       http.StatusBadRequest,
	ErrCodeHubSpotNotConnected:    http.StatusBadRequest,
	ErrCodeSFMCNotConnected:       http.StatusBadRequest,
	ErrCodeCredentialLookupFailed: http.StatusBadRequest,
	ErrCodeTokenExchangeFailed:    http.StatusBadRequest,
	ErrCodeFolderNotFound:         http.StatusBadRequest,
	ErrCodeFolderResolutionFailed: http.StatusBadRequest,
	ErrCodeHubSpotFetchFailed:     http.StatusInternalServerError,
	ErrCodeInternalError:          http.StatusInternalServerError,
}

// HTTPStatusFor returns the HTTP status for an error code, defaulting to 500.
func HTTPStatusFor(code ErrorCode) int {
	if status, ok := HTTPStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// AsStandardError normalizes any error into a StandardError.
func AsStandardError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return NewInternalError(err)
}

// ExtractErrorCode returns the code of a StandardError, or INTERNAL_ERROR.
func ExtractErrorCode(err error) string {
	if stdErr, ok := err.(*StandardError); ok {
		return string(stdErr.Code)
	}
	return string(ErrCodeInternalError)
}
