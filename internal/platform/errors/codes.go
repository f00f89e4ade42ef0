// Package errors provides structured error handling for head sessions.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Session errors
	CodeRewindWithDOM       Code = "SESSION_REWIND_WITH_DOM"
	CodeContributorNotFound Code = "SESSION_CONTRIBUTOR_NOT_FOUND"

	// Declaration errors
	CodeDeclarationShape Code = "DECLARATION_SHAPE"
	CodeDeclarationRead  Code = "DECLARATION_READ"

	// Document errors
	CodeDocumentInvalid Code = "DOCUMENT_INVALID"

	// Script errors
	CodeScriptFailed Code = "SCRIPT_FAILED"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// BadRequest - malformed input
	case CodeDeclarationShape,
		CodeDeclarationRead,
		CodeDocumentInvalid:
		return http.StatusBadRequest

	// NotFound - resource doesn't exist
	case CodeContributorNotFound:
		return http.StatusNotFound

	// Conflict - session mode doesn't allow operation
	case CodeRewindWithDOM:
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}
