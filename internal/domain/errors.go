package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
)

// NotFoundError names the entity that could not be resolved for the caller.
// The message is the same whether the row is absent or owned by someone else.
type NotFoundError struct {
	Resource string // folder, parent_folder, target_folder or card
	Message  string
}

func (e *NotFoundError) Error() string        { return e.Message }
func (e *NotFoundError) StatusCode() int      { return http.StatusNotFound }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError indicates invalid input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string        { return e.Message }
func (e *ValidationError) StatusCode() int      { return http.StatusBadRequest }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Resources named by NotFoundError
const (
	ResourceFolder       = "folder"
	ResourceParentFolder = "parent_folder"
	ResourceTargetFolder = "target_folder"
	ResourceCard         = "card"
)

var notFoundMessages = map[string]string{
	ResourceFolder:       "folder not found",
	ResourceParentFolder: "parent folder not found",
	ResourceTargetFolder: "target folder not found",
	ResourceCard:         "card not found",
}

// NewNotFound builds the user-facing not-found error for resource
func NewNotFound(resource string) *NotFoundError {
	msg, ok := notFoundMessages[resource]
	if !ok {
		msg = resource + " not found"
	}
	return &NotFoundError{Resource: resource, Message: msg}
}

// ConflictError represents a uniqueness conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // folder or card
	ResourceID   string // ID of the conflicting resource, empty when unknown
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewFolderNameConflict builds the user-facing conflict for a duplicate sibling name
func NewFolderNameConflict(existingID string) *ConflictError {
	return &ConflictError{
		Message:      "a folder with this name already exists at this level",
		ResourceType: "folder",
		ResourceID:   existingID,
	}
}
