package store

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-wiki/internal/frontmatter"
	"github.com/goliatone/go-wiki/internal/slug"
)

// Kind is the coarse error classification surfaced to callers through the
// result envelope. Every error leaving a PageStore maps to exactly one kind.
type Kind string

const (
	KindNotFound      Kind = "NOT_FOUND"
	KindConflict      Kind = "CONFLICT"
	KindValidation    Kind = "VALIDATION_ERROR"
	KindAuthorization Kind = "AUTHORIZATION_ERROR"
	KindFormat        Kind = "FORMAT_ERROR"
	KindBackend       Kind = "BACKEND_ERROR"
)

const (
	backendErrorCode = "WIKI_BACKEND_ERROR"
	formatErrorCode  = "WIKI_FORMAT_ERROR"
)

// NotFoundError represents missing pages, versions, or categories.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// ConflictError reports a duplicate slug at creation time.
type ConflictError struct {
	Slug string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("page with slug %q already exists", e.Slug)
}

// AuthorizationError reports a privileged operation attempted without the
// required role.
type AuthorizationError struct {
	Role      string
	Operation string
}

func (e *AuthorizationError) Error() string {
	if e.Role == "" {
		return fmt.Sprintf("%s requires an authenticated identity", e.Operation)
	}
	return fmt.Sprintf("%s requires role %q", e.Operation, e.Role)
}

// WrapBackend classifies a transport or storage failure. Already-wrapped
// errors pass through untouched so the original category survives.
func WrapBackend(err error, msg string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, msg).
		WithTextCode(backendErrorCode)
}

// WrapFormat classifies a malformed frontmatter document.
func WrapFormat(err error, msg string) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryBadInput, msg).
		WithTextCode(formatErrorCode)
}

// KindOf classifies any error produced by a PageStore operation. Unknown
// errors are treated as backend failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return KindNotFound
	}
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return KindConflict
	}
	var authz *AuthorizationError
	if errors.As(err, &authz) {
		return KindAuthorization
	}
	if errors.Is(err, frontmatter.ErrMissingSentinel) {
		return KindFormat
	}
	if errors.Is(err, slug.ErrEmptyTitle) || errors.Is(err, slug.ErrUnusable) {
		return KindValidation
	}

	var ozzo validation.Errors
	if errors.As(err, &ozzo) {
		return KindValidation
	}
	if goerrors.IsCategory(err, goerrors.CategoryValidation) {
		return KindValidation
	}
	if goerrors.IsCategory(err, goerrors.CategoryBadInput) {
		return KindFormat
	}
	if goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		return KindNotFound
	}
	if goerrors.IsCategory(err, goerrors.CategoryConflict) {
		return KindConflict
	}
	if goerrors.IsCategory(err, goerrors.CategoryAuth) {
		return KindAuthorization
	}

	return KindBackend
}
