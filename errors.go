package consulta

import (
	"errors"
	"fmt"
)

// Kind discriminates the error surfaces defined by the engine's external
// contract. Handlers switch on Kind to pick an HTTP status and whether the
// failure is user-visible.
type Kind string

const (
	// KindInputInvalid marks a malformed request: length bounds, unknown
	// mode, missing required field. User-visible.
	KindInputInvalid Kind = "input_invalid"

	// KindNotFound marks a missing document or unknown entity id.
	// User-visible.
	KindNotFound Kind = "not_found"

	// KindExternalUnavailable marks an LLM, embedding, or reranker call
	// that is unreachable or timed out.
	KindExternalUnavailable Kind = "external_unavailable"

	// KindCorpusEmpty marks a query against an index with no chunks or a
	// graph with no nodes.
	KindCorpusEmpty Kind = "corpus_empty"

	// KindInternal marks a programmer error: a precondition violation
	// during index build. Logged; process state unchanged.
	KindInternal Kind = "internal"
)

// Error is the engine's error type: every error the core surfaces carries a
// Kind so callers can branch without string matching.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, optional
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("consulta: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("consulta: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// NewInputInvalid builds a KindInputInvalid error.
func NewInputInvalid(msg string) *Error { return &Error{Kind: KindInputInvalid, Msg: msg} }

// NewNotFound builds a KindNotFound error.
func NewNotFound(msg string) *Error { return &Error{Kind: KindNotFound, Msg: msg} }

// NewExternalUnavailable builds a KindExternalUnavailable error wrapping
// the underlying transport failure.
func NewExternalUnavailable(msg string, cause error) *Error {
	return &Error{Kind: KindExternalUnavailable, Msg: msg, Err: cause}
}

// NewCorpusEmpty builds a KindCorpusEmpty error.
func NewCorpusEmpty(msg string) *Error { return &Error{Kind: KindCorpusEmpty, Msg: msg} }

// NewInternal builds a KindInternal error wrapping a precondition
// violation.
func NewInternal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Msg: msg, Err: cause}
}

// KindOf extracts the Kind from err, defaulting to KindInternal for errors
// that did not originate in this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
