package recipe

import (
	"errors"
	"fmt"
)

// FailureKind classifies extraction and generation failures.
type FailureKind string

const (
	// EmptyInput means no usable text or file was supplied.
	EmptyInput FailureKind = "empty_input"
	// UnsupportedMediaType means a file was present but is neither PDF nor image.
	UnsupportedMediaType FailureKind = "unsupported_media_type"
	// MalformedModelOutput means a model reply could not be parsed as JSON
	// or failed schema validation.
	MalformedModelOutput FailureKind = "malformed_model_output"
	// IncompleteRecipe means valid JSON was returned but a required field
	// is missing or empty.
	IncompleteRecipe FailureKind = "incomplete_recipe"
	// ProviderError means the model call itself failed (network, auth, quota).
	ProviderError FailureKind = "provider_error"
	// CredentialNotReady means no credential is configured for the
	// capability the request needs.
	CredentialNotReady FailureKind = "credential_not_ready"
	// Timeout means a bounded operation ran out of poll attempts or wall
	// clock time.
	Timeout FailureKind = "timeout"
)

// Failure is a classified extraction/generation error. RawOutput carries
// the unparsed model reply, where one exists, for diagnostics.
type Failure struct {
	Kind      FailureKind
	Message   string
	RawOutput string
	Err       error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

// NewFailure builds a Failure without a wrapped cause.
func NewFailure(kind FailureKind, message string) *Failure {
	return &Failure{Kind: kind, Message: message}
}

// WrapFailure builds a Failure around an underlying error.
func WrapFailure(kind FailureKind, message string, err error) *Failure {
	return &Failure{Kind: kind, Message: message, Err: err}
}

// AsFailure extracts a *Failure from err. Unclassified errors are reported
// as ProviderError so callers always see a category.
func AsFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Kind: ProviderError, Message: err.Error(), Err: err}
}
