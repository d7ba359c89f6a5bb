package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when the input text is blank.
	ErrEmptyInput = errors.New("input text is empty")
	// ErrUnknownMode is returned when a prompt mode has no registered template.
	ErrUnknownMode = errors.New("unknown prompt mode")
	// ErrMissingField is returned when a template placeholder has no value.
	ErrMissingField = errors.New("missing template field")
	// ErrCompletion is returned when the completion capability fails.
	ErrCompletion = errors.New("completion failed")
	// ErrEmbedding is returned when the embedding capability fails.
	ErrEmbedding = errors.New("embedding failed")
	// ErrUnknownStrategy is returned for an unregistered summarization strategy.
	ErrUnknownStrategy = errors.New("unknown summarization strategy")
	// ErrUnknownOperation is returned for an unregistered post-processing operation.
	ErrUnknownOperation = errors.New("unknown post-processing operation")
	// ErrInvalidChunking is returned when chunk size and overlap cannot make progress.
	ErrInvalidChunking = errors.New("invalid chunking parameters")
)

// UnknownModeError reports a prompt mode with no template.
type UnknownModeError struct {
	Mode string
}

func (e *UnknownModeError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownMode, e.Mode)
}

func (e *UnknownModeError) Is(target error) bool { return target == ErrUnknownMode }

// MissingFieldError reports a placeholder that was not supplied at render time.
type MissingFieldError struct {
	Mode  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: mode %q requires {%s}", ErrMissingField, e.Mode, e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// CompletionError wraps a failure of the completion capability.
type CompletionError struct {
	Provider  string
	Retryable bool
	Err       error
}

func (e *CompletionError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("%s: %v", ErrCompletion, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", ErrCompletion, e.Provider, e.Err)
}

func (e *CompletionError) Is(target error) bool { return target == ErrCompletion }

func (e *CompletionError) Unwrap() error { return e.Err }

// EmbeddingError wraps a failure of the embedding capability.
type EmbeddingError struct {
	Provider  string
	Retryable bool
	Err       error
}

func (e *EmbeddingError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("%s: %v", ErrEmbedding, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", ErrEmbedding, e.Provider, e.Err)
}

func (e *EmbeddingError) Is(target error) bool { return target == ErrEmbedding }

func (e *EmbeddingError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a transient collaborator failure.
// Caller cancellation is never retryable.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var ce *CompletionError
	if errors.As(err, &ce) {
		return ce.Retryable
	}
	var ee *EmbeddingError
	if errors.As(err, &ee) {
		return ee.Retryable
	}
	return false
}

// AsCompletionError wraps err into a CompletionError unless it already is one
// or is a configuration error that must surface unchanged.
func AsCompletionError(provider string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CompletionError
	if errors.As(err, &ce) || errors.Is(err, ErrUnknownMode) || errors.Is(err, ErrMissingField) {
		return err
	}
	return &CompletionError{Provider: provider, Retryable: errors.Is(err, context.DeadlineExceeded), Err: err}
}

// AsEmbeddingError wraps err into an EmbeddingError unless it already is one.
func AsEmbeddingError(provider string, err error) error {
	if err == nil {
		return nil
	}
	var ee *EmbeddingError
	if errors.As(err, &ee) {
		return err
	}
	return &EmbeddingError{Provider: provider, Retryable: errors.Is(err, context.DeadlineExceeded), Err: err}
}
