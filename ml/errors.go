package ml

import (
	"fmt"
	"strings"
)

// UnknownModelError reports a task/variant pair the registry does not serve.
type UnknownModelError struct {
	Task    Task
	Variant string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model %q for task %q", e.Variant, e.Task)
}

// MissingFieldError reports required input fields absent from the record.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required fields: [%s]", strings.Join(e.Fields, ", "))
}

// InvalidValueError reports a field whose value cannot be coerced to a finite number.
type InvalidValueError struct {
	Field string
	Value interface{}
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for field %q: %v", e.Field, e.Value)
}

// ArtifactLoadError wraps a failure to load a fitted model artifact. It is
// only produced at startup; the service must not come up if it occurs.
type ArtifactLoadError struct {
	Path string
	Err  error
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("failed to load model artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error {
	return e.Err
}
