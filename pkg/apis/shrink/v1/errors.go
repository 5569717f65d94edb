// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package v1

import (
	"errors"
	"fmt"

	"k8s.io/apimachinery/pkg/util/validation/field"

	esclient "github.com/elastic/timeseries-optimizer/pkg/elasticsearch/client"
	"github.com/elastic/timeseries-optimizer/pkg/shrink"
)

// MaxErrorDepth bounds the number of nested causes of an ErrorDescriptor.
const MaxErrorDepth = 16

const (
	// ElasticsearchErrorKind is the kind of non 2xx Elasticsearch responses.
	ElasticsearchErrorKind = "ElasticsearchError"
	// InternalErrorKind is the kind of errors of any other type.
	InternalErrorKind = "InternalError"
)

// ErrorDescriptor is the serializable form of an error and of its causes.
type ErrorDescriptor struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	// Field is the path of the offending request field of a validation error.
	Field string           `json:"field,omitempty"`
	Cause *ErrorDescriptor `json:"cause,omitempty"`
}

// NewErrorDescriptor describes err and its chain of causes, nil if err is nil.
func NewErrorDescriptor(err error) *ErrorDescriptor {
	return newErrorDescriptor(err, 0)
}

func newErrorDescriptor(err error, depth int) *ErrorDescriptor {
	if err == nil || depth >= MaxErrorDepth {
		return nil
	}
	// skip wrappers that only add a stack trace
	for next := errors.Unwrap(err); next != nil && next.Error() == err.Error(); next = errors.Unwrap(err) {
		err = next
	}
	switch e := err.(type) {
	case *shrink.Error:
		return &ErrorDescriptor{
			Kind:    string(e.Kind),
			Message: e.Message,
			Cause:   newErrorDescriptor(e.Unwrap(), depth+1),
		}
	case *field.Error:
		return &ErrorDescriptor{
			Kind:    string(shrink.ValidationError),
			Message: e.ErrorBody(),
			Field:   e.Field,
		}
	case *validationError:
		return &ErrorDescriptor{
			Kind:    string(shrink.ValidationError),
			Message: e.errs.ToAggregate().Error(),
			Field:   e.errs[0].Field,
		}
	case *esclient.APIError:
		return &ErrorDescriptor{
			Kind:    ElasticsearchErrorKind,
			Message: e.Error(),
		}
	}
	return &ErrorDescriptor{
		Kind:    kindOf(err),
		Message: err.Error(),
		Cause:   newErrorDescriptor(errors.Unwrap(err), depth+1),
	}
}

func kindOf(err error) string {
	if kind := shrink.KindOf(err); kind != "" {
		return string(kind)
	}
	if esclient.IsAPIError(err) {
		return ElasticsearchErrorKind
	}
	return InternalErrorKind
}

// validationError carries the field errors of an invalid request.
type validationError struct {
	errs field.ErrorList
}

// NewValidationError turns the field errors of an invalid request into an error, nil if errs is empty.
func NewValidationError(errs field.ErrorList) error {
	if len(errs) == 0 {
		return nil
	}
	return &validationError{errs: errs}
}

func (e *validationError) Error() string {
	return fmt.Sprintf("%s: %s", shrink.ValidationError, e.errs.ToAggregate().Error())
}

// Unwrap exposes the field errors for errors.As.
func (e *validationError) Unwrap() []error {
	return e.errs.ToAggregate().Errors()
}
