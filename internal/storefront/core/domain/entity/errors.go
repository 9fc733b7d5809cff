package entity

import (
	"errors"
	"fmt"
)

// ErrorKind is the single classification every failed request is mapped to.
type ErrorKind string

const (
	KindNone          ErrorKind = ""
	KindCancelled     ErrorKind = "CANCELLED"
	KindStockConflict ErrorKind = "STOCK_CONFLICT"
	KindServerError   ErrorKind = "SERVER_ERROR"
	KindNetworkError  ErrorKind = "NETWORK_ERROR"
	KindClientError   ErrorKind = "CLIENT_ERROR"
)

// NetworkErrorMessage is shown when a request was sent but never answered.
const NetworkErrorMessage = "could not reach the server, please check your connection and try again"

// RequestError is a classified request failure. Callers branch on Kind and
// never on the underlying transport error.
type RequestError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Conflicts  []Conflict
	err        error
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.err)
	}
	return string(e.Kind)
}

func (e *RequestError) Unwrap() error {
	return e.err
}

// NewRequestError builds a classified error wrapping cause.
func NewRequestError(kind ErrorKind, message string, cause error) *RequestError {
	return &RequestError{Kind: kind, Message: message, err: cause}
}

// NewConflictError builds the StockConflict error carried by a 409 response.
func NewConflictError(conflicts []Conflict) *RequestError {
	return &RequestError{
		Kind:       KindStockConflict,
		Message:    fmt.Sprintf("%d item(s) exceed available stock", len(conflicts)),
		StatusCode: 409,
		Conflicts:  conflicts,
	}
}

// KindOf returns the classification of err, or KindClientError for errors
// that never went through the request pipeline.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	return KindClientError
}

// AsRequestError returns err as a *RequestError, classifying unknown errors
// as client errors.
func AsRequestError(err error) *RequestError {
	if err == nil {
		return nil
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr
	}
	return NewRequestError(KindClientError, err.Error(), err)
}

// IsCancelled reports whether err means the caller went away.
func IsCancelled(err error) bool {
	return KindOf(err) == KindCancelled
}
