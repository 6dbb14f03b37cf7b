package result

import (
	"encoding/json"
	"net/http"
)

// Result is either a success carrying Value or a failure carrying one or
// more catalogue errors. The zero value is a success with a zero Value.
type Result[T any] struct {
	Value  T
	Errors []Error
}

// Success wraps v in a successful Result.
func Success[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Failure returns a failed Result holding errs.
func Failure[T any](errs ...Error) Result[T] {
	return Result[T]{Errors: errs}
}

func (r Result[T]) IsSuccess() bool {
	return len(r.Errors) == 0
}

// Err returns the first error, or nil on success.
func (r Result[T]) Err() error {
	if r.IsSuccess() {
		return nil
	}
	return r.Errors[0]
}

// Status is the HTTP status hint: 200 on success, otherwise the status of the
// first error.
func (r Result[T]) Status() int {
	if r.IsSuccess() {
		return http.StatusOK
	}
	return r.Errors[0].HTTPStatus
}

type wireResult[T any] struct {
	IsSuccess bool    `json:"isSuccess"`
	Errors    []Error `json:"errors"`
	Value     *T      `json:"value"`
}

// MarshalJSON renders {"isSuccess", "errors", "value"}; value is null on failure.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	w := wireResult[T]{IsSuccess: r.IsSuccess(), Errors: r.Errors}
	if w.Errors == nil {
		w.Errors = []Error{}
	}
	if w.IsSuccess {
		w.Value = &r.Value
	}
	return json.Marshal(w)
}
