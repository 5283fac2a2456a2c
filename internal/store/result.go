package store

// ErrorPayload is the wire form of a failed operation.
type ErrorPayload struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Result is the discriminated envelope exposed to transport layers. Store
// methods return (value, error) natively; Resultify converts at the
// boundary so API handlers emit `{success, data}` or `{success, error}`.
type Result[T any] struct {
	Success bool          `json:"success"`
	Data    T             `json:"data,omitempty"`
	Error   *ErrorPayload `json:"error,omitempty"`
}

// Resultify folds a (value, error) pair into the envelope.
func Resultify[T any](data T, err error) Result[T] {
	if err != nil {
		return Fail[T](err)
	}
	return OK(data)
}

// OK wraps a successful payload.
func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail wraps a failed operation, classifying the error via KindOf.
func Fail[T any](err error) Result[T] {
	return Result[T]{
		Success: false,
		Error: &ErrorPayload{
			Kind:    KindOf(err),
			Message: err.Error(),
		},
	}
}
