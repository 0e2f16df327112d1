package api

// FallbackErrorMessage is used when a failed response carries no usable message.
const FallbackErrorMessage = "An error occurred"

// Envelope is the uniform result of every dispatched request.
//
// Data is set on success, Error on failure; both are nil only for 204 No Content.
// Status is the HTTP status code, or 0 when no response was obtained.
type Envelope[T any] struct {
	Data   *T      `json:"data"`
	Error  *string `json:"error"`
	Status int     `json:"status"`
}

// OK reports whether the call succeeded.
func (e Envelope[T]) OK() bool { return e.Error == nil }

// Reached reports whether a response was received from the server.
func (e Envelope[T]) Reached() bool { return e.Status != 0 }

// Message returns the error message, or "" on success.
func (e Envelope[T]) Message() string {
	if e.Error == nil {
		return ""
	}
	return *e.Error
}

// Value returns the payload and whether one is present.
func (e Envelope[T]) Value() (T, bool) {
	if e.Data == nil {
		var zero T
		return zero, false
	}
	return *e.Data, true
}

func success[T any](data *T, status int) Envelope[T] {
	return Envelope[T]{Data: data, Status: status}
}

func failure[T any](msg string, status int) Envelope[T] {
	if msg == "" {
		msg = FallbackErrorMessage
	}
	return Envelope[T]{Error: &msg, Status: status}
}
