package api

import "context"

const unexpectedErrorMessage = "An unexpected error occurred"

// Notifier surfaces user-facing success and error messages.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// FetchOptions configures Fetch. Every field is optional; a nil Notifier
// drops notifications, so callers wanting the logger default pass a LogNotifier.
type FetchOptions[T any] struct {
	OnSuccess      func(data T)
	OnError        func(msg string)
	SuccessMessage string
	Notifier       Notifier
}

// Fetch runs fetcher and routes its envelope to the callbacks: errors go to
// OnError and the notifier, present data goes to OnSuccess and, when
// SuccessMessage is set, to the notifier. The envelope is returned unchanged.
// A panicking fetcher is reported as a status 0 failure.
func Fetch[T any](ctx context.Context, fetcher func(ctx context.Context) Envelope[T], opts FetchOptions[T]) (env Envelope[T]) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		msg := unexpectedErrorMessage
		if err, ok := r.(error); ok {
			msg = err.Error()
		}
		env = failure[T](msg, 0)
		opts.reportError(msg)
	}()

	if fetcher == nil {
		env = failure[T]("fetch: nil fetcher", 0)
		opts.reportError(*env.Error)
		return env
	}
	env = fetcher(ctx)

	if env.Error != nil {
		opts.reportError(*env.Error)
		return env
	}
	if env.Data != nil {
		if opts.OnSuccess != nil {
			opts.OnSuccess(*env.Data)
		}
		if opts.SuccessMessage != "" && opts.Notifier != nil {
			opts.Notifier.Success(opts.SuccessMessage)
		}
	}
	return env
}

func (o FetchOptions[T]) reportError(msg string) {
	if o.OnError != nil {
		o.OnError(msg)
	}
	if o.Notifier != nil {
		o.Notifier.Error(msg)
	}
}

// LogNotifier adapts a Logger into a Notifier.
type LogNotifier struct {
	Log Logger
}

// Success logs msg at debug level.
func (n LogNotifier) Success(msg string) {
	if n.Log != nil {
		n.Log.DebugObj("request succeeded", "notice", msg)
	}
}

// Error logs msg as a warning.
func (n LogNotifier) Error(msg string) {
	if n.Log != nil {
		n.Log.WarnObj("request failed", "notice", msg)
	}
}
