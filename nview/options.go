package nview

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

type options struct {
	log          *slog.Logger
	authenticate func(*http.Request) (any, error)
	contentType  string
	marshal      func(any) ([]byte, error)
}

// Option configures Handler, View, FormHandler, FormView, and Register.
type Option func(*options)

// WithLogger sets the logger used for failed requests and recovered
// panics.  The default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithAuthenticator sets the function that finds the user of a
// request.  Its result is available as request.User and user.  Errors
// are reported as 401 unless they already carry a ReturnCode.
func WithAuthenticator(authenticate func(*http.Request) (any, error)) Option {
	return func(o *options) {
		o.authenticate = authenticate
	}
}

// WithEncoder replaces the JSON encoding of responses that are
// neither strings, byte slices, nor http.Handlers.
func WithEncoder(contentType string, marshal func(any) ([]byte, error)) Option {
	return func(o *options) {
		o.contentType = contentType
		o.marshal = marshal
	}
}

func makeOptions(opts []Option) options {
	o := options{
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		contentType: "application/json",
		marshal:     json.Marshal,
	}
	for _, f := range opts {
		f(&o)
	}
	return o
}
