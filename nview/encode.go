package nview

import (
	"log/slog"
	"net/http"

	"github.com/muir/nlet"
	"github.com/pkg/errors"
)

// Caller is implemented by deferred results, like *nop.Operation.
// A resolved Caller is called and its result is the response.
type Caller interface {
	Call() (any, error)
}

func call(model any) (any, error) {
	if c, ok := model.(Caller); ok {
		return c.Call()
	}
	return model, nil
}

// writer notes whether anything was written so that descriptors
// which use the response directly are not answered twice.
type writer struct {
	http.ResponseWriter
	done bool
}

func (w *writer) WriteHeader(code int) {
	w.done = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *writer) Write(b []byte) (int, error) {
	w.done = true
	return w.ResponseWriter.Write(b)
}

func (w *writer) Done() bool { return w.done }

func (h *handler) respond(w *writer, r *http.Request, model any, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if w.Done() {
		return
	}
	switch m := model.(type) {
	case nil:
		w.WriteHeader(http.StatusNoContent)
	case http.Handler:
		m.ServeHTTP(w, r)
	case string:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, err = w.Write([]byte(m))
	case []byte:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, err = w.Write(m)
	default:
		enc, merr := h.o.marshal(model)
		if merr != nil {
			h.o.log.Error("Cannot marshal response",
				"error", merr.Error(),
				"method", r.Method,
				"uri", r.URL.String())
			http.Error(w, merr.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", h.o.contentType)
		_, err = w.Write(enc)
	}
	if err != nil {
		h.o.log.Warn("Cannot write response",
			"error", err.Error(),
			"method", r.Method,
			"uri", r.URL.String())
	}
}

func (h *handler) fail(w *writer, r *http.Request, err error) {
	code := GetReturnCode(err)
	level := slog.LevelWarn
	if code >= 500 {
		level = slog.LevelError
	}
	h.o.log.Log(r.Context(), level, "Request failed",
		"error", err.Error(),
		"code", code,
		"method", r.Method,
		"uri", r.URL.String())
	var de *nlet.DependencyError
	if errors.As(err, &de) && h.o.log.Enabled(r.Context(), slog.LevelDebug) {
		h.o.log.Debug("Resolution failed", "detail", nlet.DetailedError(err))
	}
	if w.Done() {
		return
	}
	http.Error(w, err.Error(), code)
}
