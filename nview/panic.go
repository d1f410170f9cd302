package nview

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/pkg/errors"
)

type panicError struct {
	msg   string
	r     any
	stack string
}

func (err panicError) Error() string {
	return "panic: " + err.msg
}

// setErrorOnPanic should be called as a defer.  It
// sets an error value if there is a panic.
func setErrorOnPanic(ep *error, log *slog.Logger) {
	r := recover()
	if r == nil {
		return
	}
	pe := panicError{
		msg:   fmt.Sprint(r),
		r:     r,
		stack: string(debug.Stack()),
	}
	*ep = errors.WithStack(pe)
	log.Error("panic!", "msg", pe.msg, "stack", pe.stack)
}

// RecoverInterface returns the value that recover()
// originally provided.  Or it returns nil if the
// error isn't a from a panic recovery.
func RecoverInterface(err error) any {
	if pe, ok := isPanicError(err); ok {
		return pe.r
	}
	return nil
}

// RecoverStack returns the stack from when recover()
// originally caught the panic.  Or it returns "" if the
// error isn't a from a panic recovery.
func RecoverStack(err error) string {
	if pe, ok := isPanicError(err); ok {
		return pe.stack
	}
	return ""
}

func isPanicError(err error) (panicError, bool) {
	var pe panicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return panicError{}, false
}
