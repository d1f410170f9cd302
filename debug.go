package nlet

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	debugLock     sync.Mutex
	debug         uint32
	debugOutput   string
	debugOutputMu sync.Mutex
)

var (
	debuglnHook func(...any)
	debugfHook  func(string, ...any)
)

func debugEnabled() bool {
	return atomic.LoadUint32(&debug) == 1
}

func debugln(stuff ...any) {
	if !debugEnabled() {
		return
	}

	debugOutputMu.Lock()
	if debuglnHook != nil {
		debuglnHook(stuff...)
	} else {
		debugOutput += fmt.Sprintln(stuff...)
	}
	debugOutputMu.Unlock()
}

func debugf(format string, stuff ...any) {
	if !debugEnabled() {
		return
	}

	debugOutputMu.Lock()
	if debugfHook != nil {
		debugfHook(format, stuff...)
	} else {
		debugOutput += fmt.Sprintf(format+"\n", stuff...)
	}
	debugOutputMu.Unlock()
}

// captureResolveDebugging re-runs a resolution with tracing turned
// on and returns the trace followed by a dump of the namespaces
// involved.
func captureResolveDebugging(ns *Namespace, path []string) string {
	debugLock.Lock()
	defer debugLock.Unlock()
	if atomic.SwapUint32(&debug, 1) == 1 {
		return "already capturing"
	}
	defer atomic.StoreUint32(&debug, 0)

	debugOutputMu.Lock()
	debugOutput = ""
	debugOutputMu.Unlock()

	_, _ = ns.lookupPath(newResolution(), path)

	debugOutputMu.Lock()
	trace := debugOutput
	debugOutputMu.Unlock()
	return trace + "\n" + dumpNamespace(ns)
}

// dumpNamespace describes a namespace, its base chain, and its outer
// chain.
func dumpNamespace(ns *Namespace) string {
	var out string
	for outer := 0; ns != nil; outer++ {
		out += fmt.Sprintf("outer %d:", outer)
		for b := ns; b != nil; b = b.base {
			out += fmt.Sprintf("\n\tnamespace %s", b)
			names := make([]string, 0, len(b.decls))
			for name := range b.decls {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				out += fmt.Sprintf("\n\t\t%s: %s", name, describeDeclaration(b.decls[name]))
			}
		}
		out += "\n"
		ns = ns.outer
	}
	return out
}

func describeDeclaration(decl any) string {
	switch d := decl.(type) {
	case *Descriptor:
		var params []string
		for _, p := range d.params {
			params = append(params, p.String())
		}
		return fmt.Sprintf("descriptor %s(%s)", d.name, strings.Join(params, ", "))
	case Reference:
		return "reference " + d.String()
	case *Namespace:
		return "namespace " + d.String()
	default:
		return fmt.Sprintf("literal %T", decl)
	}
}
