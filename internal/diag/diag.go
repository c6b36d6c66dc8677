// Package diag builds a call-stack dump for the kernel's invariant-violation
// panics — an unhandled syscall kind, an access from a process or page that
// does not exist.
// These indicate bugs in the simulator itself, not in the workload it is
// simulating, so the output is meant for the developer, not the operator.
package diag

import (
	"fmt"
	"runtime"
)

// Callerdump returns the call stack starting at the given skip depth (as
// accepted by runtime.Caller), one file:line per line; it prints nothing.
func Callerdump(skip int) string {
	i := skip
	s := ""
	for {
		_, f, l, ok := runtime.Caller(i)
		if !ok {
			break
		}
		i++
		if s == "" {
			s = fmt.Sprintf("%s:%d\n", f, l)
		} else {
			s += fmt.Sprintf("\t<-%s:%d\n", f, l)
		}
	}
	return s
}
