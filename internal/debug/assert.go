//go:build b2debug

// Package debug carries internal consistency checks that are compiled in
// only with the b2debug build tag.
package debug

import "fmt"

// Assert panics with msg when cond is false.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic("b2d: assertion failed: " + fmt.Sprintf(format, args...))
	}
}
