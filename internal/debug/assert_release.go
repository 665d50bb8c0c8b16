//go:build !b2debug

package debug

// Assert is a no-op without the b2debug build tag.
func Assert(bool, string, ...any) {}
