// asserter_test.go -- tiny fail-fast assertion helper shared by this
// package's tests, in the same shape the teacher's test suite uses.
package hssp

import "testing"

func newAsserter(t *testing.T) func(cond bool, format string, args ...interface{}) {
	t.Helper()
	return func(cond bool, format string, args ...interface{}) {
		if !cond {
			t.Helper()
			t.Fatalf(format, args...)
		}
	}
}
