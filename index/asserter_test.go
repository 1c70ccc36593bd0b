// asserter_test.go -- tiny fail-fast assertion helper, matching the
// shape used throughout this package's teacher.
package index

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
