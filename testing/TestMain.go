// Package testing forces test mode for every test binary that imports it.
package testing

import (
	"os"
	stdtesting "testing"

	_ "github.com/contanube/contanube/internal/testing/guard"
)

func TestMain(m *stdtesting.M) {
	os.Exit(m.Run())
}
