// Package guard forces test mode for any package that imports it, so test
// binaries never start the real runtime.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("CONTANUBE_TEST_MODE") == "" {
			_ = os.Setenv("CONTANUBE_TEST_MODE", "1")
		}
	})
}
