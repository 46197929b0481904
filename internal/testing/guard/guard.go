// Package guard flags test mode before any package init that reads it. Blank
// import it from test files whose packages must not start real servers.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("GYMSTACK_TEST_MODE") == "" {
			_ = os.Setenv("GYMSTACK_TEST_MODE", "1")
		}
	})
}
