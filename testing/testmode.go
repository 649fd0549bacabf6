// Package testing switches the process into test mode when imported by tests so
// binaries and the app runtime skip side effects.
package testing

import (
	"os"
	"sync"
)

const testModeEnv = "ECOPICKUP_TEST_MODE"

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv(testModeEnv, "1")
		if os.Getenv("SESSION_SECRET") == "" {
			_ = os.Setenv("SESSION_SECRET", "test-secret")
		}
	})
}

func init() {
	ensureTestMode()
}
