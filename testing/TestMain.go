package testing

import (
	"os"
	"sync"
	stdtesting "testing"

	"github.com/retailpro/retailpro/internal/app"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("RETAILPRO_TEST_MODE", "1")
		if os.Getenv("STORAGE_URL") == "" {
			_ = os.Setenv("STORAGE_URL", "http://127.0.0.1:0")
		}
		// Packages may have read the flag before this init ran.
		app.RefreshTestMode()
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
