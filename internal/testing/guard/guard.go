package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("RETAILPRO_TEST_MODE") == "" {
			_ = os.Setenv("RETAILPRO_TEST_MODE", "1")
		}
	})
}
