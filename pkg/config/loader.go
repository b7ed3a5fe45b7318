package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once

	mu    sync.Mutex
	cache = map[reflect.Type]any{}
)

// Load populates v from the process environment using `env` struct tags.
// A `.env` file in the working directory is read once, before the first
// parse, if present. Each struct type is parsed once; later calls for the
// same type copy the cached value.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	dotenvOnce.Do(func() { _ = godotenv.Load() })

	key := reflect.TypeFor[T]()

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := cache[key]; ok {
		*v = cached.(T)
		return nil
	}
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	cache[key] = *v
	return nil
}

// MustLoad is Load that panics on failure. Meant for main.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

// Reset drops every cached configuration. Tests use it after changing the
// environment.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	clear(cache)
}
