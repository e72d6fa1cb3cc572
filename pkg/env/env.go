package env

import "os"

// Get returns the environment variable value when it is set and non-empty,
// otherwise the fallback.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}
