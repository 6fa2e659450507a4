package env

import "os"

// Get returns the named environment variable, or fallback when it is unset
// or empty. Used before config has been parsed.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
