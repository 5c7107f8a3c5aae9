package context

// Environment provides access to process environment variables. Commands
// read secrets like the Gemini API key through it, so tests can inject their
// own values without touching the real environment.
type Environment interface {
	// Get returns the value of the variable named by key, or an empty string
	// if it is unset.
	Get(key string) string
	// Set assigns val to the variable named by key.
	Set(key, val string) error
}
