package context

// Environment is the interface to the process environment. Commands read
// environment variables through it instead of the os package, so that tests
// don't depend on the real environment.
type Environment interface {
	Get(string) string
	Set(string, string) error
}
