package batch

// Default values for batch options.
const (
	// DefaultConcurrency is the number of files converted at once.
	// Conversion is CPU bound, so a small pool is enough.
	DefaultConcurrency = 8
)

// Options configures a Runner.
type Options struct {
	// Concurrency is the number of concurrent workers.
	Concurrency int

	// FinalNewline appends a newline to every normalized document.
	FinalNewline bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Concurrency:  DefaultConcurrency,
		FinalNewline: true,
	}
}

// WithConcurrency sets the number of concurrent workers.
func (o Options) WithConcurrency(n int) Options {
	if n > 0 {
		o.Concurrency = n
	}
	return o
}

// WithFinalNewline sets whether normalized output ends with a newline.
func (o Options) WithFinalNewline(enabled bool) Options {
	o.FinalNewline = enabled
	return o
}
