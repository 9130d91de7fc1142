package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*ringDeduper)

// WithCapacity bounds the number of remembered query IDs. Once full, the
// oldest id is forgotten to admit a new one. A non-positive capacity makes
// the deduper unbounded.
func WithCapacity(n int) Option {
	return func(d *ringDeduper) {
		d.capacity = n
	}
}
