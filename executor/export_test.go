package executor

// WithPinFunc replaces the CPU pinning call made by pinned workers.
func WithPinFunc(pin func(cpu int) error) Option {
	return func(o *options) {
		o.pin = true
		o.pinThread = pin
	}
}
