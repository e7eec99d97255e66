package block

// Option configures a wrapper at construction.
type Option func(*config)

type config struct {
	signature string
	onRelease []func()
	noEscape  bool
	static    bool
}

// NoEscape builds a non-escaping record: no copy/dispose helpers, IsNoescape set.
// The record is valid only during the native call that receives it; the native
// side must not retain it. Call Close after that call returns.
func NoEscape() Option {
	return func(c *config) { c.noEscape = true }
}

// Static builds a global record (_NSConcreteGlobalBlock). It is never copied or
// disposed, and its captured state lives for the rest of the process.
func Static() Option {
	return func(c *config) { c.static = true }
}

// WithSignature overrides the ObjC type encoding derived from the Go types.
func WithSignature(sig string) Option {
	return func(c *config) { c.signature = sig }
}

// OnRelease registers fn to run once, when the captured state is released.
func OnRelease(fn func()) Option {
	return func(c *config) { c.onRelease = append(c.onRelease, fn) }
}
