package mutex

import "cmp"

// Option configures a Manager at construction time.
type Option[T cmp.Ordered] func(*managerConfig)

type managerConfig struct {
	trace        bool
	valueHint    int
	variableHint int
}

// WithTrace enables a "[manager]"-tagged trace of registration, assignment,
// and restoration calls via the standard log package. It can also be
// enabled without code changes by setting the CSPMUX_TRACE environment
// variable to "1".
func WithTrace[T cmp.Ordered]() Option[T] {
	return func(c *managerConfig) { c.trace = true }
}

// WithCapacityHint preallocates the backing storage of the value and
// variable tables, avoiding reallocation when the final problem size is
// known ahead of time. Either argument may be 0 to leave that table
// unsized.
func WithCapacityHint[T cmp.Ordered](values, variables int) Option[T] {
	return func(c *managerConfig) {
		c.valueHint = values
		c.variableHint = variables
	}
}
