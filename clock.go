package lockswap

import "github.com/iov-one/lockswap/errors"

// Clock is the logical time source used to timestamp and unlock escrows.
// Values returned for consecutive blocks never decrease.
type Clock interface {
	Height(ctx Context) (int64, error)
}

// BlockClock reads the block height stored in the context by the
// application at the beginning of every block.
type BlockClock struct{}

var _ Clock = BlockClock{}

// Height returns the height of the block being processed.
func (BlockClock) Height(ctx Context) (int64, error) {
	height, ok := GetHeight(ctx)
	if !ok {
		return 0, errors.Wrap(errors.ErrHuman, "block height not present in context")
	}
	return height, nil
}

// ClockFunc is an adapter to allow the use of a function as a Clock.
type ClockFunc func(Context) (int64, error)

// Height calls f(ctx).
func (f ClockFunc) Height(ctx Context) (int64, error) {
	return f(ctx)
}
