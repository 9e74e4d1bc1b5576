package escrow

import "github.com/iov-one/lockswap/errors"

// ErrEscrowLocked is returned when an escrow is taken before its lock
// period elapsed. The same call may succeed later.
var ErrEscrowLocked = errors.Register(6000, "escrow locked")
