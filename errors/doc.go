/*
Package errors implements the error taxonomy shared by all lockswap
extensions.

Every error returned to a client wraps one of the registered root errors.
The root error carries a stable ABCI code so that callers can tell apart,
for example, an escrow that is still locked (retry later) from an escrow
that was already settled by somebody else (give up).

Extensions that need a dedicated code register it with Register(code,
description) during package initialization. Codes are unique, registering
the same code twice panics.

Create errors with ErrXyz.New("...") or errors.Wrap(err, "...") at the
point of failure so that a stack trace is attached. Use fmt with %+v to see
the full trace.
*/
package errors
