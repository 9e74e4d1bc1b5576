/*
Package lockswap defines the interfaces shared by all parts of the swap
application: storage, transactions, handlers and the context passed between
them. It also holds the address types and the deterministic address
derivation used to give escrow records and holder accounts their identity.

We pass context through context.Context between app, middleware and
handlers. There exist two functions for every value XYZ of type T kept in the
context:

	WithXYZ(Context, T) Context
	GetXYZ(Context) (val T, ok bool)

WithXYZ panics if the value was previously set, so that lower level modules
cannot overwrite the height or the chain id.
*/
package lockswap
