/*
Package cash implements the fungible token capability of lockswap.

Balances are kept in holdings, one per (owner, asset) pair, stored under an
address derived from both. Every holding is funded by a storage reserve
paid in the native asset by whoever opened it; the reserve goes back to a
designated recipient when the holding is closed.
*/
package cash
