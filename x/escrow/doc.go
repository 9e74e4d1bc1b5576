/*
Package escrow implements a time-locked two party token swap.

A maker deposits an amount of asset A into a custody vault and states how
much of asset B they want in return. Once the lock period has elapsed, any
taker delivering the requested amount of asset B receives the deposit. The
maker may cancel the escrow and get the deposit back at any time.

Each escrow record lives under an address derived from the maker and a
maker chosen seed. The custody vault is the cash holding owned by that
address. Record and vault are created and destroyed together.
*/
package escrow
