package swaptest

import (
	"context"
	"fmt"

	"github.com/iov-one/lockswap"
)

// Auth is a mock implementing x.Authenticator interface.
//
// This structure authenticates any of referenced signers. Signer is a
// shortcut for a single signer, when both attributes are set all signers
// are considered.
type Auth struct {
	Signer  lockswap.Address
	Signers []lockswap.Address
}

func (a *Auth) GetSigners(lockswap.Context) []lockswap.Address {
	if a.Signer != nil {
		return append([]lockswap.Address{a.Signer}, a.Signers...)
	}
	return a.Signers
}

func (a *Auth) HasAddress(ctx lockswap.Context, addr lockswap.Address) bool {
	for _, s := range a.GetSigners(ctx) {
		if addr.Equals(s) {
			return true
		}
	}
	return false
}

// CtxAuth is a mock implementing x.Authenticator interface.
//
// This implementation is using context to store and retrieve signers.
type CtxAuth struct {
	// Key used to set and retrieve signers from the context. For
	// convinience only string type keys are allowed.
	Key string
}

func (a *CtxAuth) SetSigners(ctx lockswap.Context, signers ...lockswap.Address) lockswap.Context {
	return context.WithValue(ctx, a.Key, signers)
}

func (a *CtxAuth) GetSigners(ctx lockswap.Context) []lockswap.Address {
	val := ctx.Value(a.Key)
	if val == nil {
		return nil
	}
	signers, ok := val.([]lockswap.Address)
	if !ok {
		panic(fmt.Sprintf("instead of []lockswap.Address got %T", val))
	}
	return signers
}

func (a *CtxAuth) HasAddress(ctx lockswap.Context, addr lockswap.Address) bool {
	for _, s := range a.GetSigners(ctx) {
		if addr.Equals(s) {
			return true
		}
	}
	return false
}
