package swaptest

import (
	"crypto/rand"

	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/crypto"
)

// NewKey returns a freshly generated private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewAddress returns the identity of a freshly generated key.
func NewAddress() lockswap.Address {
	return NewKey().PublicKey().Address()
}

// NewAsset returns a random 32 byte asset identity.
func NewAsset() lockswap.Address {
	b := make([]byte, lockswap.AddressLength)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// SequenceID returns an 8 byte big endian encoded number.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(n)
		n >>= 8
	}
	return b
}
