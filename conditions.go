package lockswap

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"regexp"

	"filippo.io/edwards25519"
	"github.com/iov-one/lockswap/errors"
)

// MaxSalt is the salt the derivation search starts from. The search walks
// down to zero.
const MaxSalt = 255

// derivationTag separates derived addresses from any other sha256 digest
// computed over the same bytes.
var derivationTag = []byte("lockswap/derived")

// it must have (?s) flags, otherwise it errors when last section contains 0x20 (newline)
var perm = regexp.MustCompile(`(?s)^([a-zA-Z0-9_\-]{3,8})/([a-zA-Z0-9_\-]{3,8})/(.+)$`)

// Condition is a specially formatted array, containing
// information on what an address is derived from.
// It is of the format:
//
//	sprintf("%s/%s/%s", extension, type, data)
type Condition []byte

// NewCondition builds a condition from the namespace tag and the payload.
func NewCondition(ext, typ string, data []byte) Condition {
	pre := fmt.Sprintf("%s/%s/", ext, typ)
	return append([]byte(pre), data...)
}

// Parse will extract the sections from the Condition bytes
// and verify it is properly formatted
func (c Condition) Parse() (string, string, []byte, error) {
	chunks := perm.FindSubmatch(c)
	if len(chunks) == 0 {
		return "", "", nil, errors.Wrapf(errors.ErrInvalidInput, "condition: %X", []byte(c))
	}
	// returns [all, match1, match2, match3]
	return string(chunks[1]), string(chunks[2]), chunks[3], nil
}

// Equals checks if two conditions are the same
func (c Condition) Equals(b Condition) bool {
	return bytes.Equal(c, b)
}

// String returns a human readable string.
// We keep the extension and type in ascii and
// hex-encode the binary data
func (c Condition) String() string {
	ext, typ, data, err := c.Parse()
	if err != nil {
		return fmt.Sprintf("Invalid Condition: %X", []byte(c))
	}
	return fmt.Sprintf("%s/%s/%X", ext, typ, data)
}

// Validate returns an error if the Condition is not the proper format
func (c Condition) Validate() error {
	if !perm.Match(c) {
		return errors.Wrapf(errors.ErrInvalidInput, "condition: %X", []byte(c))
	}
	return nil
}

// Derive returns the address of this condition together with the salt that
// produced it. Salts are tried from MaxSalt down to zero and the first
// candidate that is not a valid ed25519 point is used. The same condition
// always results in the same address and salt.
func (c Condition) Derive() (Address, uint8, error) {
	for salt := MaxSalt; salt >= 0; salt-- {
		addr := c.candidate(uint8(salt))
		if !OnCurve(addr) {
			return addr, uint8(salt), nil
		}
	}
	return nil, 0, errors.Wrapf(errors.ErrDerivation, "condition %s", c)
}

// DeriveWithSalt computes the address for the given salt. It fails if the
// resulting candidate is a valid ed25519 point.
func (c Condition) DeriveWithSalt(salt uint8) (Address, error) {
	addr := c.candidate(salt)
	if OnCurve(addr) {
		return nil, errors.Wrapf(errors.ErrDerivation, "salt %d of %s is on curve", salt, c)
	}
	return addr, nil
}

func (c Condition) candidate(salt uint8) Address {
	h := sha256.New()
	_, _ = h.Write(c)
	_, _ = h.Write([]byte{salt})
	_, _ = h.Write(derivationTag)
	return h.Sum(nil)
}

// OnCurve returns true if given bytes are a valid encoding of an ed25519
// point. Only those can be public keys of a signer.
func OnCurve(b []byte) bool {
	if len(b) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
