package handshake

import (
	"crypto/rand"
	"math/big"
)

// generateExponent picks a client secret exponent b uniformly in
// [2, dhPrime-2] (§4 "Client DH secret b (random 2048-bit)").
func generateExponent(dhPrime *big.Int) (*big.Int, error) {
	upper := new(big.Int).Sub(dhPrime, big.NewInt(3))
	b, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return nil, err
	}
	return b.Add(b, big.NewInt(2)), nil
}

// modExpBytes computes base^exp mod mod and returns the result as a
// big-endian byte slice with no fixed-width padding, matching the
// minimal-encoding convention bigint.Factorize's outputs already use.
// Used for g_b, which rides the wire as a length-prefixed TL string.
func modExpBytes(base, exp, mod *big.Int) []byte {
	return new(big.Int).Exp(base, exp, mod).Bytes()
}

// authKeyFixedWidth computes base^exp mod mod and left-zero-pads the
// result to exactly 256 bytes (2048 bits), since the authorization key
// is defined as a fixed-width quantity (§4 "Authorization key: the
// 2048-bit shared secret").
func authKeyFixedWidth(base, exp, mod *big.Int) []byte {
	out := make([]byte, 256)
	new(big.Int).Exp(base, exp, mod).FillBytes(out)
	return out
}
