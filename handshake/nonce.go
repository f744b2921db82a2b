package handshake

import (
	"crypto/rand"
	"crypto/sha1"

	"github.com/cvsouth/mtproto-go/tl"
)

func randomInt128() (tl.Int128, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return tl.Int128{}, err
	}
	return tl.Int128FromBytes(buf), nil
}

func randomInt256() (tl.Int256, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return tl.Int256{}, err
	}
	return tl.Int256FromBytes(buf), nil
}

// authKeyAuxHash is the lower 64 bits of SHA1(auth_key), the same
// digest slice convention schema.RSAPublicKey.Fingerprint uses for its
// own lower-64-bits extraction, returned here as raw bytes (rather
// than a little-endian int64) since it only ever feeds another SHA1
// input, never the wire directly.
func authKeyAuxHash(authKey []byte) [8]byte {
	digest := sha1.Sum(authKey)
	var out [8]byte
	copy(out[:], digest[12:20])
	return out
}

// newNonceHash computes new_nonce_hash_i = SHA1(new_nonce || byte(i) ||
// auth_key_aux_hash)[4:20], the 128-bit tag the server and client each
// independently derive to confirm they landed on the same auth_key
// without ever putting auth_key itself on the wire (§4.7 step 4).
func newNonceHash(newNonce tl.Int256, marker byte, aux [8]byte) tl.Int128 {
	nn := newNonce.Bytes()
	input := make([]byte, 0, len(nn)+1+len(aux))
	input = append(input, nn[:]...)
	input = append(input, marker)
	input = append(input, aux[:]...)
	digest := sha1.Sum(input)
	var buf [16]byte
	copy(buf[:], digest[4:20])
	return tl.Int128FromBytes(buf)
}
