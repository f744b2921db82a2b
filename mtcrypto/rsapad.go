package mtcrypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"math/big"
)

// RSAPublicKey is the arithmetic half of a server's RSA key: (n, e)
// as big.Int, used for the raw modular-exponentiation operation
// RSA_PAD needs. Go's crypto/rsa has no public raw/no-padding
// operation, so the modexp is done directly on the big.Int fields the
// same way crypto/rsa implements it internally (DESIGN.md's mtcrypto
// entry).
type RSAPublicKey struct {
	N *big.Int
	E *big.Int
}

// rsaBlockLen is the fixed 2048-bit RSA block size used throughout
// the handshake's RSA_PAD envelope.
const rsaBlockLen = 256

// Encrypt applies the raw RSA public operation m^e mod n to a
// 256-byte big-endian block, returning a 256-byte big-endian result
// (left-zero-padded if the result is numerically smaller).
func (k *RSAPublicKey) Encrypt(block []byte) []byte {
	m := new(big.Int).SetBytes(block)
	c := new(big.Int).Exp(m, k.E, k.N)
	out := make([]byte, rsaBlockLen)
	c.FillBytes(out)
	return out
}

// cleartextMaxLen is RSA_PAD's input budget (§4.5.1): up to 144 bytes
// of cleartext, padded to a 192-byte block.
const cleartextMaxLen = 144
const paddedLen = 192
const dataWithHashLen = paddedLen + sha256.Size // 224

// ErrCleartextTooLong is returned when RSAPad's input exceeds the
// 144-byte budget.
var ErrCleartextTooLong = errors.New("mtcrypto: RSA_PAD cleartext exceeds 144 bytes")

// RSAPad implements the RSA_PAD envelope (§4.5.1): pad, reverse,
// encrypt under a fresh temporary AES-IGE key, XOR-mask that key with
// SHA256 of the ciphertext, and retry until the result is a valid
// residue mod n before applying the raw RSA operation.
func RSAPad(cleartext []byte, key *RSAPublicKey) ([]byte, error) {
	if len(cleartext) > cleartextMaxLen {
		return nil, ErrCleartextTooLong
	}

	padded := make([]byte, paddedLen)
	copy(padded, cleartext)
	if _, err := rand.Read(padded[len(cleartext):]); err != nil {
		return nil, err
	}

	reversed := make([]byte, paddedLen)
	for i, b := range padded {
		reversed[paddedLen-1-i] = b
	}

	zeroIV := make([]byte, 2*16)

	for {
		tk := make([]byte, 32)
		if _, err := rand.Read(tk); err != nil {
			return nil, err
		}

		h := sha256.New()
		h.Write(tk)
		h.Write(padded)
		dataWithHash := make([]byte, 0, dataWithHashLen)
		dataWithHash = append(dataWithHash, reversed...)
		dataWithHash = append(dataWithHash, h.Sum(nil)...)

		aesEncrypted, err := IGEEncrypt(tk, zeroIV, dataWithHash)
		if err != nil {
			return nil, err
		}

		ctHash := sha256.Sum256(aesEncrypted)
		tkXor := make([]byte, 32)
		for i := range tkXor {
			tkXor[i] = tk[i] ^ ctHash[i]
		}

		keyAesEncrypted := make([]byte, 0, rsaBlockLen)
		keyAesEncrypted = append(keyAesEncrypted, tkXor...)
		keyAesEncrypted = append(keyAesEncrypted, aesEncrypted...)

		if new(big.Int).SetBytes(keyAesEncrypted).Cmp(key.N) >= 0 {
			continue
		}
		return key.Encrypt(keyAesEncrypted), nil
	}
}
