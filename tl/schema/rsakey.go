package schema

import (
	"crypto/sha1"
	"encoding/binary"

	"github.com/cvsouth/mtproto-go/tl"
)

// RSAPublicKey is the bare type underlying a server's RSA key:
// rsa_public_key n:string e:string = RSAPublicKey;
// It is never boxed on the wire; its only wire use is as the input to
// Fingerprint's hash.
type RSAPublicKey struct {
	N []byte
	E []byte
}

// bareEncode writes the n:string e:string body with no constructor ID,
// matching §3's fingerprint recipe ("the public key is represented as
// a bare type").
func (k *RSAPublicKey) bareEncode(w *tl.Writer) error {
	if err := w.WriteBytes(k.N); err != nil {
		return err
	}
	return w.WriteBytes(k.E)
}

// Fingerprint returns the 64 lower-order bits of SHA1(bare-encoding),
// interpreted little-endian, as used to match a key against a
// resPQ.server_public_key_fingerprints entry (§4.7 "Select a known
// server RSA key by fingerprint").
func (k *RSAPublicKey) Fingerprint() (int64, error) {
	var buf fingerprintBuffer
	w := tl.NewWriter(&buf)
	if err := k.bareEncode(w); err != nil {
		return 0, err
	}
	digest := sha1.Sum(buf)
	return int64(binary.LittleEndian.Uint64(digest[12:20])), nil
}

// fingerprintBuffer is a minimal io.Writer-compatible byte
// accumulator, avoiding a bytes.Buffer import just for one append.
type fingerprintBuffer []byte

func (b *fingerprintBuffer) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}
