package mtcrypto

import "crypto/sha1"

// VerifyAnswerHash checks the §4.5.2 envelope invariant: the first 20
// bytes of decrypted are a SHA1 digest of the remaining bytes. This
// assumes decrypted carries nothing beyond the hashed structure itself;
// callers whose decrypted plaintext may carry trailing AES-IGE
// block-padding after the structure (server_DH_inner_data,
// client_DH_inner_data — see padToBlockMultiple) must use
// VerifyCanonicalAnswerHash instead, since padding bytes were never
// part of what was hashed before encryption.
func VerifyAnswerHash(decrypted []byte) bool {
	if len(decrypted) < sha1.Size {
		return false
	}
	return hashEquals(decrypted[:sha1.Size], decrypted[sha1.Size:])
}

// VerifyCanonicalAnswerHash checks the §4.5.2 envelope invariant
// against a canonical re-encoding of the inner structure rather than
// the raw decrypted remainder: decrypted's leading sha1.Size bytes
// must equal SHA1(canonical). The original implementation recovers
// this by decoding the inner structure first and re-serializing it
// before hashing (original_source's decrypt_answer), rather than
// hashing the decrypted remainder directly — any bytes trailing the
// canonical encoding (AES-IGE block padding) are never part of the
// hash and must be excluded by the caller re-encoding the decoded
// value before calling this.
func VerifyCanonicalAnswerHash(decrypted, canonical []byte) bool {
	if len(decrypted) < sha1.Size {
		return false
	}
	return hashEquals(decrypted[:sha1.Size], canonical)
}

func hashEquals(want, rest []byte) bool {
	got := sha1.Sum(rest)
	for i := range want {
		if want[i] != got[i] {
			return false
		}
	}
	return true
}

// AnswerHashPrefix returns SHA1(rest) || rest, matching the §4.5.2
// envelope the client must build for its own outgoing client_DH_inner_data.
func AnswerHashPrefix(rest []byte) []byte {
	sum := sha1.Sum(rest)
	out := make([]byte, 0, sha1.Size+len(rest))
	out = append(out, sum[:]...)
	out = append(out, rest...)
	return out
}
