package mtcrypto

import "crypto/sha1"

// DeriveAnswerKey computes (tmp_aes_key, tmp_aes_iv) from new_nonce
// and server_nonce per §4.5.2, used to decrypt the server's DH-answer
// envelope and to encrypt the client's DH-inner-data reply.
func DeriveAnswerKey(newNonce [32]byte, serverNonce [16]byte) (key, iv [32]byte) {
	a := sha1.Sum(concat(newNonce[:], serverNonce[:]))
	b := sha1.Sum(concat(serverNonce[:], newNonce[:]))
	c := sha1.Sum(concat(newNonce[:], newNonce[:]))

	copy(key[0:20], a[:])
	copy(key[20:32], b[0:12])

	copy(iv[0:8], b[12:20])
	copy(iv[8:28], c[:])
	copy(iv[28:32], newNonce[0:4])

	return key, iv
}

func concat(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}
