package handshake

import "errors"

// Sentinel errors for the DH-exchange state machine (§4.7). Network
// and codec errors from tl/transport/mtcrypto are wrapped with
// fmt.Errorf and surfaced as-is; these are the protocol-level
// rejections a caller might want to match on directly.
var (
	ErrNonceMismatch       = errors.New("handshake: nonce mismatch in server reply")
	ErrServerNonceMismatch = errors.New("handshake: server_nonce mismatch in server reply")
	ErrUnknownFingerprint  = errors.New("handshake: no known RSA key matches any server fingerprint")
	ErrAnswerHashMismatch  = errors.New("handshake: server DH answer failed its SHA1 envelope check")
	ErrServerDHParamsFail  = errors.New("handshake: server rejected req_DH_params (Server_DH_params_fail)")
	ErrDHGenFail           = errors.New("handshake: server rejected set_client_DH_params (dh_gen_fail)")
	ErrRetriesExhausted    = errors.New("handshake: dh_gen_retry budget exhausted")
	ErrNewNonceHashMismatch = errors.New("handshake: server's new_nonce_hash does not match the locally computed auth_key")
)
