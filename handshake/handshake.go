// Package handshake drives the MTProto auth_key Diffie-Hellman
// exchange end to end (§4.7): PQ factorization, RSA_PAD-encrypted
// inner data, the server's AES-IGE-encrypted DH answer, DH-prime
// validation, and the final shared-secret computation, with a bounded
// retry loop on dh_gen_retry.
package handshake

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/cvsouth/mtproto-go/bigint"
	"github.com/cvsouth/mtproto-go/dhprime"
	"github.com/cvsouth/mtproto-go/mtcrypto"
	"github.com/cvsouth/mtproto-go/primecache"
	"github.com/cvsouth/mtproto-go/tl"
	"github.com/cvsouth/mtproto-go/tl/schema"
	"github.com/cvsouth/mtproto-go/transport"
)

// maxDHGenRetries bounds the dh_gen_retry loop, mirroring
// circuit.Create's fixed attempt budget for circuit-ID allocation.
const maxDHGenRetries = 5

// KnownKeys maps an RSA public key's fingerprint (as computed by
// schema.RSAPublicKey.Fingerprint) to the arithmetic key material
// RSAPad needs. The caller populates this ahead of time (§6 "an RSA
// public-key set, with their fingerprints"); this package never
// fetches keys itself.
type KnownKeys map[int64]*mtcrypto.RSAPublicKey

// Options configures one handshake attempt.
type Options struct {
	// ExpiresIn selects the temporary-key flow (p_q_inner_data_temp_dc)
	// when non-zero; zero selects the permanent-key flow
	// (p_q_inner_data_dc).
	ExpiresIn int32
	// DC is the datacenter ID field carried in the inner data. This
	// driver does not route by datacenter itself (§1 Non-goals); it
	// only needs a value to put on the wire.
	DC int32
	// Cache memoizes dh_prime safety verdicts across handshakes. Nil
	// uses primecache.Default().
	Cache *primecache.Cache
	// Logger receives structured progress events. Nil uses
	// slog.Default().
	Logger *slog.Logger
}

// Result is the handshake's output (§6 "Returns ... the tuple
// (auth_key_2048bit, server_salt_64bit, auth_key_id_64bit)").
type Result struct {
	AuthKey     []byte
	ServerSalt  uint64
	AuthKeyID   uint64
}

// session carries the state threaded through the handshake's
// transitions, mirroring circuit.Circuit's role as the single struct
// a multi-step handshake accumulates its working state on.
type session struct {
	conn   *transport.Conn
	keys   KnownKeys
	opts   Options
	cache  *primecache.Cache
	logger *slog.Logger

	nonce       tl.Int128
	serverNonce tl.Int128
	newNonce    tl.Int256

	pq          []byte
	p, q        []byte
	fingerprint int64
	rsaKey      *mtcrypto.RSAPublicKey

	dhPrime *big.Int
	g       int32
	gA      *big.Int

	answerKey [32]byte
	answerIV  [32]byte

	b       *big.Int
	gB      []byte
	authKey []byte
}

// Run drives the full handshake over conn and returns the negotiated
// auth_key/server_salt/auth_key_id on success.
func Run(ctx context.Context, conn *transport.Conn, keys KnownKeys, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cache := opts.Cache
	if cache == nil {
		cache = primecache.Default()
	}

	s := &session{conn: conn, keys: keys, opts: opts, cache: cache, logger: logger}
	defer func() {
		clear(s.answerKey[:])
		clear(s.answerIV[:])
		if s.b != nil {
			clear(s.b.Bits())
		}
		s.newNonce = tl.Int256{}
	}()

	nonce, err := randomInt128()
	if err != nil {
		return nil, fmt.Errorf("handshake: generate nonce: %w", err)
	}
	s.nonce = nonce

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.sendReqPQ(); err != nil {
		return nil, fmt.Errorf("handshake: send req_pq_multi: %w", err)
	}
	logger.Debug("sent req_pq_multi")

	if err := s.awaitResPQ(); err != nil {
		return nil, fmt.Errorf("handshake: await resPQ: %w", err)
	}
	logger.Info("received resPQ", "fingerprint", fmt.Sprintf("0x%016x", uint64(s.fingerprint)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.sendReqDHParams(); err != nil {
		return nil, fmt.Errorf("handshake: send req_DH_params: %w", err)
	}
	logger.Debug("sent req_DH_params")

	if err := s.awaitDHParams(); err != nil {
		return nil, fmt.Errorf("handshake: await Server_DH_Params: %w", err)
	}
	logger.Info("DH prime validated", "g", s.g)

	if err := s.sendSetClientDHParams(0); err != nil {
		return nil, fmt.Errorf("handshake: send set_client_DH_params: %w", err)
	}
	logger.Debug("sent set_client_DH_params")

	result, err := s.awaitDHResult(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("handshake complete", "auth_key_id", fmt.Sprintf("0x%016x", result.AuthKeyID))
	return result, nil
}

// send encodes obj (a self-boxing schema type) and hands the wrapped
// plaintext envelope to the transport connection.
func (s *session) send(obj interface{ Encode(*tl.Writer) error }) error {
	var buf bytes.Buffer
	if err := obj.Encode(tl.NewWriter(&buf)); err != nil {
		return err
	}
	framed, err := wrapEnvelope(buf.Bytes())
	if err != nil {
		return err
	}
	return s.conn.Send(framed)
}

// recv reads one frame and returns a TL reader over its unwrapped body.
func (s *session) recv() (*tl.Reader, error) {
	framed, err := s.conn.Recv()
	if err != nil {
		return nil, err
	}
	body, err := unwrapEnvelope(framed)
	if err != nil {
		return nil, err
	}
	return tl.NewReader(bytes.NewReader(body)), nil
}

func (s *session) sendReqPQ() error {
	return s.send(&schema.ReqPQMulti{Nonce: s.nonce})
}

func (s *session) awaitResPQ() error {
	r, err := s.recv()
	if err != nil {
		return err
	}
	resPQ, err := schema.DecodeResPQ(r)
	if err != nil {
		return err
	}
	if resPQ.Nonce != s.nonce {
		return ErrNonceMismatch
	}
	s.serverNonce = resPQ.ServerNonce
	s.pq = resPQ.PQ

	for _, fp := range resPQ.ServerPublicKeyFingerprints {
		if key, ok := s.keys[fp]; ok {
			s.fingerprint = fp
			s.rsaKey = key
			break
		}
	}
	if s.rsaKey == nil {
		return ErrUnknownFingerprint
	}

	p, q, err := bigint.Factorize(s.pq)
	if err != nil {
		return fmt.Errorf("factorize pq: %w", err)
	}
	s.p, s.q = p, q

	newNonce, err := randomInt256()
	if err != nil {
		return err
	}
	s.newNonce = newNonce
	return nil
}

// buildInnerData encodes p_q_inner_data_dc or p_q_inner_data_temp_dc
// depending on opts.ExpiresIn.
func (s *session) buildInnerData() ([]byte, error) {
	var obj interface{ Encode(*tl.Writer) error }
	if s.opts.ExpiresIn != 0 {
		obj = &schema.PQInnerDataTempDC{
			PQ: s.pq, P: s.p, Q: s.q,
			Nonce: s.nonce, ServerNonce: s.serverNonce, NewNonce: s.newNonce,
			DC: s.opts.DC, ExpiresIn: s.opts.ExpiresIn,
		}
	} else {
		obj = &schema.PQInnerDataDC{
			PQ: s.pq, P: s.p, Q: s.q,
			Nonce: s.nonce, ServerNonce: s.serverNonce, NewNonce: s.newNonce,
			DC: s.opts.DC,
		}
	}
	var buf bytes.Buffer
	if err := obj.Encode(tl.NewWriter(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *session) sendReqDHParams() error {
	inner, err := s.buildInnerData()
	if err != nil {
		return err
	}
	encrypted, err := mtcrypto.RSAPad(inner, s.rsaKey)
	if err != nil {
		return fmt.Errorf("RSA_PAD: %w", err)
	}
	return s.send(&schema.ReqDHParams{
		Nonce: s.nonce, ServerNonce: s.serverNonce,
		P: s.p, Q: s.q,
		PublicKeyFingerprint: s.fingerprint,
		EncryptedData:        encrypted,
	})
}

func (s *session) awaitDHParams() error {
	r, err := s.recv()
	if err != nil {
		return err
	}
	result, err := schema.DecodeServerDHParams(r)
	if err != nil {
		return err
	}

	ok, isOk := result.(*schema.ServerDHParamsOk)
	if !isOk {
		return ErrServerDHParamsFail
	}
	if ok.Nonce != s.nonce || ok.ServerNonce != s.serverNonce {
		return ErrServerNonceMismatch
	}

	newNonceBytes := s.newNonce.Bytes()
	serverNonceBytes := s.serverNonce.Bytes()
	s.answerKey, s.answerIV = mtcrypto.DeriveAnswerKey(newNonceBytes, serverNonceBytes)

	decrypted, err := mtcrypto.IGEDecrypt(s.answerKey[:], s.answerIV[:], ok.EncryptedAnswer)
	if err != nil {
		return fmt.Errorf("decrypt server DH answer: %w", err)
	}
	if len(decrypted) < sha1.Size {
		return ErrAnswerHashMismatch
	}

	// The decrypted remainder may carry trailing AES-IGE block padding
	// past the inner structure (padToBlockMultiple on the server's
	// side), so the hash is checked against a canonical re-encoding of
	// the decoded value, not the raw remainder (§4.5.2).
	inner, err := schema.DecodeServerDHInnerData(tl.NewReader(bytes.NewReader(decrypted[sha1.Size:])))
	if err != nil {
		return err
	}
	var canonical bytes.Buffer
	if err := inner.Encode(tl.NewWriter(&canonical)); err != nil {
		return err
	}
	if !mtcrypto.VerifyCanonicalAnswerHash(decrypted, canonical.Bytes()) {
		return ErrAnswerHashMismatch
	}
	if inner.Nonce != s.nonce || inner.ServerNonce != s.serverNonce {
		return ErrServerNonceMismatch
	}

	if err := dhprime.Validate(inner.DHPrime, inner.G, s.cache); err != nil {
		return fmt.Errorf("dh_prime validation: %w", err)
	}

	s.dhPrime = new(big.Int).SetBytes(inner.DHPrime)
	s.g = inner.G
	s.gA = new(big.Int).SetBytes(inner.GA)

	return s.generateClientSecret()
}

// generateClientSecret picks a fresh exponent b and derives g_b and
// auth_key from the already-validated dh_prime/g/g_a. Called once from
// awaitDHParams and again on every dh_gen_retry (§4.7 step 4
// "re-enter step 3").
func (s *session) generateClientSecret() error {
	b, err := generateExponent(s.dhPrime)
	if err != nil {
		return fmt.Errorf("generate DH exponent: %w", err)
	}
	s.b = b
	s.gB = modExpBytes(big.NewInt(int64(s.g)), b, s.dhPrime)
	s.authKey = authKeyFixedWidth(s.gA, b, s.dhPrime)
	return nil
}

func (s *session) sendSetClientDHParams(retryID int64) error {
	inner := &schema.ClientDHInnerData{
		Nonce: s.nonce, ServerNonce: s.serverNonce,
		RetryID: retryID, GB: s.gB, B: s.b.Bytes(),
	}
	var buf bytes.Buffer
	if err := inner.Encode(tl.NewWriter(&buf)); err != nil {
		return err
	}
	framed := mtcrypto.AnswerHashPrefix(buf.Bytes())
	padded, err := padToBlockMultiple(framed)
	if err != nil {
		return err
	}
	encrypted, err := mtcrypto.IGEEncrypt(s.answerKey[:], s.answerIV[:], padded)
	if err != nil {
		return fmt.Errorf("encrypt client DH inner data: %w", err)
	}
	return s.send(&schema.SetClientDHParams{
		Nonce: s.nonce, ServerNonce: s.serverNonce,
		EncryptedData: encrypted,
	})
}

func (s *session) awaitDHResult(ctx context.Context) (*Result, error) {
	for attempt := 0; attempt < maxDHGenRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := s.recv()
		if err != nil {
			return nil, err
		}
		result, err := schema.DecodeDHGenResult(r)
		if err != nil {
			return nil, err
		}

		aux := authKeyAuxHash(s.authKey)
		switch v := result.(type) {
		case *schema.DHGenOk:
			if v.Nonce != s.nonce || v.ServerNonce != s.serverNonce {
				return nil, ErrServerNonceMismatch
			}
			if v.NewNonceHash1 != newNonceHash(s.newNonce, 1, aux) {
				return nil, ErrNewNonceHashMismatch
			}
			return &Result{
				AuthKey:    s.authKey,
				ServerSalt: computeServerSalt(s.newNonce, s.serverNonce),
				AuthKeyID:  computeAuthKeyID(s.authKey),
			}, nil

		case *schema.DHGenRetry:
			if v.NewNonceHash2 != newNonceHash(s.newNonce, 2, aux) {
				return nil, ErrNewNonceHashMismatch
			}
			retryID := int64(binary.LittleEndian.Uint64(aux[:]))
			if err := s.generateClientSecret(); err != nil {
				return nil, err
			}
			if err := s.sendSetClientDHParams(retryID); err != nil {
				return nil, err
			}
			continue

		case *schema.DHGenFail:
			return nil, ErrDHGenFail

		default:
			return nil, fmt.Errorf("handshake: unexpected dh_gen result type %T", result)
		}
	}
	return nil, ErrRetriesExhausted
}

// computeServerSalt XORs the leading 8 bytes of new_nonce and
// server_nonce (the standard MTProto initial-salt derivation; see
// DESIGN.md's Open Questions for why this formula was chosen).
func computeServerSalt(newNonce tl.Int256, serverNonce tl.Int128) uint64 {
	nn := newNonce.Bytes()
	sn := serverNonce.Bytes()
	var salt [8]byte
	for i := range salt {
		salt[i] = nn[i] ^ sn[i]
	}
	return binary.LittleEndian.Uint64(salt[:])
}

// computeAuthKeyID is the lower 64 bits of SHA1(auth_key), read
// little-endian (the same convention as an RSA key fingerprint).
func computeAuthKeyID(authKey []byte) uint64 {
	digest := sha1.Sum(authKey)
	return binary.LittleEndian.Uint64(digest[12:20])
}

// padToBlockMultiple appends cryptographically random bytes so len(b)
// becomes a multiple of the AES block size, as AES-IGE requires
// (§4.7 step 3 "Encrypt it with AES-IGE ... prefix with SHA1").
func padToBlockMultiple(b []byte) ([]byte, error) {
	const blockSize = 16
	pad := (blockSize - len(b)%blockSize) % blockSize
	if pad == 0 {
		return b, nil
	}
	out := make([]byte, len(b)+pad)
	copy(out, b)
	if _, err := rand.Read(out[len(b):]); err != nil {
		return nil, err
	}
	return out, nil
}
