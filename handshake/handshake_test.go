package handshake

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"math/big"
	"net"
	"testing"

	"github.com/cvsouth/mtproto-go/mtcrypto"
	"github.com/cvsouth/mtproto-go/tl"
	"github.com/cvsouth/mtproto-go/tl/schema"
	"github.com/cvsouth/mtproto-go/transport"
)

// generate2048SafePrime mirrors dhprime's own test helper: draw up to
// 50 random 2048-bit primes and keep the first safe prime satisfying
// g=2's residue condition, skipping the test if none qualifies, rather
// than shipping a hardcoded literal.
func generate2048SafePrime(t *testing.T) *big.Int {
	t.Helper()
	for attempt := 0; attempt < 50; attempt++ {
		candidate, err := rand.Prime(rand.Reader, 2048)
		if err != nil {
			t.Fatal(err)
		}
		if new(big.Int).Mod(candidate, big.NewInt(8)).Int64() != 7 {
			continue
		}
		half := new(big.Int).Sub(candidate, big.NewInt(1))
		half.Div(half, big.NewInt(2))
		if half.ProbablyPrime(20) {
			return candidate
		}
	}
	t.Skip("could not find a 2048-bit safe prime within the attempt budget")
	return nil
}

// rsaUnpadForTest reverses RSAPad using the private key, standing in
// for the server half of RSA_PAD that production code never needs
// (the client only ever encrypts, never decrypts, this envelope).
func rsaUnpadForTest(ciphertext []byte, priv *rsa.PrivateKey) ([]byte, error) {
	c := new(big.Int).SetBytes(ciphertext)
	m := new(big.Int).Exp(c, priv.D, priv.N)
	keyAesEncrypted := make([]byte, 256)
	m.FillBytes(keyAesEncrypted)

	tkXor := keyAesEncrypted[:32]
	aesEncrypted := keyAesEncrypted[32:]

	ctHash := sha256.Sum256(aesEncrypted)
	tk := make([]byte, 32)
	for i := range tk {
		tk[i] = tkXor[i] ^ ctHash[i]
	}

	zeroIV := make([]byte, 32)
	dataWithHash, err := mtcrypto.IGEDecrypt(tk, zeroIV, aesEncrypted)
	if err != nil {
		return nil, err
	}
	reversed := dataWithHash[:192]
	wantHash := dataWithHash[192:224]

	padded := make([]byte, 192)
	for i, b := range reversed {
		padded[191-i] = b
	}

	h := sha256.New()
	h.Write(tk)
	h.Write(padded)
	if !bytes.Equal(h.Sum(nil), wantHash) {
		return nil, errors.New("RSA_PAD: hash mismatch on decode")
	}
	return padded, nil
}

// mockServerResult is what the scripted server independently derives,
// compared against the client's Result at the end of the test.
type mockServerResult struct {
	authKey    []byte
	serverSalt uint64
	authKeyID  uint64
}

// runMockServer plays the server side of one handshake over conn,
// which must already have had the client's Intermediate Init sentinel
// stripped from its underlying reader. retryOnce forces exactly one
// dh_gen_retry round before the final dh_gen_ok.
func runMockServer(t *testing.T, conn *transport.Conn, priv *rsa.PrivateKey, dhPrime *big.Int, g int32, aServer *big.Int, gA *big.Int, retryOnce bool) mockServerResult {
	t.Helper()

	send := func(obj interface{ Encode(*tl.Writer) error }) {
		var buf bytes.Buffer
		if err := obj.Encode(tl.NewWriter(&buf)); err != nil {
			t.Fatalf("mock server: encode: %v", err)
		}
		framed, err := wrapEnvelope(buf.Bytes())
		if err != nil {
			t.Fatalf("mock server: wrap envelope: %v", err)
		}
		if err := conn.Send(framed); err != nil {
			t.Fatalf("mock server: send: %v", err)
		}
	}
	recv := func() *tl.Reader {
		framed, err := conn.Recv()
		if err != nil {
			t.Fatalf("mock server: recv: %v", err)
		}
		body, err := unwrapEnvelope(framed)
		if err != nil {
			t.Fatalf("mock server: unwrap envelope: %v", err)
		}
		return tl.NewReader(bytes.NewReader(body))
	}

	reqPQ, err := schema.DecodeReqPQMulti(recv())
	if err != nil {
		t.Fatalf("mock server: decode req_pq_multi: %v", err)
	}

	serverNonce, err := randomInt128()
	if err != nil {
		t.Fatal(err)
	}
	pq := new(big.Int).Mul(big.NewInt(1000000007), big.NewInt(1000000009)).Bytes()

	rsaPub := &schema.RSAPublicKey{N: priv.N.Bytes(), E: big.NewInt(int64(priv.E)).Bytes()}
	fingerprint, err := rsaPub.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}

	send(&schema.ResPQ{
		Nonce:                       reqPQ.Nonce,
		ServerNonce:                 serverNonce,
		PQ:                          pq,
		ServerPublicKeyFingerprints: []int64{fingerprint},
	})

	reqDH, err := schema.DecodeReqDHParams(recv())
	if err != nil {
		t.Fatalf("mock server: decode req_DH_params: %v", err)
	}
	padded, err := rsaUnpadForTest(reqDH.EncryptedData, priv)
	if err != nil {
		t.Fatalf("mock server: RSA_PAD decode: %v", err)
	}
	innerReader := tl.NewReader(bytes.NewReader(padded))
	inner, err := schema.DecodePQInnerDataDC(innerReader)
	if err != nil {
		t.Fatalf("mock server: decode p_q_inner_data_dc: %v", err)
	}
	if inner.Nonce != reqPQ.Nonce || inner.ServerNonce != serverNonce {
		t.Fatal("mock server: nonce mismatch in p_q_inner_data")
	}

	answerKey, answerIV := mtcrypto.DeriveAnswerKey(inner.NewNonce.Bytes(), serverNonce.Bytes())

	var innerBuf bytes.Buffer
	dhInner := &schema.ServerDHInnerData{
		Nonce:       inner.Nonce,
		ServerNonce: serverNonce,
		G:           g,
		DHPrime:     dhPrime.Bytes(),
		GA:          gA.Bytes(),
		ServerTime:  1700000000,
	}
	if err := dhInner.Encode(tl.NewWriter(&innerBuf)); err != nil {
		t.Fatal(err)
	}
	framedAnswer := mtcrypto.AnswerHashPrefix(innerBuf.Bytes())
	paddedAnswer, err := padToBlockMultiple(framedAnswer)
	if err != nil {
		t.Fatal(err)
	}
	encryptedAnswer, err := mtcrypto.IGEEncrypt(answerKey[:], answerIV[:], paddedAnswer)
	if err != nil {
		t.Fatal(err)
	}

	send(&schema.ServerDHParamsOk{
		Nonce:           inner.Nonce,
		ServerNonce:     serverNonce,
		EncryptedAnswer: encryptedAnswer,
	})

	for attempt := 0; ; attempt++ {
		setParams, err := schema.DecodeSetClientDHParams(recv())
		if err != nil {
			t.Fatalf("mock server: decode set_client_DH_params: %v", err)
		}
		decrypted, err := mtcrypto.IGEDecrypt(answerKey[:], answerIV[:], setParams.EncryptedData)
		if err != nil {
			t.Fatalf("mock server: decrypt client_DH_inner_data: %v", err)
		}
		if len(decrypted) < sha1.Size {
			t.Fatal("mock server: decrypted client_DH_inner_data shorter than its hash prefix")
		}
		// As on the client's own decode of server_DH_inner_data, the
		// decrypted remainder may carry trailing AES-IGE block padding,
		// so the hash is checked against a canonical re-encoding of the
		// decoded value rather than the raw remainder (§4.5.2).
		clientInner, err := schema.DecodeClientDHInnerData(tl.NewReader(bytes.NewReader(decrypted[sha1.Size:])))
		if err != nil {
			t.Fatalf("mock server: decode client_DH_inner_data: %v", err)
		}
		var canonical bytes.Buffer
		if err := clientInner.Encode(tl.NewWriter(&canonical)); err != nil {
			t.Fatal(err)
		}
		if !mtcrypto.VerifyCanonicalAnswerHash(decrypted, canonical.Bytes()) {
			t.Fatal("mock server: client_DH_inner_data hash check failed")
		}

		gB := new(big.Int).SetBytes(clientInner.GB)
		serverAuthKey := authKeyFixedWidth(gB, aServer, dhPrime)
		aux := authKeyAuxHash(serverAuthKey)

		if retryOnce && attempt == 0 {
			send(&schema.DHGenRetry{
				Nonce:         inner.Nonce,
				ServerNonce:   serverNonce,
				NewNonceHash2: newNonceHash(inner.NewNonce, 2, aux),
			})
			continue
		}

		send(&schema.DHGenOk{
			Nonce:         inner.Nonce,
			ServerNonce:   serverNonce,
			NewNonceHash1: newNonceHash(inner.NewNonce, 1, aux),
		})

		return mockServerResult{
			authKey:    serverAuthKey,
			serverSalt: computeServerSalt(inner.NewNonce, serverNonce),
			authKeyID:  computeAuthKeyID(serverAuthKey),
		}
	}
}

// testServerConn strips the client's one-time Intermediate sentinel
// (0xEE,0xEE,0xEE,0xEE) from rw before wrapping it for the server's own
// framing; transport.Conn has no way to auto-detect an incoming peer's
// sentinel, since a client's own Conn only ever assumes its own variant.
func testServerConn(t *testing.T, rw net.Conn) *transport.Conn {
	t.Helper()
	var sentinel [4]byte
	if _, err := readFullTest(rw, sentinel[:]); err != nil {
		t.Fatalf("strip client sentinel: %v", err)
	}
	if sentinel != ([4]byte{0xEE, 0xEE, 0xEE, 0xEE}) {
		t.Fatalf("unexpected sentinel %x", sentinel)
	}
	return transport.NewPreInitializedConn(rw, transport.Intermediate{})
}

func readFullTest(r net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func runHandshakeEndToEnd(t *testing.T, retryOnce bool) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	clientKeys := KnownKeys{}
	rsaPub := &schema.RSAPublicKey{N: priv.N.Bytes(), E: big.NewInt(int64(priv.E)).Bytes()}
	fingerprint, err := rsaPub.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	clientKeys[fingerprint] = &mtcrypto.RSAPublicKey{N: priv.N, E: big.NewInt(int64(priv.E))}

	dhPrime := generate2048SafePrime(t)
	g := int32(2)
	aServer, err := generateExponent(dhPrime)
	if err != nil {
		t.Fatal(err)
	}
	gA := new(big.Int).Exp(big.NewInt(int64(g)), aServer, dhPrime)

	clientRW, serverRW := net.Pipe()
	defer clientRW.Close()
	defer serverRW.Close()

	clientConn := transport.NewConn(clientRW, transport.Intermediate{})

	resultCh := make(chan *Result, 1)
	errCh := make(chan error, 1)
	go func() {
		res, err := Run(context.Background(), clientConn, clientKeys, Options{})
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- res
	}()

	serverConn := testServerConn(t, serverRW)
	serverResult := runMockServer(t, serverConn, priv, dhPrime, g, aServer, gA, retryOnce)

	select {
	case err := <-errCh:
		t.Fatalf("handshake.Run failed: %v", err)
	case result := <-resultCh:
		if !bytes.Equal(result.AuthKey, serverResult.authKey) {
			t.Fatal("client and server computed different auth_key values")
		}
		if result.ServerSalt != serverResult.serverSalt {
			t.Fatalf("server_salt mismatch: client=%x server=%x", result.ServerSalt, serverResult.serverSalt)
		}
		if result.AuthKeyID != serverResult.authKeyID {
			t.Fatalf("auth_key_id mismatch: client=%x server=%x", result.AuthKeyID, serverResult.authKeyID)
		}
	}
}

func TestHandshakeEndToEndSuccess(t *testing.T) {
	runHandshakeEndToEnd(t, false)
}

func TestHandshakeEndToEndWithRetry(t *testing.T) {
	runHandshakeEndToEnd(t, true)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	body := []byte("hello handshake")
	framed, err := wrapEnvelope(body)
	if err != nil {
		t.Fatal(err)
	}
	got, err := unwrapEnvelope(framed)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, body)
	}
}

func TestUnwrapEnvelopeRejectsNonzeroAuthKeyID(t *testing.T) {
	var buf bytes.Buffer
	w := tl.NewWriter(&buf)
	w.WriteLong(1)
	w.WriteLong(0)
	w.WriteInt(0)
	if _, err := unwrapEnvelope(buf.Bytes()); err == nil {
		t.Fatal("expected rejection of a nonzero auth_key_id")
	}
}

func TestNewNonceHashIsDeterministicAndMarkerSensitive(t *testing.T) {
	newNonce, err := randomInt256()
	if err != nil {
		t.Fatal(err)
	}
	aux := authKeyAuxHash([]byte("fake-auth-key-material"))

	h1a := newNonceHash(newNonce, 1, aux)
	h1b := newNonceHash(newNonce, 1, aux)
	if h1a != h1b {
		t.Fatal("newNonceHash is not deterministic for identical inputs")
	}

	h2 := newNonceHash(newNonce, 2, aux)
	if h1a == h2 {
		t.Fatal("newNonceHash should differ across markers")
	}
}

func TestComputeServerSaltAndAuthKeyIDAreDeterministic(t *testing.T) {
	newNonce, err := randomInt256()
	if err != nil {
		t.Fatal(err)
	}
	serverNonce, err := randomInt128()
	if err != nil {
		t.Fatal(err)
	}
	authKey := make([]byte, 256)
	rand.Read(authKey)

	if computeServerSalt(newNonce, serverNonce) != computeServerSalt(newNonce, serverNonce) {
		t.Fatal("computeServerSalt is not deterministic")
	}
	if computeAuthKeyID(authKey) != computeAuthKeyID(authKey) {
		t.Fatal("computeAuthKeyID is not deterministic")
	}

	digest := sha1.Sum(authKey)
	want := binary.LittleEndian.Uint64(digest[12:20])
	if computeAuthKeyID(authKey) != want {
		t.Fatal("computeAuthKeyID does not match the lower-64-bits-of-SHA1 convention")
	}
}

func TestPadToBlockMultiple(t *testing.T) {
	aligned := make([]byte, 32)
	out, err := padToBlockMultiple(aligned)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 32 {
		t.Fatalf("expected no padding for an already-aligned input, got len %d", len(out))
	}

	unaligned := make([]byte, 37)
	out, err = padToBlockMultiple(unaligned)
	if err != nil {
		t.Fatal(err)
	}
	if len(out)%16 != 0 {
		t.Fatalf("expected a multiple of 16, got len %d", len(out))
	}
	if len(out) <= len(unaligned) {
		t.Fatalf("expected padding to grow the input, got len %d", len(out))
	}
}
