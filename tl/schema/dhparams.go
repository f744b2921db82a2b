package schema

import "github.com/cvsouth/mtproto-go/tl"

// ReqDHParams carries the RSA_PAD-encrypted p_q_inner_data:
// req_DH_params#d712e4be nonce:int128 server_nonce:int128 p:string
//     q:string public_key_fingerprint:long encrypted_data:string
//     = Server_DH_Params;
type ReqDHParams struct {
	Nonce                tl.Int128
	ServerNonce          tl.Int128
	P                    []byte
	Q                    []byte
	PublicKeyFingerprint int64
	EncryptedData        []byte
}

func (*ReqDHParams) ConstructorID() uint32 { return ReqDHParamsID }

func (v *ReqDHParams) Encode(w *tl.Writer) error {
	if err := w.WriteUint32(ReqDHParamsID); err != nil {
		return err
	}
	if err := w.WriteInt128(v.Nonce); err != nil {
		return err
	}
	if err := w.WriteInt128(v.ServerNonce); err != nil {
		return err
	}
	if err := w.WriteBytes(v.P); err != nil {
		return err
	}
	if err := w.WriteBytes(v.Q); err != nil {
		return err
	}
	if err := w.WriteLong(v.PublicKeyFingerprint); err != nil {
		return err
	}
	return w.WriteBytes(v.EncryptedData)
}

// DecodeReqDHParams consumes the constructor ID and body; only a
// server role needs this, never the client driver itself.
func DecodeReqDHParams(r *tl.Reader) (*ReqDHParams, error) {
	id, err := r.ReadConstructorID()
	if err != nil {
		return nil, err
	}
	if id != ReqDHParamsID {
		return nil, &tl.ErrConstructorMismatch{Expected: ReqDHParamsID, Got: id}
	}
	v := &ReqDHParams{}
	if v.Nonce, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	if v.ServerNonce, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	if v.P, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if v.Q, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if v.PublicKeyFingerprint, err = r.ReadLong(); err != nil {
		return nil, err
	}
	if v.EncryptedData, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	return v, nil
}

// ServerDHParams is the tagged sum returned in answer to req_DH_params:
// either the server accepted (ok, carrying the encrypted answer) or it
// didn't (fail, carrying a hash the client can use to abandon cleanly).
// An unrecognized constructor ID is preserved as a decode error rather
// than panicking (§4.1 "an unknown ID is preserved as a failure code").
type ServerDHParams interface {
	tl.Object
	isServerDHParams()
}

// ServerDHParamsOk: server_DH_params_ok#d0e8075c nonce:int128
//     server_nonce:int128 encrypted_answer:string = Server_DH_Params;
type ServerDHParamsOk struct {
	Nonce           tl.Int128
	ServerNonce     tl.Int128
	EncryptedAnswer []byte
}

func (*ServerDHParamsOk) ConstructorID() uint32 { return ServerDHParamsOkID }
func (*ServerDHParamsOk) isServerDHParams()     {}

// ServerDHParamsFail: server_DH_params_fail#79cb045d nonce:int128
//     server_nonce:int128 new_nonce_hash:int128 = Server_DH_Params;
type ServerDHParamsFail struct {
	Nonce        tl.Int128
	ServerNonce  tl.Int128
	NewNonceHash tl.Int128
}

func (*ServerDHParamsFail) ConstructorID() uint32 { return ServerDHParamsFailID }
func (*ServerDHParamsFail) isServerDHParams()      {}

// DecodeServerDHParams peeks the constructor ID and dispatches to the
// matching variant's body decoder, reporting ErrNoVariant on a miss
// (§4.8 "a deserializer that peeks the next 32-bit ID").
func DecodeServerDHParams(r *tl.Reader) (ServerDHParams, error) {
	id, err := r.PeekConstructorID()
	if err != nil {
		return nil, err
	}
	if id != ServerDHParamsOkID && id != ServerDHParamsFailID {
		return nil, &tl.ErrNoVariant{ConstructorID: id}
	}
	if _, err := r.ReadConstructorID(); err != nil {
		return nil, err
	}
	switch id {
	case ServerDHParamsOkID:
		v := &ServerDHParamsOk{}
		if v.Nonce, err = r.ReadInt128(); err != nil {
			return nil, err
		}
		if v.ServerNonce, err = r.ReadInt128(); err != nil {
			return nil, err
		}
		if v.EncryptedAnswer, err = r.ReadBytes(); err != nil {
			return nil, err
		}
		return v, nil
	case ServerDHParamsFailID:
		v := &ServerDHParamsFail{}
		if v.Nonce, err = r.ReadInt128(); err != nil {
			return nil, err
		}
		if v.ServerNonce, err = r.ReadInt128(); err != nil {
			return nil, err
		}
		if v.NewNonceHash, err = r.ReadInt128(); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, &tl.ErrNoVariant{ConstructorID: id}
	}
}

// ServerDHInnerData is the plaintext recovered from
// ServerDHParamsOk.EncryptedAnswer after AES-IGE decryption and SHA1
// verification (§4.5.2):
// server_DH_inner_data#b5890dba nonce:int128 server_nonce:int128 g:int
//     dh_prime:string g_a:string server_time:int = Server_DH_inner_data;
type ServerDHInnerData struct {
	Nonce       tl.Int128
	ServerNonce tl.Int128
	G           int32
	DHPrime     []byte
	GA          []byte
	ServerTime  int32
}

func (*ServerDHInnerData) ConstructorID() uint32 { return ServerDHInnerDataID }

func (v *ServerDHInnerData) Encode(w *tl.Writer) error {
	if err := w.WriteUint32(ServerDHInnerDataID); err != nil {
		return err
	}
	if err := w.WriteInt128(v.Nonce); err != nil {
		return err
	}
	if err := w.WriteInt128(v.ServerNonce); err != nil {
		return err
	}
	if err := w.WriteInt(v.G); err != nil {
		return err
	}
	if err := w.WriteBytes(v.DHPrime); err != nil {
		return err
	}
	if err := w.WriteBytes(v.GA); err != nil {
		return err
	}
	return w.WriteInt(v.ServerTime)
}

// DecodeServerDHInnerData consumes the constructor ID and body.
func DecodeServerDHInnerData(r *tl.Reader) (*ServerDHInnerData, error) {
	id, err := r.ReadConstructorID()
	if err != nil {
		return nil, err
	}
	if id != ServerDHInnerDataID {
		return nil, &tl.ErrConstructorMismatch{Expected: ServerDHInnerDataID, Got: id}
	}
	v := &ServerDHInnerData{}
	if v.Nonce, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	if v.ServerNonce, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	if v.G, err = r.ReadInt(); err != nil {
		return nil, err
	}
	if v.DHPrime, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if v.GA, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if v.ServerTime, err = r.ReadInt(); err != nil {
		return nil, err
	}
	return v, nil
}
