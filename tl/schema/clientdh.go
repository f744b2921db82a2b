package schema

import "github.com/cvsouth/mtproto-go/tl"

// ClientDHInnerData is AES-IGE-encrypted (SHA1-prefixed) and sent as
// SetClientDHParams.EncryptedData:
// client_DH_inner_data#6643b654 nonce:int128 server_nonce:int128
//     retry_id:long g_b:string = Client_DH_Inner_Data;
// B is the client's secret DH exponent; it rides alongside g_b for the
// driver's own bookkeeping but is never written to or read from the
// wire (§4.1 "Skippable fields").
type ClientDHInnerData struct {
	Nonce       tl.Int128
	ServerNonce tl.Int128
	RetryID     int64
	GB          []byte
	B           []byte
}

func (*ClientDHInnerData) ConstructorID() uint32 { return ClientDHInnerDataID }

func (v *ClientDHInnerData) Encode(w *tl.Writer) error {
	if err := w.WriteUint32(ClientDHInnerDataID); err != nil {
		return err
	}
	if err := w.WriteInt128(v.Nonce); err != nil {
		return err
	}
	if err := w.WriteInt128(v.ServerNonce); err != nil {
		return err
	}
	if err := w.WriteLong(v.RetryID); err != nil {
		return err
	}
	return w.WriteBytes(v.GB)
}

// DecodeClientDHInnerData consumes the constructor ID and wire body; B
// is left zero-valued, matching the skip-on-decode contract.
func DecodeClientDHInnerData(r *tl.Reader) (*ClientDHInnerData, error) {
	id, err := r.ReadConstructorID()
	if err != nil {
		return nil, err
	}
	if id != ClientDHInnerDataID {
		return nil, &tl.ErrConstructorMismatch{Expected: ClientDHInnerDataID, Got: id}
	}
	v := &ClientDHInnerData{}
	if v.Nonce, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	if v.ServerNonce, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	if v.RetryID, err = r.ReadLong(); err != nil {
		return nil, err
	}
	if v.GB, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	return v, nil
}

// SetClientDHParams carries the encrypted client_DH_inner_data:
// set_client_DH_params#f5045f1f nonce:int128 server_nonce:int128
//     encrypted_data:string = Set_client_DH_params_answer;
type SetClientDHParams struct {
	Nonce         tl.Int128
	ServerNonce   tl.Int128
	EncryptedData []byte
}

func (*SetClientDHParams) ConstructorID() uint32 { return SetClientDHParamsID }

func (v *SetClientDHParams) Encode(w *tl.Writer) error {
	if err := w.WriteUint32(SetClientDHParamsID); err != nil {
		return err
	}
	if err := w.WriteInt128(v.Nonce); err != nil {
		return err
	}
	if err := w.WriteInt128(v.ServerNonce); err != nil {
		return err
	}
	return w.WriteBytes(v.EncryptedData)
}

// DecodeSetClientDHParams consumes the constructor ID and body; only a
// server role needs this, never the client driver itself.
func DecodeSetClientDHParams(r *tl.Reader) (*SetClientDHParams, error) {
	id, err := r.ReadConstructorID()
	if err != nil {
		return nil, err
	}
	if id != SetClientDHParamsID {
		return nil, &tl.ErrConstructorMismatch{Expected: SetClientDHParamsID, Got: id}
	}
	v := &SetClientDHParams{}
	if v.Nonce, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	if v.ServerNonce, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	if v.EncryptedData, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	return v, nil
}

// DHGenResult is the tagged sum closing the handshake: ok, retry (loop
// back into step 3 with a new retry_id), or fail (abandon).
type DHGenResult interface {
	tl.Object
	isDHGenResult()
}

// DHGenOk: dh_gen_ok#3bcbf734 nonce:int128 server_nonce:int128
//     new_nonce_hash1:int128 = Set_client_DH_params_answer;
type DHGenOk struct {
	Nonce         tl.Int128
	ServerNonce   tl.Int128
	NewNonceHash1 tl.Int128
}

func (*DHGenOk) ConstructorID() uint32 { return DHGenOkID }
func (*DHGenOk) isDHGenResult()        {}

// DHGenRetry: dh_gen_retry#46dc1fb9 nonce:int128 server_nonce:int128
//     new_nonce_hash2:int128 = Set_client_DH_params_answer;
type DHGenRetry struct {
	Nonce         tl.Int128
	ServerNonce   tl.Int128
	NewNonceHash2 tl.Int128
}

func (*DHGenRetry) ConstructorID() uint32 { return DHGenRetryID }
func (*DHGenRetry) isDHGenResult()         {}

// DHGenFail: dh_gen_fail#a69dae02 nonce:int128 server_nonce:int128
//     new_nonce_hash3:int128 = Set_client_DH_params_answer;
type DHGenFail struct {
	Nonce         tl.Int128
	ServerNonce   tl.Int128
	NewNonceHash3 tl.Int128
}

func (*DHGenFail) ConstructorID() uint32 { return DHGenFailID }
func (*DHGenFail) isDHGenResult()         {}

// DecodeDHGenResult peeks the constructor ID and dispatches.
func DecodeDHGenResult(r *tl.Reader) (DHGenResult, error) {
	id, err := r.PeekConstructorID()
	if err != nil {
		return nil, err
	}
	if id != DHGenOkID && id != DHGenRetryID && id != DHGenFailID {
		return nil, &tl.ErrNoVariant{ConstructorID: id}
	}
	if _, err := r.ReadConstructorID(); err != nil {
		return nil, err
	}
	switch id {
	case DHGenOkID:
		v := &DHGenOk{}
		if v.Nonce, err = r.ReadInt128(); err != nil {
			return nil, err
		}
		if v.ServerNonce, err = r.ReadInt128(); err != nil {
			return nil, err
		}
		if v.NewNonceHash1, err = r.ReadInt128(); err != nil {
			return nil, err
		}
		return v, nil
	case DHGenRetryID:
		v := &DHGenRetry{}
		if v.Nonce, err = r.ReadInt128(); err != nil {
			return nil, err
		}
		if v.ServerNonce, err = r.ReadInt128(); err != nil {
			return nil, err
		}
		if v.NewNonceHash2, err = r.ReadInt128(); err != nil {
			return nil, err
		}
		return v, nil
	case DHGenFailID:
		v := &DHGenFail{}
		if v.Nonce, err = r.ReadInt128(); err != nil {
			return nil, err
		}
		if v.ServerNonce, err = r.ReadInt128(); err != nil {
			return nil, err
		}
		if v.NewNonceHash3, err = r.ReadInt128(); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, &tl.ErrNoVariant{ConstructorID: id}
	}
}
