package schema

import "github.com/cvsouth/mtproto-go/tl"

// ResPQ is the server's reply to req_pq_multi:
// resPQ#05162463 nonce:int128 server_nonce:int128 pq:string
//     server_public_key_fingerprints:Vector<long> = ResPQ;
type ResPQ struct {
	Nonce                       tl.Int128
	ServerNonce                 tl.Int128
	PQ                          []byte
	ServerPublicKeyFingerprints []int64
}

func (*ResPQ) ConstructorID() uint32 { return ResPQID }

func (v *ResPQ) Encode(w *tl.Writer) error {
	if err := w.WriteUint32(ResPQID); err != nil {
		return err
	}
	if err := w.WriteInt128(v.Nonce); err != nil {
		return err
	}
	if err := w.WriteInt128(v.ServerNonce); err != nil {
		return err
	}
	if err := w.WriteBytes(v.PQ); err != nil {
		return err
	}
	return tl.WriteBoxedVector(w, v.ServerPublicKeyFingerprints, func(w *tl.Writer, x int64) error {
		return w.WriteLong(x)
	})
}

// DecodeResPQ consumes the constructor ID and body.
func DecodeResPQ(r *tl.Reader) (*ResPQ, error) {
	id, err := r.ReadConstructorID()
	if err != nil {
		return nil, err
	}
	if id != ResPQID {
		return nil, &tl.ErrConstructorMismatch{Expected: ResPQID, Got: id}
	}
	v := &ResPQ{}
	if v.Nonce, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	if v.ServerNonce, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	if v.PQ, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	v.ServerPublicKeyFingerprints, err = tl.ReadBoxedVector(r, func(r *tl.Reader) (int64, error) {
		return r.ReadLong()
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ReqPQMulti is the handshake's opening message:
// req_pq_multi#be7e8ef1 nonce:int128 = ResPQ;
type ReqPQMulti struct {
	Nonce tl.Int128
}

func (*ReqPQMulti) ConstructorID() uint32 { return ReqPQMultiID }

func (v *ReqPQMulti) Encode(w *tl.Writer) error {
	if err := w.WriteUint32(ReqPQMultiID); err != nil {
		return err
	}
	return w.WriteInt128(v.Nonce)
}

// DecodeReqPQMulti consumes the constructor ID and body; only a server
// role needs this, never the client driver itself.
func DecodeReqPQMulti(r *tl.Reader) (*ReqPQMulti, error) {
	id, err := r.ReadConstructorID()
	if err != nil {
		return nil, err
	}
	if id != ReqPQMultiID {
		return nil, &tl.ErrConstructorMismatch{Expected: ReqPQMultiID, Got: id}
	}
	v := &ReqPQMulti{}
	if v.Nonce, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	return v, nil
}

// PQInnerDataDC is the permanent-key variant of the factored-pq
// envelope sent encrypted under the server's RSA key:
// p_q_inner_data_dc#a9f55f95 pq:string p:string q:string nonce:int128
//     server_nonce:int128 new_nonce:int256 dc:int = P_Q_inner_data;
type PQInnerDataDC struct {
	PQ          []byte
	P           []byte
	Q           []byte
	Nonce       tl.Int128
	ServerNonce tl.Int128
	NewNonce    tl.Int256
	DC          int32
}

func (*PQInnerDataDC) ConstructorID() uint32 { return PQInnerDataDCID }

func (v *PQInnerDataDC) Encode(w *tl.Writer) error {
	if err := w.WriteUint32(PQInnerDataDCID); err != nil {
		return err
	}
	if err := w.WriteBytes(v.PQ); err != nil {
		return err
	}
	if err := w.WriteBytes(v.P); err != nil {
		return err
	}
	if err := w.WriteBytes(v.Q); err != nil {
		return err
	}
	if err := w.WriteInt128(v.Nonce); err != nil {
		return err
	}
	if err := w.WriteInt128(v.ServerNonce); err != nil {
		return err
	}
	if err := w.WriteInt256(v.NewNonce); err != nil {
		return err
	}
	return w.WriteInt(v.DC)
}

// DecodePQInnerDataDC consumes the constructor ID and body. Only a
// test harness playing the server side needs this; the handshake
// driver itself only ever encodes p_q_inner_data.
func DecodePQInnerDataDC(r *tl.Reader) (*PQInnerDataDC, error) {
	id, err := r.ReadConstructorID()
	if err != nil {
		return nil, err
	}
	if id != PQInnerDataDCID {
		return nil, &tl.ErrConstructorMismatch{Expected: PQInnerDataDCID, Got: id}
	}
	v := &PQInnerDataDC{}
	if v.PQ, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if v.P, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if v.Q, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if v.Nonce, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	if v.ServerNonce, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	if v.NewNonce, err = r.ReadInt256(); err != nil {
		return nil, err
	}
	if v.DC, err = r.ReadInt(); err != nil {
		return nil, err
	}
	return v, nil
}

// PQInnerDataTempDC is the temporary-key variant, identical to
// PQInnerDataDC plus a server-enforced expiry:
// p_q_inner_data_temp_dc#56fddf88 pq:string p:string q:string
//     nonce:int128 server_nonce:int128 new_nonce:int256 dc:int
//     expires_in:int = P_Q_inner_data;
type PQInnerDataTempDC struct {
	PQ          []byte
	P           []byte
	Q           []byte
	Nonce       tl.Int128
	ServerNonce tl.Int128
	NewNonce    tl.Int256
	DC          int32
	ExpiresIn   int32
}

func (*PQInnerDataTempDC) ConstructorID() uint32 { return PQInnerDataTempDCID }

func (v *PQInnerDataTempDC) Encode(w *tl.Writer) error {
	if err := w.WriteUint32(PQInnerDataTempDCID); err != nil {
		return err
	}
	if err := w.WriteBytes(v.PQ); err != nil {
		return err
	}
	if err := w.WriteBytes(v.P); err != nil {
		return err
	}
	if err := w.WriteBytes(v.Q); err != nil {
		return err
	}
	if err := w.WriteInt128(v.Nonce); err != nil {
		return err
	}
	if err := w.WriteInt128(v.ServerNonce); err != nil {
		return err
	}
	if err := w.WriteInt256(v.NewNonce); err != nil {
		return err
	}
	if err := w.WriteInt(v.DC); err != nil {
		return err
	}
	return w.WriteInt(v.ExpiresIn)
}

// DecodePQInnerDataTempDC consumes the constructor ID and body (see
// DecodePQInnerDataDC).
func DecodePQInnerDataTempDC(r *tl.Reader) (*PQInnerDataTempDC, error) {
	id, err := r.ReadConstructorID()
	if err != nil {
		return nil, err
	}
	if id != PQInnerDataTempDCID {
		return nil, &tl.ErrConstructorMismatch{Expected: PQInnerDataTempDCID, Got: id}
	}
	v := &PQInnerDataTempDC{}
	if v.PQ, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if v.P, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if v.Q, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if v.Nonce, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	if v.ServerNonce, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	if v.NewNonce, err = r.ReadInt256(); err != nil {
		return nil, err
	}
	if v.DC, err = r.ReadInt(); err != nil {
		return nil, err
	}
	if v.ExpiresIn, err = r.ReadInt(); err != nil {
		return nil, err
	}
	return v, nil
}
