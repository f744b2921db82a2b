package handshake

import (
	"bytes"
	"fmt"
	"time"

	"github.com/cvsouth/mtproto-go/tl"
)

// plaintext MTProto messages (used only before an auth_key exists,
// i.e. for this whole handshake) are framed as
// auth_key_id(long,=0) || message_id(long) || message_length(int) || body
// (§6 "a monotonic wall-clock reading ... for message_id generation").
func wrapEnvelope(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := tl.NewWriter(&buf)
	if err := w.WriteLong(0); err != nil {
		return nil, err
	}
	if err := w.WriteLong(nextMessageID()); err != nil {
		return nil, err
	}
	if err := w.WriteInt(int32(len(body))); err != nil {
		return nil, err
	}
	if _, err := buf.Write(body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unwrapEnvelope(framed []byte) ([]byte, error) {
	r := tl.NewReader(bytes.NewReader(framed))
	authKeyID, err := r.ReadLong()
	if err != nil {
		return nil, fmt.Errorf("handshake: read envelope auth_key_id: %w", err)
	}
	if authKeyID != 0 {
		return nil, fmt.Errorf("handshake: expected plaintext envelope (auth_key_id=0), got %d", authKeyID)
	}
	if _, err := r.ReadLong(); err != nil { // message_id, not checked here
		return nil, fmt.Errorf("handshake: read envelope message_id: %w", err)
	}
	length, err := r.ReadInt()
	if err != nil {
		return nil, fmt.Errorf("handshake: read envelope message_length: %w", err)
	}
	body, err := r.ReadRaw(int(length))
	if err != nil {
		return nil, fmt.Errorf("handshake: read envelope body: %w", err)
	}
	return body, nil
}

// nextMessageID implements the documented formula verbatim
// (message_id = seconds << 32); the spec itself flags the missing
// sub-second component as an open question to refine downstream, not
// something this driver corrects (§9 "Open questions").
func nextMessageID() int64 {
	return time.Now().Unix() << 32
}
