// Package schema holds the named MTProto constructors the handshake
// driver speaks: resPQ, p_q_inner_data_*, Server_DH_Params,
// server_DH_inner_data, client_DH_inner_data, and the dh_gen_* replies.
// Field order, names, and constructor IDs follow the canonical MTProto
// auth_key schema.
package schema

// Constructor IDs, little-endian on the wire (§3).
const (
	ResPQID               uint32 = 0x05162463
	ReqPQMultiID          uint32 = 0xBE7E8EF1
	PQInnerDataDCID       uint32 = 0xA9F55F95
	PQInnerDataTempDCID   uint32 = 0x56FDDF88
	ReqDHParamsID         uint32 = 0xD712E4BE
	ServerDHParamsOkID    uint32 = 0xD0E8075C
	ServerDHParamsFailID  uint32 = 0x79CB045D
	ServerDHInnerDataID   uint32 = 0xB5890DBA
	ClientDHInnerDataID   uint32 = 0x6643B654
	SetClientDHParamsID   uint32 = 0xF5045F1F
	DHGenOkID             uint32 = 0x3BCBF734
	DHGenRetryID          uint32 = 0x46DC1FB9
	DHGenFailID           uint32 = 0xA69DAE02
)
