package mtcrypto

import "hash/crc32"

// CRC32IEEE returns the IEEE 802.3 CRC32 of data, used by the Full
// transport variant to checksum prefix+seq+payload (§4.2).
func CRC32IEEE(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}
