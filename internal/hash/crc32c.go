// Package hash provides the checksums and name hashes used by the cache spill.
//
// Spill files carry a CRC32-Castagnoli checksum of their payload. Go's crc32
// package uses hardware instructions for the Castagnoli polynomial when available.
package hash

import (
	"hash/crc32"
	"hash/fnv"
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// Name64 returns the 64-bit FNV-1a hash of s. It is used to derive file names.
func Name64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
