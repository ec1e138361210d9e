package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// SumSHA256 returns the SHA-256 checksum of the provided data.
func SumSHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// ChecksumHex returns the hex-encoded SHA-256 checksum of the provided data.
// Export archives record this alongside the file path.
func ChecksumHex(data []byte) string {
	sum := SumSHA256(data)
	return hex.EncodeToString(sum[:])
}
