package store

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainReport prefixes report hashes. The version suffix allows the
// report encoding to change without old hashes colliding with new ones.
const DomainReport = "conform/report/v1"

// ReportHash returns the content hash of a canonical JSON report:
// hex(SHA256(DomainReport + 0x00 + canonical)). Two runs with equal hashes
// produced byte-identical reports.
func ReportHash(canonical []byte) string {
	h := sha256.New()
	h.Write([]byte(DomainReport))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil))
}
