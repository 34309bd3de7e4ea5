package scanner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Fingerprint computes a stable digest of a file set. Two scans of an
// unchanged tree produce the same fingerprint regardless of traversal
// order.
func Fingerprint(files []FileInfo) string {
	lines := make([]string, 0, len(files))
	for _, f := range files {
		lines = append(lines, fmt.Sprintf("%s:%d:%s", f.Path, f.Size, f.Hash))
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
