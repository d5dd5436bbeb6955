package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// DefaultKeyer produces unprefixed keys of the form kind:sha256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DocumentKey implements Keyer. Only the lowercased extension and the
// content matter; two uploads of the same bytes share an entry.
func (DefaultKeyer) DocumentKey(filename string, data []byte) string {
	return digestKey("doc", strings.ToLower(filepath.Ext(filename)), Hash(data))
}

// ChatKey implements Keyer.
func (DefaultKeyer) ChatKey(model, system, query string) string {
	return digestKey("chat", model, system, query)
}

// digestKey hashes parts with a length prefix on each, so ("a", "bc") and
// ("ab", "c") land on different keys.
func digestKey(kind string, parts ...string) string {
	h := sha256.New()
	var n [binary.MaxVarintLen64]byte
	for _, p := range parts {
		h.Write(n[:binary.PutUvarint(n[:], uint64(len(p)))])
		h.Write([]byte(p))
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
