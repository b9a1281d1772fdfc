package database

import (
	"fmt"
	"io"

	"github.com/minio/highwayhash"
)

var fingerprint_key = []byte("PCD-DATABASE-FINGERPRINT-KEY-256")

// Fingerprint hashes the resolved state of every token and usage in record
// order. Two passes over the same declarations produce the same fingerprint.
func (m *Manager) Fingerprint() (uint64, error) {
	m.Locker.RLock()
	defer m.Locker.RUnlock()

	hash, err := highwayhash.New64(fingerprint_key)
	if err != nil {
		return 0, err
	}

	for _, tok := range m.sortedTokens() {
		writeToken(hash, tok)
	}
	return hash.Sum64(), nil
}

func writeToken(w io.Writer, tok *Token) {
	fmt.Fprintf(w, "%s\x00%s\x00%s\x00%d\x00%s\x00%d\n",
		tok.Key(), tok.DatumType, tok.PcdType, tok.TokenNumber, tok.Value().Raw, tok.DatumSize)
	for _, u := range tok.Usages() {
		fmt.Fprintf(w, "\t%s\x00%s\x00%s\x00%s\n",
			u.Key(), u.ModulePcdType, u.Direction, tok.ValueFor(u).Raw)
	}
}
