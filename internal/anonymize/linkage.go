package anonymize

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// exportKey derives a distinct pseudonymization key per export via HKDF so
// the same entity cannot be joined across two anonymized exports.
func exportKey(salt, exportID string) ([]byte, error) {
	reader := hkdf.New(sha256.New, []byte(salt), []byte(exportID), []byte("veil-linkage-prevention"))
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive export key: %w", err)
	}
	return key, nil
}

// pseudonymize replaces identifier fields with one-way HMAC pseudonyms and
// strips any suppression-list field that survived generalization.
func pseudonymize(rows []map[string]any, policy Policy, key []byte) {
	for _, row := range rows {
		for _, field := range policy.IdentifierFields {
			v, ok := row[field]
			if !ok {
				continue
			}
			mac := hmac.New(sha256.New, key)
			fmt.Fprintf(mac, "%v", v)
			row[field] = hex.EncodeToString(mac.Sum(nil))[:16]
		}
		for _, field := range policy.SuppressFields {
			delete(row, field)
		}
	}
}
