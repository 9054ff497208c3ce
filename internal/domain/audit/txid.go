// Package audit generates requisition identifiers and maintains the
// append-only history attached to each requisition.
package audit

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"time"
)

const (
	transactionIDPrefix = "PR"
	suffixLength        = 8
	suffixAlphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// TransactionIDPattern matches root and child transaction identifiers
var TransactionIDPattern = regexp.MustCompile(`^PR-\d{8}-[A-Z0-9]+(-\d+)?$`)

// GenerateTransactionID returns PR-YYYYMMDD-XXXXXXXX for the UTC date of now.
// Collisions are resolved by the store's unique constraint and a retry.
func GenerateTransactionID(now time.Time) (string, error) {
	suffix, err := randomSuffix(suffixLength)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s", transactionIDPrefix, now.UTC().Format("20060102"), suffix), nil
}

// ChildTransactionID derives the identifier of the seq-th split child (1-based)
func ChildTransactionID(parent string, seq int) string {
	return fmt.Sprintf("%s-%d", parent, seq)
}

func randomSuffix(n int) (string, error) {
	max := big.NewInt(int64(len(suffixAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		b[i] = suffixAlphabet[idx.Int64()]
	}
	return string(b), nil
}
