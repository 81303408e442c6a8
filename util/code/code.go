// util/code/code.go
package code

import (
	"crypto/rand"
	"math/big"
)

// Codes identify every entity (users, things, collections, bookings,
// rsvps, faqs, themes). 6 uppercase alphanumerics, 36^6 keyspace, drawn
// from crypto/rand so codes are not guessable or enumerable.

const (
	Length  = 6
	charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// MaxAttempts bounds insert retries when a generated code collides
	// with an existing row (unique violation on the primary key).
	MaxAttempts = 5
)

func Generate() string {
	b := make([]byte, Length)
	max := big.NewInt(int64(len(charset)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("code: crypto/rand unavailable: " + err.Error())
		}
		b[i] = charset[n.Int64()]
	}
	return string(b)
}

// Valid reports whether s looks like a generated code.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
