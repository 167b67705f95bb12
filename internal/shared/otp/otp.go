// Package otp generates and checks the six-digit email verification codes.
package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"
	"strconv"
	"time"
)

const (
	// TTL is how long an issued code stays valid.
	TTL = 10 * time.Minute

	minCode = 100000
	maxCode = 999999
)

var codeSpan = big.NewInt(maxCode - minCode + 1)

// Generate returns a code uniformly distributed over 100000-999999.
func Generate() string {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		// crypto/rand does not fail on supported platforms.
		panic("otp: read random: " + err.Error())
	}
	return strconv.FormatInt(n.Int64()+minCode, 10)
}

// Expiry returns the absolute expiry for a code issued at now.
func Expiry(now time.Time) time.Time {
	return now.UTC().Add(TTL)
}

// IsExpired reports whether a code with the given expiry is unusable at now.
// A nil expiry is always expired.
func IsExpired(expiresAt *time.Time, now time.Time) bool {
	if expiresAt == nil {
		return true
	}
	return expiresAt.Before(now)
}

// Matches compares a submitted code against the stored one in constant time.
func Matches(stored *string, submitted string) bool {
	if stored == nil || *stored == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*stored), []byte(submitted)) == 1
}
