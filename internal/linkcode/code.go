// Package linkcode generates and normalizes the short codes a player types on
// a companion device to link their headset to an OAuth account.
package linkcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	// Alphabet is every uppercase letter except the ambiguous I and O.
	Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ"

	// Length is the number of characters in a link code.
	Length = 4
)

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// Generate returns a random code of Length characters sampled uniformly, with
// replacement, from Alphabet.
func Generate() (string, error) {
	code := make([]byte, Length)
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to generate link code: %w", err)
		}
		code[i] = Alphabet[n.Int64()]
	}
	return string(code), nil
}

// Normalize upper-cases input, drops every character outside Alphabet and
// truncates the result to Length. The second return value reports whether a
// full-length code remains.
func Normalize(input string) (string, bool) {
	var b strings.Builder
	b.Grow(Length)
	for _, r := range strings.ToUpper(input) {
		if b.Len() == Length {
			break
		}
		if r < 'A' || r > 'Z' || !strings.ContainsRune(Alphabet, r) {
			continue
		}
		b.WriteRune(r)
	}
	code := b.String()
	return code, len(code) == Length
}

// Valid reports whether code is already in normalized form.
func Valid(code string) bool {
	normalized, ok := Normalize(code)
	return ok && normalized == code
}

// Format renders a code for display (e.g. "ABCD" -> "AB-CD").
func Format(code string) string {
	if len(code) != Length {
		return code
	}
	return code[:2] + "-" + code[2:]
}
