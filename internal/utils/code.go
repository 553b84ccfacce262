package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// learnerCodeChars excludes visually confusable characters (0/O, 1/I/L)
// so codes survive being read aloud or written down.
const learnerCodeChars = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const learnerCodeLength = 8

// GenerateLearnerCode returns a random 8-character access code with no
// semantic meaning and no encoding of identity.
func GenerateLearnerCode() (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(learnerCodeChars)))
	for i := 0; i < learnerCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate learner code: %w", err)
		}
		b.WriteByte(learnerCodeChars[n.Int64()])
	}
	return b.String(), nil
}

// IsValidLearnerCode reports whether code has the expected format.
func IsValidLearnerCode(code string) bool {
	if len(code) != learnerCodeLength {
		return false
	}
	upper := strings.ToUpper(code)
	for i := 0; i < len(upper); i++ {
		if !strings.ContainsRune(learnerCodeChars, rune(upper[i])) {
			return false
		}
	}
	return true
}
