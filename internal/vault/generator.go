package vault

import (
	"crypto/rand"
	"fmt"
)

const (
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"

	defaultGeneratedLength = 16
)

// GenerateOptions selects the character classes and length of a generated
// secret.
type GenerateOptions struct {
	Length  int
	Upper   bool
	Lower   bool
	Digits  bool
	Symbols bool
}

// GenerateSecret produces a random string over the union of the selected
// character classes. Each character is drawn uniformly from crypto/rand
// using rejection sampling, so no charset position is favored.
func GenerateSecret(opts GenerateOptions) (string, error) {
	length := opts.Length
	if length <= 0 {
		length = defaultGeneratedLength
	}

	var charset string
	if opts.Upper {
		charset += upperChars
	}
	if opts.Lower {
		charset += lowerChars
	}
	if opts.Digits {
		charset += digitChars
	}
	if opts.Symbols {
		charset += symbolChars
	}
	if charset == "" {
		return "", fmt.Errorf("%w: at least one character type must be enabled", ErrValidation)
	}

	// Reject bytes beyond the largest multiple of len(charset) so the
	// modulo below stays uniform.
	limit := 256 - 256%len(charset)
	out := make([]byte, 0, length)
	buf := make([]byte, 1)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate secret: %w", err)
		}
		if int(buf[0]) >= limit {
			continue
		}
		out = append(out, charset[int(buf[0])%len(charset)])
	}
	return string(out), nil
}
