package uniuri

import "crypto/rand"

// StdLen is the default length, about 95 bits of entropy over StdChars.
const StdLen = 16

var (
	// StdChars is the alphanumeric alphabet.
	StdChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

	// URLChars adds the two URL safe symbols of base64url to StdChars.
	URLChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_")
)

// New returns a random string of StdLen characters from StdChars.
func New() string {
	return NewLenChars(StdLen, StdChars)
}

// NewLen returns a random string of length characters from StdChars.
func NewLen(length int) string {
	return NewLenChars(length, StdChars)
}

// NewLenChars returns a random string of length characters from chars.
// It panics unless chars holds between 2 and 256 symbols.
func NewLenChars(length int, chars []byte) string {
	if length <= 0 {
		return ""
	}

	n := len(chars)
	if n < 2 || n > 256 {
		panic("uniuri: charset must hold 2 to 256 characters")
	}

	// bytes at or above limit would favour the first symbols
	limit := 256 - 256%n

	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4+8)

	for len(out) < length {
		// crypto/rand.Read never returns an error
		_, _ = rand.Read(buf)

		for _, b := range buf {
			if int(b) >= limit {
				continue
			}

			out = append(out, chars[int(b)%n])
			if len(out) == length {
				break
			}
		}
	}

	return string(out)
}
