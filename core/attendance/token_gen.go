package attendance

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

const tokenLength = 8

// tokenAlphabet excludes easily-confused glyphs (0, O, I) so tokens survive
// being read off a phone screen or typed from an email.
const tokenAlphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

var alphabetLen = big.NewInt(int64(len(tokenAlphabet)))

// makeTokenString draws a fixed-length token uniformly from tokenAlphabet
// using a cryptographically secure source.
func makeTokenString() (string, error) {
	var b strings.Builder
	b.Grow(tokenLength)
	for i := 0; i < tokenLength; i++ {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", errors.Wrap(err, "generating token")
		}
		b.WriteByte(tokenAlphabet[n.Int64()])
	}
	return b.String(), nil
}
