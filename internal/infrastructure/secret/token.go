// Package secret generates opaque credentials and hashes administrator passwords.
package secret

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/poyrazK/keyportal/internal/core/domain"
)

// Generator produces lowercase hex tokens from a CSPRNG.
type Generator struct {
	src io.Reader
}

// NewGenerator returns a Generator reading from crypto/rand.
func NewGenerator() *Generator {
	return &Generator{src: rand.Reader}
}

// NewGeneratorFrom returns a Generator reading from src. Only tests should need this.
func NewGeneratorFrom(src io.Reader) *Generator {
	return &Generator{src: src}
}

// Token reads byteLength random bytes and returns them hex-encoded (2*byteLength chars).
// A short read or reader failure is reported as domain.ErrEntropy; there is no fallback.
func (g *Generator) Token(byteLength int) (string, error) {
	if byteLength <= 0 {
		return "", fmt.Errorf("%w: token length must be positive, got %d", domain.ErrValidation, byteLength)
	}
	buf := make([]byte, byteLength)
	if _, err := io.ReadFull(g.src, buf); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrEntropy, err)
	}
	return hex.EncodeToString(buf), nil
}
