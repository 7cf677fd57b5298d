package secret

import (
	"errors"
	"regexp"
	"testing"
	"testing/iotest"

	"github.com/poyrazK/keyportal/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lowerHex = regexp.MustCompile(`^[0-9a-f]*$`)

func TestGenerator_Token(t *testing.T) {
	g := NewGenerator()

	for _, n := range []int{1, 16, domain.SessionTokenBytes, domain.APIKeyBytes, 64} {
		tok, err := g.Token(n)
		require.NoError(t, err)
		assert.Len(t, tok, 2*n)
		assert.Regexp(t, lowerHex, tok)
	}
}

func TestGenerator_TokensDiffer(t *testing.T) {
	g := NewGenerator()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		tok, err := g.Token(domain.APIKeyBytes)
		require.NoError(t, err)
		_, dup := seen[tok]
		require.False(t, dup, "duplicate token generated")
		seen[tok] = struct{}{}
	}
}

func TestGenerator_SourceFailure(t *testing.T) {
	g := NewGeneratorFrom(iotest.ErrReader(errors.New("entropy exhausted")))

	tok, err := g.Token(domain.APIKeyBytes)
	assert.Empty(t, tok)
	assert.ErrorIs(t, err, domain.ErrEntropy)
}

func TestGenerator_InvalidLength(t *testing.T) {
	_, err := NewGenerator().Token(0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
