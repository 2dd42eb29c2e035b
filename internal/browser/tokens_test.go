package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStack_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
	}{
		{"single token", []string{"1/abc"}},
		{"several tokens", []string{"first", "second", "third"}},
		{"delimiter inside token", []string{"a::b", "::"}},
		{"binary-ish token", []string{"\x00\xff\xfe", "ünïcødé"}},
		{"padding lengths", []string{"a", "ab", "abc", "abcd"}},
		{"surrounding spaces kept", []string{" tok "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := DecodeTokens(EncodeTokens(tt.tokens))
			require.NoError(t, err)
			assert.Equal(t, tt.tokens, decoded)
		})
	}
}

func TestTokenStack_EmptyValues(t *testing.T) {
	decoded, err := DecodeTokens("")
	require.NoError(t, err)
	assert.Empty(t, decoded)

	decoded, err = DecodeTokens("   ")
	require.NoError(t, err)
	assert.Empty(t, decoded)

	assert.Equal(t, "", EncodeTokens(nil))
	assert.Equal(t, "", EncodeTokens([]string{}))
	assert.Equal(t, "", EncodeTokens([]string{"", "  "}))
}

func TestTokenStack_EncodingIsURLSafe(t *testing.T) {
	encoded := EncodeTokens([]string{"\xfb\xff\xbf?", "x"})
	assert.NotContains(t, encoded, "+")
	assert.NotContains(t, encoded, "/")
	assert.NotContains(t, encoded, "=")
}

func TestTokenStack_ReencodeIsIdempotent(t *testing.T) {
	stack := EncodeTokens([]string{"one", "two"})
	decoded, err := DecodeTokens(stack)
	require.NoError(t, err)
	assert.Equal(t, stack, EncodeTokens(decoded))
}

func TestAppendToken(t *testing.T) {
	stack := EncodeTokens([]string{"one"})

	assert.Equal(t, stack, AppendToken(stack, ""))
	assert.Equal(t, stack, AppendToken(stack, "   "))
	assert.Equal(t, "", AppendToken("", ""))

	assert.Equal(t, EncodeTokens([]string{"two"}), AppendToken("", "two"))
	assert.Equal(t, EncodeTokens([]string{"one", "two"}), AppendToken(stack, "two"))
}

func TestDropLastToken(t *testing.T) {
	assert.Equal(t, "", DropLastToken(""))
	assert.Equal(t, "", DropLastToken(EncodeTokens([]string{"only"})))
	assert.Equal(t,
		EncodeTokens([]string{"one", "two"}),
		DropLastToken(EncodeTokens([]string{"one", "two", "three"})),
	)
}

func TestDecodeTokens_Invalid(t *testing.T) {
	_, err := DecodeTokens("not*base64!")
	assert.ErrorIs(t, err, ErrInvalidTokenStack)
}
