package browser

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// tokenDelimiter joins encoded tokens. The raw URL base64 alphabet never
// produces ':'.
const tokenDelimiter = "::"

// ErrInvalidTokenStack indicates a token stack that cannot be decoded.
var ErrInvalidTokenStack = errors.New("invalid token stack")

var tokenEncoding = base64.RawURLEncoding

// DecodeTokens splits an encoded token stack into raw continuation tokens,
// oldest first. Blank input decodes to an empty stack.
func DecodeTokens(stack string) ([]string, error) {
	if isBlank(stack) {
		return []string{}, nil
	}

	parts := strings.Split(strings.TrimSpace(stack), tokenDelimiter)
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if isBlank(part) {
			continue
		}
		raw, err := tokenEncoding.DecodeString(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTokenStack, err)
		}
		tokens = append(tokens, string(raw))
	}
	return tokens, nil
}

// EncodeTokens joins tokens into a transportable stack. Blank tokens are
// skipped.
func EncodeTokens(tokens []string) string {
	encoded := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if isBlank(token) {
			continue
		}
		encoded = append(encoded, tokenEncoding.EncodeToString([]byte(token)))
	}
	return strings.Join(encoded, tokenDelimiter)
}

// AppendToken pushes token onto an encoded stack. A blank token leaves the
// stack unchanged.
func AppendToken(stack, token string) string {
	if isBlank(token) {
		return stack
	}

	encoded := tokenEncoding.EncodeToString([]byte(token))
	if isBlank(stack) {
		return encoded
	}
	return stack + tokenDelimiter + encoded
}

// DropLastToken pops the newest token off an encoded stack. A stack with a
// single token yields "", which means the first page.
func DropLastToken(stack string) string {
	if isBlank(stack) {
		return ""
	}

	idx := strings.LastIndex(stack, tokenDelimiter)
	if idx < 0 {
		return ""
	}
	return stack[:idx]
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
