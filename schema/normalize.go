package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseCharacterID parses a user supplied id token.
func ParseCharacterID(value string) (CharacterID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, ErrInvalidID
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, value)
	}
	return CharacterID(n), nil
}

// ParseStat parses a positive integer stat such as health or attack.
func ParseStat(field, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidCharacter, field, value)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidCharacter, field, n)
	}
	return n, nil
}
