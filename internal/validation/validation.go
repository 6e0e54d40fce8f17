package validation

import (
	"errors"
	"strings"
)

// ErrMessageEmpty is returned when the message is empty or whitespace-only after trim.
var ErrMessageEmpty = errors.New("message is required")

// ErrMessageTooLong is returned when the message length exceeds the maximum.
var ErrMessageTooLong = errors.New("message too long")

// ValidateMessage trims the input and enforces the maximum length in runes.
// Returns the trimmed string or an error suitable for 400 INVALID_MESSAGE
// responses. The message text itself is unrestricted; it is matched by
// substring downstream, never interpreted.
func ValidateMessage(input string, maxLen int) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ErrMessageEmpty
	}
	if maxLen > 0 && len([]rune(s)) > maxLen {
		return "", ErrMessageTooLong
	}
	return s, nil
}
