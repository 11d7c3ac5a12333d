package crypto

import (
	"errors"

	"pairchat/internal/domain"
)

// Placeholder maps a decode failure to the text shown instead of the message.
func Placeholder(err error) string {
	if errors.Is(err, domain.ErrInvalidUTF8) {
		return domain.PlaceholderBadUTF8
	}
	return domain.PlaceholderDecode
}
