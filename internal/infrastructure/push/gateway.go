// Package push delivers reminder notifications to devices through an external gateway.
package push

import (
	"context"
	"unicode"

	appErrors "carereminder/internal/pkg/errors"

	"github.com/pkg/errors"
)

// maxTokenLength bounds tokens accepted as structurally valid. FCM tokens are ~160 bytes.
const maxTokenLength = 4096

// ErrInvalidToken is returned (possibly wrapped) when the gateway rejects the destination token.
// Any other error from Send is a transport failure.
var ErrInvalidToken = appErrors.ErrInvalidToken

// Message is the notification handed to a gateway.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// Gateway sends a single notification to one device token.
type Gateway interface {
	Send(ctx context.Context, token string, msg Message) error
}

// ValidateToken checks that token is present and structurally plausible.
func ValidateToken(token string) error {
	if token == "" {
		return errors.Wrap(ErrInvalidToken, "push token is absent")
	}
	if len(token) > maxTokenLength {
		return errors.Wrapf(ErrInvalidToken, "push token exceeds %d bytes", maxTokenLength)
	}
	for _, r := range token {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return errors.Wrap(ErrInvalidToken, "push token contains whitespace or control characters")
		}
	}
	return nil
}
