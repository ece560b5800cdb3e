package push

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

type firebaseGateway struct {
	client *messaging.Client
}

// NewFirebaseGateway creates a Firebase Cloud Messaging gateway from a service account file.
func NewFirebaseGateway(ctx context.Context, credentialsPath string) (Gateway, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize Firebase app")
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get messaging client")
	}

	return &firebaseGateway{client: client}, nil
}

// Send delivers msg to a single FCM registration token.
func (g *firebaseGateway) Send(ctx context.Context, token string, msg Message) error {
	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}

	if _, err := g.client.Send(ctx, message); err != nil {
		if messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err) || messaging.IsSenderIDMismatch(err) {
			return errors.Wrapf(ErrInvalidToken, "fcm: %v", err)
		}
		return errors.Wrap(err, "fcm: failed to send notification")
	}
	return nil
}
