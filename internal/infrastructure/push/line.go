package push

import (
	"context"
	"net/http"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/pkg/errors"
)

type lineGateway struct {
	client *linebot.Client
}

// NewLineGateway creates a gateway that pushes reminders as LINE text messages.
// The push token is the recipient's LINE user ID.
func NewLineGateway(channelSecret, channelToken string) (Gateway, error) {
	bot, err := linebot.New(channelSecret, channelToken)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create LINE Bot client")
	}
	return &lineGateway{client: bot}, nil
}

// Send pushes title and body as one text message. LINE messages carry no data payload.
func (g *lineGateway) Send(ctx context.Context, token string, msg Message) error {
	text := linebot.NewTextMessage(msg.Title + "\n" + msg.Body)
	if _, err := g.client.PushMessage(token, text).WithContext(ctx).Do(); err != nil {
		var apiErr *linebot.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusBadRequest || apiErr.Code == http.StatusNotFound) {
			return errors.Wrapf(ErrInvalidToken, "line: %v", err)
		}
		return errors.Wrap(err, "line: failed to push message")
	}
	return nil
}
