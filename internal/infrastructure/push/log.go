package push

import (
	"context"

	"carereminder/internal/pkg/logger"
)

type logGateway struct {
	log logger.Logger
}

// NewLogGateway returns a gateway that only logs notifications. Used for local development.
func NewLogGateway(log logger.Logger) Gateway {
	return &logGateway{log: log}
}

func (g *logGateway) Send(ctx context.Context, token string, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.log.WithFields(logger.Fields{
		"token": token,
		"title": msg.Title,
		"body":  msg.Body,
	}).Info("Push notification (log gateway)")
	return nil
}
