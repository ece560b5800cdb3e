package handler

import (
	"context"
	"fmt"
	"net/http"

	"carereminder/internal/application/dto"
	"carereminder/internal/application/service"
	"carereminder/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/pkg/errors"
)

// LineHandler handles LINE webhook events. With the LINE push provider a user's push token is
// their LINE user ID, so following the bot registers it and unfollowing clears it.
type LineHandler struct {
	channelSecret string
	userService   service.UserService
	log           logger.Logger
}

// NewLineHandler creates a new LineHandler.
func NewLineHandler(channelSecret string, userService service.UserService, log logger.Logger) *LineHandler {
	return &LineHandler{
		channelSecret: channelSecret,
		userService:   userService,
		log:           log,
	}
}

// HandleWebhook is the entry point for POST /line/callback.
func (h *LineHandler) HandleWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	events, err := linebot.ParseRequest(h.channelSecret, c.Request())
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			h.log.Warn("Invalid LINE signature received")
			return c.String(http.StatusBadRequest, "Invalid signature")
		}
		h.log.Error("Failed to parse LINE webhook request", err)
		return c.String(http.StatusInternalServerError, "Error parsing request")
	}

	for _, event := range events {
		if event.Source == nil || event.Source.UserID == "" {
			continue
		}
		switch event.Type {
		case linebot.EventTypeFollow:
			h.handleFollowEvent(ctx, event.Source.UserID)
		case linebot.EventTypeUnfollow:
			h.handleUnfollowEvent(ctx, event.Source.UserID)
		default:
			h.log.Debug(fmt.Sprintf("Unhandled LINE event type: %s", event.Type))
		}
	}

	return c.String(http.StatusOK, "OK")
}

func (h *LineHandler) handleFollowEvent(ctx context.Context, lineUserID string) {
	h.log.Info(fmt.Sprintf("User %s followed the bot.", lineUserID))
	// Errors are logged by the service; LINE only needs the 200.
	_ = h.userService.RegisterPushToken(ctx, dto.RegisterPushTokenRequest{UserID: lineUserID, Token: lineUserID})
}

func (h *LineHandler) handleUnfollowEvent(ctx context.Context, lineUserID string) {
	h.log.Info(fmt.Sprintf("User %s unfollowed or blocked the bot.", lineUserID))
	_ = h.userService.ClearPushToken(ctx, lineUserID)
}
