package push

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

type rateLimitedGateway struct {
	next    Gateway
	limiter *rate.Limiter
}

// NewRateLimitedGateway caps sends to perSecond with the given burst. Waiting for a slot
// honors ctx, so the dispatcher's send timeout also bounds time spent queued here.
func NewRateLimitedGateway(next Gateway, perSecond float64, burst int) Gateway {
	if burst < 1 {
		burst = 1
	}
	return &rateLimitedGateway{next: next, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (g *rateLimitedGateway) Send(ctx context.Context, token string, msg Message) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "push rate limit")
	}
	return g.next.Send(ctx, token, msg)
}
