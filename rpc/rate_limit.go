package rpc

import (
	"errors"
	"net/http"
	"time"

	"github.com/annchain/gcache"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var ErrRateLimited = errors.New("too many requests")

const (
	limiterCacheSize = 4096
	limiterIdleTTL   = 10 * time.Minute
)

// ClientLimiter keeps one token bucket per client ip. Buckets of clients idle
// for limiterIdleTTL are dropped.
type ClientLimiter struct {
	buckets gcache.Cache
}

// NewClientLimiter returns nil when rps or burst is not positive, which
// disables limiting.
func NewClientLimiter(rps float64, burst int) *ClientLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	buckets := gcache.New(limiterCacheSize).LRU().Expiration(limiterIdleTTL).
		LoaderFunc(func(key interface{}) (interface{}, error) {
			return rate.NewLimiter(rate.Limit(rps), burst), nil
		}).Build()
	return &ClientLimiter{buckets: buckets}
}

func (l *ClientLimiter) Allow(client string) bool {
	if l == nil {
		return true
	}
	v, err := l.buckets.Get(client)
	if err != nil {
		logrus.WithError(err).WithField("client", client).Warn("rate limiter lookup failed")
		return true
	}
	return v.(*rate.Limiter).Allow()
}

func (l *ClientLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			Response(c, http.StatusTooManyRequests, ErrRateLimited, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
