package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/avelar/clinic-api/internal/repository"
	"github.com/avelar/clinic-api/internal/tenantctx"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
	"github.com/avelar/clinic-api/pkg/httputil"
)

// SubscriptionGate blocks clinic routes for tenants without a usable
// subscription. Lookups are cached briefly, so a lapsed subscription keeps
// working for at most the cache TTL.
type SubscriptionGate struct {
	subscriptions repository.SubscriptionRepository
	cache         *gocache.Cache
}

func NewSubscriptionGate(subscriptions repository.SubscriptionRepository, ttl, cleanup time.Duration) *SubscriptionGate {
	return &SubscriptionGate{
		subscriptions: subscriptions,
		cache:         gocache.New(ttl, cleanup),
	}
}

func (g *SubscriptionGate) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		tenantID := tenantctx.TenantID(ctx)

		key := tenantID.String()
		if usable, found := g.cache.Get(key); found {
			if usable.(bool) {
				c.Next()
				return
			}
			httputil.RespondWithError(c, apperrors.SubscriptionRequired())
			c.Abort()
			return
		}

		sub, err := g.subscriptions.GetCurrent(ctx, tenantID)
		if err != nil && !apperrors.IsNotFound(err) {
			// A lookup failure is not a verdict: surface it and leave the
			// cache alone so the next request re-checks.
			httputil.RespondWithError(c, err)
			c.Abort()
			return
		}
		usable := err == nil && sub.Usable(time.Now())
		g.cache.SetDefault(key, usable)

		if !usable {
			httputil.RespondWithError(c, apperrors.SubscriptionRequired())
			c.Abort()
			return
		}
		c.Next()
	}
}

// Invalidate drops the cached verdict for a tenant, used after subscription
// changes so the gate reflects them immediately.
func (g *SubscriptionGate) Invalidate(tenantID string) {
	g.cache.Delete(tenantID)
}
