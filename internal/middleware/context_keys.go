package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

// ActorHeader names the caller on whose behalf a request is made. There is no
// authentication; the value is recorded in audit fields as given.
const ActorHeader = "X-Actor-ID"

// DefaultActor is used when a request carries no actor.
const DefaultActor = "system"

const actorIDKey = contextKey("actorID")

// ActorMiddleware copies the actor header into the Gin and request contexts.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(ActorHeader))
		if actor == "" {
			actor = DefaultActor
		}
		c.Set(string(actorIDKey), actor)
		c.Request = c.Request.WithContext(WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorIDKey, actor)
}

// GetActorFromCtx returns the actor stored in ctx, or DefaultActor.
func GetActorFromCtx(ctx context.Context) string {
	if actor, ok := ctx.Value(actorIDKey).(string); ok && actor != "" {
		return actor
	}
	return DefaultActor
}

// GetActorIDFromContext retrieves the actor from the Gin context, checking the
// request context as well.
func GetActorIDFromContext(c *gin.Context) string {
	if v, exists := c.Get(string(actorIDKey)); exists {
		if actor, ok := v.(string); ok && actor != "" {
			return actor
		}
	}
	return GetActorFromCtx(c.Request.Context())
}
