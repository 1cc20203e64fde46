package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"agora/internal/models"
	"agora/internal/services"
	"agora/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	CheckUserKey  = "user"
	SessionUserID = "user_id"

	userCacheTTL = 5 * time.Minute
)

// UserLookup resolves a session's user id.
type UserLookup interface {
	GetUser(ctx context.Context, id uint) (models.User, error)
}

// Identity resolves the session user through a small LRU so a request does not
// always cost a user query.
type Identity struct {
	users UserLookup
	cache *utils.TTLCache[uint, models.User]
}

func NewIdentity(users UserLookup, cacheSize int) (*Identity, error) {
	if cacheSize <= 0 {
		cacheSize = 1
	}
	cache, err := utils.NewTTLCache[uint, models.User](cacheSize, userCacheTTL)
	if err != nil {
		return nil, err
	}
	return &Identity{users: users, cache: cache}, nil
}

// LoadUser retrieves the user from the session and sets it on the context.
// A session pointing at a missing user is cleared.
func (i *Identity) LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id, ok := sessionUserID(session.Get(SessionUserID))
		if !ok {
			c.Next()
			return
		}

		user, cached := i.cache.Get(id)
		if !cached {
			var err error
			user, err = i.users.GetUser(c.Request.Context(), id)
			switch {
			case err == nil:
				i.cache.Set(id, user)
			case errors.Is(err, services.ErrNotFound):
				session.Delete(SessionUserID)
				_ = session.Save()
				c.Next()
				return
			default:
				zap.L().Error("load session user", zap.Uint("user_id", id), zap.Error(err))
				c.Next()
				return
			}
		}

		c.Set(CheckUserKey, &user)
		c.Next()
	}
}

// Forget drops a cached user, used on logout.
func (i *Identity) Forget(id uint) {
	i.cache.Delete(id)
}

// AuthRequired rejects requests without a resolved user.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    services.KindUnauthenticated,
				"message": "authentication required",
			})
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(CheckUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// CurrentUserID returns 0 for anonymous requests.
func CurrentUserID(c *gin.Context) uint {
	if user, ok := CurrentUser(c); ok {
		return user.ID
	}
	return 0
}

func sessionUserID(v any) (uint, bool) {
	switch id := v.(type) {
	case uint:
		return id, id != 0
	case int:
		return uint(id), id > 0
	case int64:
		return uint(id), id > 0
	default:
		return 0, false
	}
}
