package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/roommate-finder/internal/application"
	"github.com/oksasatya/roommate-finder/pkg/helpers"
	"github.com/oksasatya/roommate-finder/pkg/response"
)

const (
	CtxUserIDKey    = "userID"
	CtxUserEmailKey = "userEmail"
)

// Auth validates the access token cookie and, when Redis is configured, that
// the token belongs to the live session. It sets userID in the Gin context.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.AccessCookie)
		if err != nil || token == "" {
			response.Error(c, http.StatusUnauthorized, "missing access token", response.ErrorBody{Code: "UNAUTHORIZED"})
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid access token", response.ErrorBody{Code: "UNAUTHORIZED"})
			return
		}

		if rdb != nil {
			data, err := rdb.HGetAll(c.Request.Context(), application.SessionKey(claims.UserID)).Result()
			if err != nil || len(data) == 0 || data["sid"] != claims.SessionID {
				response.Error(c, http.StatusUnauthorized, "session not found", response.ErrorBody{Code: "UNAUTHORIZED"})
				return
			}
			c.Set(CtxUserEmailKey, data["email"])
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}
