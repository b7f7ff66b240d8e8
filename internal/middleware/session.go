package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const SessionCookie = "storefront_session"

// Session attaches a session id to every request, issuing a new cookie
// when none is present. The cart for the session lives under this id.
func Session(ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookie)
		if err != nil || sessionID == "" {
			sessionID = uuid.NewString()
			c.SetCookie(SessionCookie, sessionID, int(ttl.Seconds()), "/", "", false, true)
		}

		c.Set("sessionId", sessionID)
		c.Next()
	}
}
