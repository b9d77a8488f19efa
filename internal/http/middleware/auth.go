package middleware

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

const currentDisplayKey = "currentDisplay"

// DisplayFinder looks a paired display up by its exact device token.
type DisplayFinder interface {
	GetDisplayByToken(ctx context.Context, token string) (model.Display, error)
}

func unauthorized(c *gin.Context, reason string) {
	log.Debug().Str("reason", reason).Str("path", c.FullPath()).Msg("device auth rejected")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

// DeviceAuth checks "Authorization: Bearer <token>", verifies it, loads the
// display owning it and sets "currentDisplay" in context. Every rejection
// gets the same response body.
func DeviceAuth(secret string, displays DisplayFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, "missing auth header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			unauthorized(c, "malformed auth header")
			return
		}
		token := strings.TrimSpace(parts[1])

		displayID, err := parseDeviceToken(token, secret)
		if err != nil {
			unauthorized(c, "token verification failed")
			return
		}

		display, err := displays.GetDisplayByToken(c.Request.Context(), token)
		if errors.Is(err, sql.ErrNoRows) {
			unauthorized(c, "token not assigned to a paired display")
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("device lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if display.ID != displayID {
			unauthorized(c, "token subject does not match display")
			return
		}

		c.Set(currentDisplayKey, &display)
		c.Next()
	}
}

// GetCurrentDisplay retrieves *model.Display from Gin context (after
// DeviceAuth has run).
func GetCurrentDisplay(c *gin.Context) (*model.Display, bool) {
	d, exists := c.Get(currentDisplayKey)
	if !exists {
		return nil, false
	}
	display, ok := d.(*model.Display)
	return display, ok
}
