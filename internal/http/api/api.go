package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Nixie-Tech-LLC/marquee/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// ExposeErrorDetail adds the underlying error to 5xx bodies. It must stay
// false in production.
var ExposeErrorDetail = false

type APIError struct {
	Code    int
	Message string
	Err     error
}

func Internal(err error) *APIError {
	return &APIError{Code: http.StatusInternalServerError, Message: "internal server error", Err: err}
}

type HandlerFuncWithDisplay func(ctx *gin.Context, display *model.Display) (any, *APIError)

func ResolveEndpointWithDisplay(h HandlerFuncWithDisplay) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		display, ok := middleware.GetCurrentDisplay(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		result, apiErr := h(ctx, display)
		if apiErr != nil {
			writeError(ctx, apiErr)
			return
		}
		writeJSON(ctx, result)
	}
}

func writeError(ctx *gin.Context, e *APIError) {
	body := gin.H{"error": e.Message}
	if e.Code >= http.StatusInternalServerError {
		zerolog.Ctx(ctx.Request.Context()).Error().Err(e.Err).Str("path", ctx.FullPath()).Msg(e.Message)
		if ExposeErrorDetail && e.Err != nil {
			body["detail"] = e.Err.Error()
		}
	}
	ctx.JSON(e.Code, body)
}

// writeJSON renders result with a strong ETag and answers a matching
// If-None-Match with 304.
func writeJSON(ctx *gin.Context, result any) {
	body, err := json.Marshal(result)
	if err != nil {
		writeError(ctx, Internal(err))
		return
	}

	sum := sha256.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:16]) + `"`
	ctx.Header("ETag", etag)
	ctx.Header("Cache-Control", "no-cache")

	if ctx.Request.Method == http.MethodGet && etagMatches(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}
	ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
