package endpoints

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Nixie-Tech-LLC/marquee/internal/http/api"
	"github.com/Nixie-Tech-LLC/marquee/internal/http/api/tv/packets"
	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// PlayerService is implemented by player.Service.
type PlayerService interface {
	Config(ctx context.Context, display model.Display) (packets.PlayerConfigResponse, error)
	Diagnose(ctx context.Context, display model.Display) (packets.DiagnosticsResponse, error)
}

type PlayerController struct {
	svc PlayerService
}

func NewPlayerController(svc PlayerService) *PlayerController {
	return &PlayerController{svc: svc}
}

func PlayerModule(svc PlayerService) api.Module {
	ctl := NewPlayerController(svc)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/player/config", ctl.config)
		c.GET("/player/schedules", ctl.schedules)
	})
}

// GET /api/tv/player/config
func (p *PlayerController) config(ctx *gin.Context, display *model.Display) (any, *api.APIError) {
	cfg, err := p.svc.Config(ctx.Request.Context(), *display)
	if err != nil {
		return nil, api.Internal(err)
	}

	zerolog.Ctx(ctx.Request.Context()).Debug().
		Int("display_id", display.ID).
		Bool("playlist", cfg.Playlist != nil).
		Bool("layout", cfg.Layout != nil).
		Msg("player config served")
	return cfg, nil
}

// GET /api/tv/player/schedules
func (p *PlayerController) schedules(ctx *gin.Context, display *model.Display) (any, *api.APIError) {
	diag, err := p.svc.Diagnose(ctx.Request.Context(), *display)
	if err != nil {
		return nil, api.Internal(err)
	}
	return diag, nil
}
