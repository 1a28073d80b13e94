package handler

import (
	"errors"
	"net/http"

	"film-ticket-desk/internal/dispatch"
	"film-ticket-desk/internal/model"
	apperrors "film-ticket-desk/pkg/app_errors"
	"film-ticket-desk/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FilmHandler struct {
	commander dispatch.Commander
}

func NewFilmHandler(commander dispatch.Commander) *FilmHandler {
	return &FilmHandler{commander: commander}
}

func (h *FilmHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("screen", h.GetScreen)
		router.POST("catalog/reload", h.ReloadCatalog)
		router.POST("films/:id/select", h.SelectFilm)
		router.POST("films/:id/buy", h.BuyTicket)
		router.DELETE("films/:id", h.DeleteSoldOut)
	}
}

func (h *FilmHandler) GetScreen(c *gin.Context) {
	c.JSON(http.StatusOK, h.commander.Snapshot())
}

func (h *FilmHandler) ReloadCatalog(c *gin.Context) {
	h.run(c, dispatch.LoadCatalog{}, "ReloadCatalog")
}

func (h *FilmHandler) SelectFilm(c *gin.Context) {
	var uri FilmURI
	if err := BindUri(c, &uri); err != nil {
		return
	}
	h.run(c, dispatch.SelectFilm{FilmID: uri.ID}, "SelectFilm")
}

func (h *FilmHandler) BuyTicket(c *gin.Context) {
	var uri FilmURI
	if err := BindUri(c, &uri); err != nil {
		return
	}
	h.run(c, dispatch.BuyTicket{FilmID: uri.ID}, "BuyTicket")
}

func (h *FilmHandler) DeleteSoldOut(c *gin.Context) {
	var uri FilmURI
	if err := BindUri(c, &uri); err != nil {
		return
	}
	h.run(c, dispatch.DeleteSoldOut{FilmID: uri.ID}, "DeleteSoldOut")
}

func (h *FilmHandler) run(c *gin.Context, cmd dispatch.Command, operation string) {
	screen, err := h.commander.Do(c.Request.Context(), cmd)
	if err != nil {
		h.handleError(c, err, screen, operation)
		return
	}
	c.JSON(http.StatusOK, screen)
}

func (h *FilmHandler) handleError(c *gin.Context, err error, screen model.Screen, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrSoldOut):
		log.Warn("Tickets sold out")
		c.JSON(http.StatusConflict, gin.H{"error": model.AlertSoldOut, "screen": screen})
	case errors.Is(err, apperrors.ErrNotSoldOut):
		log.Warn("Film not sold out")
		c.JSON(http.StatusConflict, gin.H{"error": "Film is not sold out"})
	case errors.Is(err, apperrors.ErrFilmNotFound):
		log.Warn("Film not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Film not found"})
	case errors.Is(err, apperrors.ErrUpstream), errors.Is(err, apperrors.ErrMalformedResponse):
		log.Error("Films API failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Films API unavailable"})
	case errors.Is(err, apperrors.ErrDispatcherStopped):
		log.Error("Dispatcher stopped")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service unavailable"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
