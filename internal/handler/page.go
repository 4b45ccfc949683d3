package handler

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"creator-funnel/internal/apperr"
	"creator-funnel/internal/dto"
	"creator-funnel/internal/render"
	"creator-funnel/internal/service"
)

type PageHandler struct {
	pageService      service.PageService
	analyticsService service.AnalyticsService
	log              *zap.Logger
}

func NewPageHandler(pageService service.PageService, analyticsService service.AnalyticsService, log *zap.Logger) *PageHandler {
	return &PageHandler{
		pageService:      pageService,
		analyticsService: analyticsService,
		log:              log,
	}
}

// Show renders the public landing page and counts the visit.
func (h *PageHandler) Show(c echo.Context) error {
	ctx := c.Request().Context()
	pageID := c.Param("pageId")

	page, err := h.pageService.Resolve(ctx, pageID)
	if errors.Is(err, apperr.ErrNotFound) {
		return c.HTML(http.StatusNotFound, "<!DOCTYPE html><html><body><h1>Landing page not found</h1><p>"+
			template.HTMLEscapeString(pageID)+"</p></body></html>")
	}
	if err != nil {
		return err
	}

	if err := h.analyticsService.TrackView(ctx, pageID); err != nil {
		h.log.Warn("track view failed", zap.String("page_id", pageID), zap.Error(err))
	}

	return c.Render(http.StatusOK, page.Template, render.FromPage(page))
}

func (h *PageHandler) Templates(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.Response{Success: true, Data: render.Templates()})
}
