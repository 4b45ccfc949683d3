package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"creator-funnel/internal/apperr"
	"creator-funnel/internal/dto"
	"creator-funnel/internal/service"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

func (h *AnalyticsHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	if pageID := c.QueryParam("pageId"); pageID != "" {
		analytics, err := h.analyticsService.PageAnalytics(ctx, pageID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, dto.Response{Success: true, Data: analytics})
	}

	if creatorID := c.QueryParam("creatorId"); creatorID != "" {
		analytics, err := h.analyticsService.CreatorAnalytics(ctx, creatorID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, dto.Response{Success: true, Data: analytics})
	}

	return apperr.Validation("Either pageId or creatorId is required")
}

func (h *AnalyticsHandler) TrackView(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.TrackViewRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ValidationDetail("Invalid request body", err.Error())
	}
	if req.PageID == "" {
		return apperr.Validation("Page ID is required")
	}

	if err := h.analyticsService.TrackView(ctx, req.PageID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.Response{Success: true, Message: "View tracked successfully"})
}
