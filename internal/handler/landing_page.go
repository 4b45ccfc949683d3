package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"creator-funnel/internal/apperr"
	"creator-funnel/internal/dto"
	"creator-funnel/internal/service"
)

type LandingPageHandler struct {
	pageService service.PageService
	baseURL     string
}

func NewLandingPageHandler(pageService service.PageService, baseURL string) *LandingPageHandler {
	return &LandingPageHandler{
		pageService: pageService,
		baseURL:     baseURL,
	}
}

func (h *LandingPageHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	page, err := h.pageService.Resolve(ctx, c.QueryParam("pageId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.Response{Success: true, Data: page})
}

// Create stores a page under a caller-chosen id.
func (h *LandingPageHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PublicLandingPageRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ValidationDetail("Invalid request body", err.Error())
	}

	page, err := h.pageService.CreateWithID(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.Response{
		Success: true,
		Message: "Landing page created successfully",
		Data:    page,
	})
}

func (h *LandingPageHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpdateLandingPageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	page, err := h.pageService.Update(ctx, c.QueryParam("pageId"), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Landing page updated successfully",
		Data:    page,
	})
}

func (h *LandingPageHandler) AdminCreate(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateLandingPageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	page, err := h.pageService.Create(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.Response{
		Success: true,
		Message: "Landing page created successfully",
		Data: map[string]interface{}{
			"landing_page": page,
			"public_url":   service.PublicURL(h.baseURL, page.PageID),
		},
	})
}

func (h *LandingPageHandler) AdminList(c echo.Context) error {
	ctx := c.Request().Context()

	var filter dto.LandingPageFilter
	if err := c.Bind(&filter); err != nil {
		return apperr.ValidationDetail("Invalid query", err.Error())
	}

	pages, pagination, err := h.pageService.List(ctx, filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ListResponse{
		Success:    true,
		Data:       pages,
		Pagination: pagination,
	})
}

func (h *LandingPageHandler) Publish(c echo.Context) error {
	ctx := c.Request().Context()

	res, err := h.pageService.Publish(ctx, c.Param("pageId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Landing page published",
		Data:    res,
	})
}
