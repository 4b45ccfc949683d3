package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"creator-funnel/internal/apperr"
	"creator-funnel/internal/dto"
	"creator-funnel/internal/service"
)

type CreatorHandler struct {
	creatorService service.CreatorService
}

func NewCreatorHandler(creatorService service.CreatorService) *CreatorHandler {
	return &CreatorHandler{
		creatorService: creatorService,
	}
}

func (h *CreatorHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RegisterCreatorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	creator, err := h.creatorService.Register(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.Response{
		Success: true,
		Message: "Creator registered successfully",
		Data:    creator,
	})
}

func (h *CreatorHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	var filter dto.CreatorFilter
	if err := c.Bind(&filter); err != nil {
		return apperr.ValidationDetail("Invalid query", err.Error())
	}

	creators, pagination, err := h.creatorService.List(ctx, filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ListResponse{
		Success:    true,
		Data:       creators,
		Pagination: pagination,
	})
}

func (h *CreatorHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	creator, err := h.creatorService.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.Response{Success: true, Data: creator})
}

func (h *CreatorHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpdateCreatorStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	creator, err := h.creatorService.UpdateStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Creator status updated",
		Data:    creator,
	})
}
