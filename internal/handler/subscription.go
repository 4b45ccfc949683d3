package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"creator-funnel/internal/apperr"
	"creator-funnel/internal/dto"
	"creator-funnel/internal/service"
)

const paymentInitiatedMessage = "Payment initiated! Check your phone for USSD prompt."

// webhook bodies are small JSON documents
const maxWebhookBody = 1 << 20

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

func (h *SubscriptionHandler) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Subscription API is running",
	})
}

func (h *SubscriptionHandler) Subscribe(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SubscribeRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ValidationDetail("Invalid request body", err.Error())
	}

	result, err := h.subscriptionService.Subscribe(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.SubscribeResponse{
		Success:       true,
		Message:       paymentInitiatedMessage,
		TransactionID: result.TransactionID,
		Data:          result,
	})
}

func (h *SubscriptionHandler) ClubzilaWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return apperr.ValidationDetail("Invalid webhook body", err.Error())
	}

	if err := h.subscriptionService.HandleWebhook(ctx, c.Request().Header, body); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.Response{Success: true, Message: "Webhook processed"})
}
