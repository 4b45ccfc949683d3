package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"creator-funnel/internal/apperr"
	"creator-funnel/internal/dto"
)

// RequestValidator plugs go-playground/validator into echo and reports fields by their json name.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &RequestValidator{validate: v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.ValidationDetail("Invalid request", err.Error())
	}
	fe := verrs[0]
	if fe.Tag() == "required" {
		return apperr.Validation("Missing required field: " + fe.Field())
	}
	return apperr.Validation("Invalid field: " + fe.Field())
}

func statusOf(kind error) int {
	switch {
	case errors.Is(kind, apperr.ErrValidation), errors.Is(kind, apperr.ErrProvider):
		return http.StatusBadRequest
	case errors.Is(kind, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(kind, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, apperr.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// NewHTTPErrorHandler writes every error as the JSON envelope.
func NewHTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		body := dto.Response{Success: false, Message: "Internal server error"}

		var aerr *apperr.Error
		var herr *echo.HTTPError
		switch {
		case errors.As(err, &aerr):
			code = statusOf(aerr.Kind)
			body.Message = aerr.Message
			body.Error = aerr.Detail
		case errors.As(err, &herr):
			code = herr.Code
			body.Message = fmt.Sprint(herr.Message)
		}

		if code >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.ValidationDetail("Invalid request body", err.Error())
	}
	return c.Validate(req)
}
