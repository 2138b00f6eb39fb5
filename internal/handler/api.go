package handler

import (
	"net/http"

	"payhere-integration-demo/internal/dto"
	"payhere-integration-demo/internal/middleware"
	"payhere-integration-demo/internal/model"
	"payhere-integration-demo/internal/repository"
	"payhere-integration-demo/internal/service"

	"github.com/labstack/echo/v4"
)

// APIHandler serves the key-gated data endpoint and the read-only listings.
type APIHandler struct {
	payhereService service.PayhereService
	planRepo       repository.PlanRepository
}

func NewAPIHandler(payhereService service.PayhereService, planRepo repository.PlanRepository) *APIHandler {
	return &APIHandler{
		payhereService: payhereService,
		planRepo:       planRepo,
	}
}

// Data is the sample protected endpoint. The quota was already consumed by
// the APIKeyAuth middleware; this just reports what is left.
func (h *APIHandler) Data(c echo.Context) error {
	key, ok := c.Get(middleware.APIKeyContextKey).(*model.APIKey)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or inactive api key")
	}

	return c.JSON(http.StatusOK, &dto.DataResponse{
		Msg:       "Hello, API client",
		QuotaLeft: key.QuotaRemaining,
	})
}

func (h *APIHandler) ListPlans(c echo.Context) error {
	ctx := c.Request().Context()

	plans, err := h.planRepo.List(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, plans)
}

func (h *APIHandler) ListSubscriptions(c echo.Context) error {
	ctx := c.Request().Context()

	subs, err := h.payhereService.ListSubscriptions(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, subs)
}
