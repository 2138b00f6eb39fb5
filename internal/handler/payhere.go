package handler

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"payhere-integration-demo/internal/apperr"
	"payhere-integration-demo/internal/dto"
	"payhere-integration-demo/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

var checkoutTmpl = template.Must(template.New("checkout").Parse(`<!DOCTYPE html>
<html>
<body>
  <p>Redirecting to PayHere...</p>
  <form id="payhere_form" method="post" action="{{.CheckoutURL}}">
{{- range .Fields}}
    <input type="hidden" name="{{.Name}}" value="{{.Value}}" />
{{- end}}
  </form>
  <script>document.getElementById('payhere_form').submit();</script>
</body>
</html>
`))

var returnTmpl = template.Must(template.New("return").Parse(`<!DOCTYPE html>
<html>
<body>
  <h2>Subscription Active</h2>
  <p>Your API key (store it securely, it is shown only once):</p>
  <pre>{{.APIKey}}</pre>
  <p>Use it as header <code>x-api-key: &lt;API_KEY&gt;</code> for API requests.</p>
</body>
</html>
`))

type PayhereHandler struct {
	payhereService service.PayhereService
	logger         zerolog.Logger
}

func NewPayhereHandler(payhereService service.PayhereService, logger zerolog.Logger) *PayhereHandler {
	return &PayhereHandler{
		payhereService: payhereService,
		logger:         logger,
	}
}

// Subscribe creates a pending order and answers with a self-submitting form
// that sends the customer to the provider's checkout page.
func (h *PayhereHandler) Subscribe(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SubscribeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid subscription fields")
	}

	redirect, err := h.payhereService.Subscribe(ctx, &req)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "plan not found")
		}
		return err
	}

	var buf bytes.Buffer
	if err := checkoutTmpl.Execute(&buf, redirect); err != nil {
		return err
	}

	return c.HTML(http.StatusOK, buf.String())
}

// Notify is the provider-facing webhook. It must acknowledge promptly:
// 400 only on a signature failure, 404 only for an unknown order, 200 for
// everything else including duplicates and intermediate codes.
func (h *PayhereHandler) Notify(c echo.Context) error {
	ctx := c.Request().Context()

	var n dto.Notification
	if err := c.Bind(&n); err != nil {
		return c.JSON(http.StatusBadRequest, &dto.WebhookAck{OK: false, Reason: "bad_request"})
	}

	err := h.payhereService.HandleNotification(ctx, &n)
	switch {
	case errors.Is(err, apperr.ErrForgedSignature):
		return c.JSON(http.StatusBadRequest, &dto.WebhookAck{OK: false, Reason: "invalid_md5"})
	case errors.Is(err, apperr.ErrUnknownOrder):
		return c.JSON(http.StatusNotFound, &dto.WebhookAck{OK: false, Reason: "subscription_not_found"})
	case err != nil:
		h.logger.Error().Str("order_id", n.OrderID).Err(err).Msg("webhook processing failed")
		return err
	}

	return c.JSON(http.StatusOK, &dto.WebhookAck{OK: true})
}

// Return is the page the customer lands on after paying. The one-time key
// disclosure happens here; later visits only see the sentinel.
func (h *PayhereHandler) Return(c echo.Context) error {
	ctx := c.Request().Context()

	orderID := c.QueryParam("order_id")
	if orderID == "" {
		return c.HTML(http.StatusBadRequest, "<h3>Missing order id</h3>")
	}

	apiKey, err := h.payhereService.RevealAPIKey(ctx, orderID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return c.HTML(http.StatusNotFound, "<h3>Order not found</h3>")
	case errors.Is(err, apperr.ErrOrderPending):
		return c.HTML(http.StatusOK, "<h3>Payment is being processed</h3><p>Please check back shortly</p>")
	case err != nil:
		return err
	}

	var buf bytes.Buffer
	if err := returnTmpl.Execute(&buf, map[string]string{"APIKey": apiKey}); err != nil {
		return err
	}

	return c.HTML(http.StatusOK, buf.String())
}

// Cancel renders a static page; the notification remains the sole source of
// truth for the order state.
func (h *PayhereHandler) Cancel(c echo.Context) error {
	return c.HTML(http.StatusOK, "<h3>Payment cancelled</h3><p>No subscription was created</p>")
}
