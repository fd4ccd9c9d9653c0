package http_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "dispatch/internal/adapters/in/http"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
)

const webhookSecret = "test-webhook-secret"

type fakeApplyDriverAssignment struct {
	calls   int
	command commands.ApplyDriverAssignmentCommand
	err     error
}

func (f *fakeApplyDriverAssignment) Handle(_ context.Context, command commands.ApplyDriverAssignmentCommand) error {
	f.calls++
	f.command = command
	return f.err
}

type fakeApplyOrderStatusEvent struct {
	calls   int
	command commands.ApplyOrderStatusEventCommand
	err     error
}

func (f *fakeApplyOrderStatusEvent) Handle(_ context.Context, command commands.ApplyOrderStatusEventCommand) error {
	f.calls++
	f.command = command
	return f.err
}

type webhookFixture struct {
	echo             *echo.Echo
	driverAssignment *fakeApplyDriverAssignment
	orderStatus      *fakeApplyOrderStatusEvent
}

func newWebhookFixture() *webhookFixture {
	f := &webhookFixture{
		echo:             echo.New(),
		driverAssignment: &fakeApplyDriverAssignment{},
		orderStatus:      &fakeApplyOrderStatusEvent{},
	}

	webhooks := httpadapter.NewWebhooks(webhookSecret, f.driverAssignment, f.orderStatus)
	webhooks.RegisterRoutes(f.echo)
	return f
}

func signBody(secret string, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func (f *webhookFixture) post(path string, body string, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(nethttp.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if signature != "" {
		req.Header.Set("X-Signature", signature)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func TestWebhooks_DriverAssignment(t *testing.T) {
	t.Run("applies a signed assignment", func(t *testing.T) {
		// Arrange
		f := newWebhookFixture()
		orderID := kernel.NewUUID()
		body := `{"order_id":"` + orderID.String() + `","driver_info":{"driver_id":"plat-77","name":"Fahad","phone":"+96555555555","vehicle_type":"car"}}`

		// Act
		rec := f.post("/webhooks/driver-assignment", body, signBody(webhookSecret, body))

		// Assert
		assert.Equal(t, nethttp.StatusNoContent, rec.Code)
		require.Equal(t, 1, f.driverAssignment.calls)
		assert.True(t, f.driverAssignment.command.OrderID().IsEqual(orderID))
		assert.Equal(t, "plat-77", f.driverAssignment.command.Info().DriverID)
		assert.Equal(t, "Fahad", f.driverAssignment.command.Info().Name)
	})

	t.Run("carries the optional pickup estimate and tracking url", func(t *testing.T) {
		// Arrange
		f := newWebhookFixture()
		orderID := kernel.NewUUID()
		pickupAt := time.Date(2026, 8, 14, 12, 45, 0, 0, time.UTC)
		body := `{"order_id":"` + orderID.String() +
			`","driver_info":{"driver_id":"plat-12","name":"Noor","phone":"+96511111111","vehicle_type":"motorcycle"},` +
			`"estimated_pickup_time":"` + pickupAt.Format(time.RFC3339) + `","tracking_url":"https://track.example/plat-12"}`

		// Act
		rec := f.post("/webhooks/driver-assignment", body, signBody(webhookSecret, body))

		// Assert
		assert.Equal(t, nethttp.StatusNoContent, rec.Code)
		require.Equal(t, 1, f.driverAssignment.calls)
		info := f.driverAssignment.command.Info()
		require.NotNil(t, info.EstimatedPickupAt)
		assert.True(t, info.EstimatedPickupAt.Equal(pickupAt))
		assert.Equal(t, "https://track.example/plat-12", info.TrackingURL)
	})

	t.Run("rejects a tampered body before parsing", func(t *testing.T) {
		// Arrange
		f := newWebhookFixture()
		body := `{"order_id":"` + kernel.NewUUID().String() + `","driver_info":{"driver_id":"plat-77","name":"Fahad"}}`
		signature := signBody(webhookSecret, body)
		tampered := strings.Replace(body, "plat-77", "plat-99", 1)

		// Act
		rec := f.post("/webhooks/driver-assignment", tampered, signature)

		// Assert
		assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
		assert.Zero(t, f.driverAssignment.calls)
	})

	t.Run("rejects a missing signature", func(t *testing.T) {
		f := newWebhookFixture()
		rec := f.post("/webhooks/driver-assignment", `{}`, "")
		assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
		assert.Zero(t, f.driverAssignment.calls)
	})

	t.Run("rejects a signature with the wrong secret", func(t *testing.T) {
		f := newWebhookFixture()
		body := `{"order_id":"` + kernel.NewUUID().String() + `"}`
		rec := f.post("/webhooks/driver-assignment", body, signBody("other-secret", body))
		assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
		assert.Zero(t, f.driverAssignment.calls)
	})

	t.Run("rejects malformed json that is correctly signed", func(t *testing.T) {
		f := newWebhookFixture()
		body := `{"order_id": not-json`
		rec := f.post("/webhooks/driver-assignment", body, signBody(webhookSecret, body))
		assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
		assert.Zero(t, f.driverAssignment.calls)
	})
}

func TestWebhooks_OrderStatus(t *testing.T) {
	t.Run("applies a signed delivery event", func(t *testing.T) {
		// Arrange
		f := newWebhookFixture()
		orderID := kernel.NewUUID()
		occurredAt := time.Date(2026, 8, 14, 12, 30, 0, 0, time.UTC)
		body := `{"order_id":"` + orderID.String() + `","status":"delivered","timestamp":"` +
			occurredAt.Format(time.RFC3339) + `"}`

		// Act
		rec := f.post("/webhooks/order-status", body, signBody(webhookSecret, body))

		// Assert
		assert.Equal(t, nethttp.StatusNoContent, rec.Code)
		require.Equal(t, 1, f.orderStatus.calls)
		assert.True(t, f.orderStatus.command.OrderID().IsEqual(orderID))
		assert.Equal(t, commands.OrderStatusEventDelivered, f.orderStatus.command.Event())
		assert.True(t, f.orderStatus.command.OccurredAt().Equal(occurredAt))
	})

	t.Run("carries the optional message", func(t *testing.T) {
		// Arrange
		f := newWebhookFixture()
		body := `{"order_id":"` + kernel.NewUUID().String() +
			`","status":"delivered","message":"left at the reception desk"}`

		// Act
		rec := f.post("/webhooks/order-status", body, signBody(webhookSecret, body))

		// Assert
		assert.Equal(t, nethttp.StatusNoContent, rec.Code)
		require.Equal(t, 1, f.orderStatus.calls)
		assert.Equal(t, "left at the reception desk", f.orderStatus.command.Message())
	})

	t.Run("defaults a missing event time to now", func(t *testing.T) {
		// Arrange
		f := newWebhookFixture()
		body := `{"order_id":"` + kernel.NewUUID().String() + `","status":"picked_up"}`

		// Act
		rec := f.post("/webhooks/order-status", body, signBody(webhookSecret, body))

		// Assert
		assert.Equal(t, nethttp.StatusNoContent, rec.Code)
		require.Equal(t, 1, f.orderStatus.calls)
		assert.WithinDuration(t, time.Now().UTC(), f.orderStatus.command.OccurredAt(), time.Minute)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		f := newWebhookFixture()
		body := `{"order_id":"` + kernel.NewUUID().String() + `","status":"teleported"}`
		rec := f.post("/webhooks/order-status", body, signBody(webhookSecret, body))
		assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
		assert.Zero(t, f.orderStatus.calls)
	})
}
