package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

const signatureHeader = "X-Signature"

type (
	applyDriverAssignmentHandler interface {
		Handle(ctx context.Context, command commands.ApplyDriverAssignmentCommand) error
	}
	applyOrderStatusEventHandler interface {
		Handle(ctx context.Context, command commands.ApplyOrderStatusEventCommand) error
	}
)

// Webhooks receives callbacks from the delivery platform. Every request is
// authenticated by an HMAC-SHA256 signature over the raw body; nothing is
// parsed before the signature checks out.
type Webhooks struct {
	secret                []byte
	applyDriverAssignment applyDriverAssignmentHandler
	applyOrderStatusEvent applyOrderStatusEventHandler
}

// NewWebhooks creates the webhook receiver with the shared signing secret.
func NewWebhooks(
	secret string,
	applyDriverAssignment applyDriverAssignmentHandler,
	applyOrderStatusEvent applyOrderStatusEventHandler,
) *Webhooks {
	return &Webhooks{
		secret:                []byte(secret),
		applyDriverAssignment: applyDriverAssignment,
		applyOrderStatusEvent: applyOrderStatusEvent,
	}
}

// RegisterRoutes mounts the webhook endpoints on the echo instance.
func (w *Webhooks) RegisterRoutes(e *echo.Echo) {
	hooks := e.Group("/webhooks")
	hooks.POST("/driver-assignment", w.DriverAssignment)
	hooks.POST("/order-status", w.OrderStatus)
}

// verifiedBody reads the request body and checks its signature. The header
// carries "sha256=<hex>"; comparison is constant time.
func (w *Webhooks) verifiedBody(ctx echo.Context) ([]byte, bool) {
	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return nil, false
	}

	signature := ctx.Request().Header.Get(signatureHeader)
	provided, ok := strings.CutPrefix(signature, "sha256=")
	if !ok {
		return nil, false
	}

	decoded, err := hex.DecodeString(provided)
	if err != nil {
		return nil, false
	}

	mac := hmac.New(sha256.New, w.secret)
	mac.Write(body)
	if !hmac.Equal(decoded, mac.Sum(nil)) {
		return nil, false
	}
	return body, true
}

func unauthorized(ctx echo.Context) error {
	return ctx.JSON(http.StatusUnauthorized, errorResponse{
		Code:    http.StatusUnauthorized,
		Message: "invalid signature",
	})
}

type driverAssignmentWebhook struct {
	OrderID    string `json:"order_id"`
	DriverInfo struct {
		DriverID    string `json:"driver_id"`
		Name        string `json:"name"`
		Phone       string `json:"phone"`
		VehicleType string `json:"vehicle_type"`
	} `json:"driver_info"`
	EstimatedPickupTime *time.Time `json:"estimated_pickup_time"`
	TrackingURL         string     `json:"tracking_url"`
}

// DriverAssignment handles POST /webhooks/driver-assignment: the platform
// assigned one of its own drivers to the order.
func (w *Webhooks) DriverAssignment(ctx echo.Context) error {
	body, ok := w.verifiedBody(ctx)
	if !ok {
		return unauthorized(ctx)
	}

	var payload driverAssignmentWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		return writeBadRequest(ctx, "invalid request body")
	}

	orderID, err := kernel.UUIDFromString(payload.OrderID)
	if err != nil {
		return writeBadRequest(ctx, "invalid order id")
	}

	command, err := commands.NewApplyDriverAssignmentCommand(orderID, order.DriverInfo{
		DriverID:          payload.DriverInfo.DriverID,
		Name:              payload.DriverInfo.Name,
		Phone:             payload.DriverInfo.Phone,
		VehicleType:       payload.DriverInfo.VehicleType,
		EstimatedPickupAt: payload.EstimatedPickupTime,
		TrackingURL:       payload.TrackingURL,
	})
	if err != nil {
		return writeError(ctx, err)
	}

	if err = w.applyDriverAssignment.Handle(ctx.Request().Context(), command); err != nil {
		return writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

type orderStatusWebhook struct {
	OrderID   string     `json:"order_id"`
	Status    string     `json:"status"`
	Timestamp *time.Time `json:"timestamp"`
	Message   string     `json:"message"`
}

// OrderStatus handles POST /webhooks/order-status: the platform reports a
// pickup or delivery performed by its own driver.
func (w *Webhooks) OrderStatus(ctx echo.Context) error {
	body, ok := w.verifiedBody(ctx)
	if !ok {
		return unauthorized(ctx)
	}

	var payload orderStatusWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		return writeBadRequest(ctx, "invalid request body")
	}

	orderID, err := kernel.UUIDFromString(payload.OrderID)
	if err != nil {
		return writeBadRequest(ctx, "invalid order id")
	}

	event, err := commands.OrderStatusEventFromString(payload.Status)
	if err != nil {
		return writeError(ctx, err)
	}

	var occurredAt time.Time
	if payload.Timestamp != nil {
		occurredAt = *payload.Timestamp
	}

	command, err := commands.NewApplyOrderStatusEventCommand(orderID, event, occurredAt, payload.Message)
	if err != nil {
		return writeError(ctx, err)
	}

	if err = w.applyOrderStatusEvent.Handle(ctx.Request().Context(), command); err != nil {
		return writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}
