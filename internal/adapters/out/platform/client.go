// Package platform implements the outbound gateway to the ordering platform:
// it relays order status changes upstream and pushes business profile data.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dispatch/internal/core/domain/model/business"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

var _ ports.PlatformGateway = (*Client)(nil)

const defaultTimeout = 10 * time.Second

// Client talks to the platform's REST API. Calls are bounded by a per-call
// timeout and retried on transport errors and 5xx responses; 4xx responses
// are never retried.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	maxRetries int
	httpClient *http.Client
}

// NewClient creates a platform client. maxRetries is the number of attempts
// beyond the first; zero disables retries.
func NewClient(baseURL string, apiKey string, timeout time.Duration, maxRetries int) (*Client, error) {
	if baseURL == "" {
		return nil, errs.NewValueIsRequiredError("baseURL")
	}
	if apiKey == "" {
		return nil, errs.NewValueIsRequiredError("apiKey")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		timeout:    timeout,
		maxRetries: maxRetries,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// orderStatusPayload is the wire shape of a relayed status change.
type orderStatusPayload struct {
	OrderID         string       `json:"order_id"`
	OrderNumber     string       `json:"order_number"`
	BusinessID      string       `json:"business_id"`
	Status          string       `json:"status"`
	Timestamp       time.Time    `json:"timestamp"`
	Notes           string       `json:"notes,omitempty"`
	DeliveryAddress *addressInfo `json:"delivery_address,omitempty"`
	CustomerInfo    customerInfo `json:"customer_info"`
	EstimatedReady  *time.Time   `json:"estimated_ready_time,omitempty"`
	Driver          *driverInfo  `json:"driver,omitempty"`
}

type addressInfo struct {
	Street string   `json:"street"`
	Lat    *float64 `json:"lat,omitempty"`
	Lon    *float64 `json:"lon,omitempty"`
}

type customerInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

type driverInfo struct {
	DriverID    string `json:"driver_id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	VehicleType string `json:"vehicle_type"`
}

// businessPayload is the wire shape of a synchronized business profile.
type businessPayload struct {
	BusinessID   string         `json:"business_id"`
	Name         string         `json:"name"`
	BusinessType string         `json:"business_type"`
	Phone        string         `json:"phone"`
	Email        string         `json:"email,omitempty"`
	Lat          float64        `json:"lat"`
	Lon          float64        `json:"lon"`
	IsOpen       bool           `json:"is_open"`
	Detail       map[string]any `json:"detail,omitempty"`
}

// NotifyOrderConfirmed relays a confirmed order to the platform.
func (c *Client) NotifyOrderConfirmed(ctx context.Context, aggregate *order.Order) error {
	return c.postOrderStatus(ctx, aggregate, "")
}

// NotifyOrderReady relays a ready-for-pickup order to the platform.
func (c *Client) NotifyOrderReady(ctx context.Context, aggregate *order.Order) error {
	return c.postOrderStatus(ctx, aggregate, "")
}

// NotifyOrderCancelled relays a cancellation with its reason.
func (c *Client) NotifyOrderCancelled(ctx context.Context, aggregate *order.Order, reason string) error {
	return c.postOrderStatus(ctx, aggregate, reason)
}

// SyncBusinessData pushes the business profile to the platform.
func (c *Client) SyncBusinessData(ctx context.Context, aggregate *business.Business) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	payload := businessPayload{
		BusinessID:   aggregate.ID().String(),
		Name:         aggregate.Name(),
		BusinessType: aggregate.Type().String(),
		Phone:        aggregate.Contact().Phone,
		Email:        aggregate.Contact().Email,
		Lat:          aggregate.Address().Lat(),
		Lon:          aggregate.Address().Lon(),
		IsOpen:       aggregate.IsOpen(),
		Detail:       detailPayload(aggregate.Detail()),
	}

	return c.post(ctx, "/api/v1/businesses/sync", payload)
}

func detailPayload(detail business.Detail) map[string]any {
	switch d := detail.(type) {
	case business.RestaurantDetail:
		return map[string]any{
			"cuisine":               d.Cuisine,
			"prep_capacity":         d.PrepCapacity,
			"avg_prep_time_minutes": d.AvgPrepTimeMinutes,
		}
	case business.StoreDetail:
		return map[string]any{
			"category":      d.Category,
			"accepts_cards": d.AcceptsCards,
		}
	case business.PharmacyDetail:
		return map[string]any{
			"license_number":       d.LicenseNumber,
			"dispenses_controlled": d.DispensesControlled,
		}
	case business.KitchenDetail:
		return map[string]any{
			"brands":        d.Brands,
			"prep_capacity": d.PrepCapacity,
		}
	default:
		return nil
	}
}

func (c *Client) postOrderStatus(ctx context.Context, aggregate *order.Order, notes string) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if notes == "" {
		notes = aggregate.BusinessNotes()
	}

	payload := orderStatusPayload{
		OrderID:     aggregate.ID().String(),
		OrderNumber: aggregate.OrderNumber(),
		BusinessID:  aggregate.BusinessID().String(),
		Status:      aggregate.Status().String(),
		Timestamp:   time.Now().UTC(),
		Notes:       notes,
		CustomerInfo: customerInfo{
			Name:  aggregate.Customer().Name,
			Phone: aggregate.Customer().Phone,
			Email: aggregate.Customer().Email,
		},
		EstimatedReady: aggregate.EstimatedReadyTime(),
	}

	if address := aggregate.Address(); address != nil {
		info := addressInfo{Street: address.Street}
		if location, ok := address.Coordinates(); ok {
			lat, lon := location.Lat(), location.Lon()
			info.Lat, info.Lon = &lat, &lon
		}
		payload.DeliveryAddress = &info
	}

	if snapshot := aggregate.DriverInfo(); snapshot != nil {
		payload.Driver = &driverInfo{
			DriverID:    snapshot.DriverID,
			Name:        snapshot.Name,
			Phone:       snapshot.Phone,
			VehicleType: snapshot.VehicleType,
		}
	}

	return c.post(ctx, "/api/v1/orders/status", payload)
}

// post sends the payload, retrying transport errors and 5xx responses with a
// short linear backoff.
func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errs.NewExternalServiceError("platform: encode "+path, err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return errs.NewExternalServiceError("platform: "+path, ctx.Err())
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}

		retryable, err := c.attempt(ctx, path, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	return errs.NewExternalServiceError("platform: "+path, lastErr)
}

func (c *Client) attempt(ctx context.Context, path string, body []byte) (retryable bool, err error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return false, nil
	case resp.StatusCode >= 500:
		return true, fmt.Errorf("unexpected status %d", resp.StatusCode)
	default:
		return false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}
