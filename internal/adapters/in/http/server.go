// Package http exposes the dispatch core over REST, webhooks for the
// ordering platform, and a WebSocket endpoint for business notifications.
package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// The server depends on the handler methods it calls, not on the concrete
// handler structs, so tests can substitute fakes.
type (
	updateOrderStatusHandler interface {
		Handle(ctx context.Context, command commands.UpdateOrderStatusCommand) error
	}
	assignNearestDriverHandler interface {
		Handle(ctx context.Context, command commands.AssignNearestDriverCommand) error
	}
	completeDeliveryHandler interface {
		Handle(ctx context.Context, command commands.CompleteDeliveryCommand) error
	}
	updateDriverLocationHandler interface {
		Handle(ctx context.Context, command commands.UpdateDriverLocationCommand) error
	}
	setDriverStatusHandler interface {
		Handle(ctx context.Context, command commands.SetDriverStatusCommand) error
	}
	nearestDriversHandler interface {
		Handle(ctx context.Context, query queries.GetNearestDriversQuery) ([]queries.GetNearestDriversQueryResponse, error)
	}
)

// Server routes REST requests to the application's command and query handlers.
type Server struct {
	updateOrderStatus    updateOrderStatusHandler
	assignNearestDriver  assignNearestDriverHandler
	completeDelivery     completeDeliveryHandler
	updateDriverLocation updateDriverLocationHandler
	setDriverStatus      setDriverStatusHandler
	nearestDrivers       nearestDriversHandler
}

// NewServer creates the REST server with its command and query handlers.
func NewServer(
	updateOrderStatus updateOrderStatusHandler,
	assignNearestDriver assignNearestDriverHandler,
	completeDelivery completeDeliveryHandler,
	updateDriverLocation updateDriverLocationHandler,
	setDriverStatus setDriverStatusHandler,
	nearestDrivers nearestDriversHandler,
) *Server {
	return &Server{
		updateOrderStatus:    updateOrderStatus,
		assignNearestDriver:  assignNearestDriver,
		completeDelivery:     completeDelivery,
		updateDriverLocation: updateDriverLocation,
		setDriverStatus:      setDriverStatus,
		nearestDrivers:       nearestDrivers,
	}
}

// RegisterRoutes mounts the REST endpoints on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.PUT("/orders/:id/status", s.UpdateOrderStatus)
	api.POST("/orders/:id/assign-driver", s.AssignDriver)
	api.POST("/orders/:id/complete-delivery", s.CompleteDelivery)
	api.PUT("/drivers/:id/location", s.UpdateDriverLocation)
	api.PUT("/drivers/:id/status", s.SetDriverStatus)
	api.GET("/drivers/nearest", s.GetNearestDrivers)
	e.GET("/health", s.Health)
}

type updateOrderStatusRequest struct {
	Status             string     `json:"status"`
	Notes              string     `json:"notes"`
	PrepTimeMinutes    int        `json:"prep_time_minutes"`
	EstimatedReadyTime *time.Time `json:"estimated_ready_time"`
}

// UpdateOrderStatus handles PUT /api/v1/orders/:id/status.
func (s *Server) UpdateOrderStatus(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return writeBadRequest(ctx, "invalid order id")
	}

	var req updateOrderStatusRequest
	if err = ctx.Bind(&req); err != nil {
		return writeBadRequest(ctx, "invalid request body")
	}

	status, err := order.StatusFromString(req.Status)
	if err != nil {
		return writeError(ctx, err)
	}

	command, err := commands.NewUpdateOrderStatusCommand(orderID, status, req.Notes, req.PrepTimeMinutes, req.EstimatedReadyTime)
	if err != nil {
		return writeError(ctx, err)
	}

	if err = s.updateOrderStatus.Handle(ctx.Request().Context(), command); err != nil {
		return writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

type assignDriverRequest struct {
	RadiusKm float64 `json:"radius_km"`
}

// AssignDriver handles POST /api/v1/orders/:id/assign-driver.
func (s *Server) AssignDriver(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return writeBadRequest(ctx, "invalid order id")
	}

	var req assignDriverRequest
	if err = ctx.Bind(&req); err != nil {
		return writeBadRequest(ctx, "invalid request body")
	}

	command, err := commands.NewAssignNearestDriverCommand(orderID, req.RadiusKm)
	if err != nil {
		return writeError(ctx, err)
	}

	if err = s.assignNearestDriver.Handle(ctx.Request().Context(), command); err != nil {
		return writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

type completeDeliveryRequest struct {
	DriverID string   `json:"driver_id"`
	Rating   *float64 `json:"rating"`
	Earnings float64  `json:"earnings"`
}

// CompleteDelivery handles POST /api/v1/orders/:id/complete-delivery.
func (s *Server) CompleteDelivery(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return writeBadRequest(ctx, "invalid order id")
	}

	var req completeDeliveryRequest
	if err = ctx.Bind(&req); err != nil {
		return writeBadRequest(ctx, "invalid request body")
	}

	driverID, err := kernel.UUIDFromString(req.DriverID)
	if err != nil {
		return writeBadRequest(ctx, "invalid driver id")
	}

	command, err := commands.NewCompleteDeliveryCommand(driverID, orderID, req.Rating, req.Earnings)
	if err != nil {
		return writeError(ctx, err)
	}

	if err = s.completeDelivery.Handle(ctx.Request().Context(), command); err != nil {
		return writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

type updateDriverLocationRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// UpdateDriverLocation handles PUT /api/v1/drivers/:id/location.
func (s *Server) UpdateDriverLocation(ctx echo.Context) error {
	driverID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return writeBadRequest(ctx, "invalid driver id")
	}

	var req updateDriverLocationRequest
	if err = ctx.Bind(&req); err != nil {
		return writeBadRequest(ctx, "invalid request body")
	}

	point, err := kernel.NewGeoPoint(req.Lat, req.Lon)
	if err != nil {
		return writeError(ctx, err)
	}

	command, err := commands.NewUpdateDriverLocationCommand(driverID, point)
	if err != nil {
		return writeError(ctx, err)
	}

	if err = s.updateDriverLocation.Handle(ctx.Request().Context(), command); err != nil {
		return writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

type setDriverStatusRequest struct {
	Status string `json:"status"`
}

// SetDriverStatus handles PUT /api/v1/drivers/:id/status.
func (s *Server) SetDriverStatus(ctx echo.Context) error {
	driverID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return writeBadRequest(ctx, "invalid driver id")
	}

	var req setDriverStatusRequest
	if err = ctx.Bind(&req); err != nil {
		return writeBadRequest(ctx, "invalid request body")
	}

	status, err := driver.StatusFromString(req.Status)
	if err != nil {
		return writeError(ctx, err)
	}

	command, err := commands.NewSetDriverStatusCommand(driverID, status)
	if err != nil {
		return writeError(ctx, err)
	}

	if err = s.setDriverStatus.Handle(ctx.Request().Context(), command); err != nil {
		return writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// defaultNearestDriversLimit applies when the limit query parameter is absent.
const defaultNearestDriversLimit = 10

type nearestDriverResponse struct {
	ID          string  `json:"id"`
	DriverID    string  `json:"driver_id"`
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	VehicleType string  `json:"vehicle_type"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DistanceKm  float64 `json:"distance_km"`
}

// GetNearestDrivers handles GET /api/v1/drivers/nearest.
func (s *Server) GetNearestDrivers(ctx echo.Context) error {
	lat, err := strconv.ParseFloat(ctx.QueryParam("lat"), 64)
	if err != nil {
		return writeBadRequest(ctx, "invalid lat")
	}
	lon, err := strconv.ParseFloat(ctx.QueryParam("lon"), 64)
	if err != nil {
		return writeBadRequest(ctx, "invalid lon")
	}
	radiusKm, err := strconv.ParseFloat(ctx.QueryParam("radius_km"), 64)
	if err != nil {
		return writeBadRequest(ctx, "invalid radius_km")
	}

	limit := defaultNearestDriversLimit
	if raw := ctx.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return writeBadRequest(ctx, "invalid limit")
		}
	}

	origin, err := kernel.NewGeoPoint(lat, lon)
	if err != nil {
		return writeError(ctx, err)
	}

	query, err := queries.NewGetNearestDriversQuery(origin, radiusKm, limit)
	if err != nil {
		return writeError(ctx, err)
	}

	drivers, err := s.nearestDrivers.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]nearestDriverResponse, len(drivers))
	for i, d := range drivers {
		response[i] = nearestDriverResponse{
			ID:          d.ID.String(),
			DriverID:    d.DriverID,
			Name:        d.Name,
			Phone:       d.Phone,
			VehicleType: d.VehicleType,
			Lat:         d.Location.Lat(),
			Lon:         d.Location.Lon(),
			DistanceKm:  d.DistanceKm,
		}
	}
	return ctx.JSON(http.StatusOK, response)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
