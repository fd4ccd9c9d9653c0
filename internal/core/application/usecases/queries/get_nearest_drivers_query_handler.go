package queries

import (
	"context"
	"sort"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetNearestDriversQueryHandler retrieves the closest eligible drivers from
// the database. Uses direct SQL for the eligibility filter and computes
// great-circle distances in the read model.
type GetNearestDriversQueryHandler struct {
	db *gorm.DB
}

// NewGetNearestDriversQueryHandler creates a handler for nearest-driver queries.
// Requires a GORM database connection for query execution.
func NewGetNearestDriversQueryHandler(db *gorm.DB) GetNearestDriversQueryHandler {
	return GetNearestDriversQueryHandler{db: db}
}

// Handle executes the query.
// Returns matched drivers ordered by non-decreasing distance, truncated to
// the query's limit. Drivers outside the radius are excluded.
func (h GetNearestDriversQueryHandler) Handle(
	ctx context.Context,
	query GetNearestDriversQuery,
) ([]GetNearestDriversQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	matches := make([]GetNearestDriversQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			driver_id,
			name,
			phone,
			vehicle_type,
			location_lat,
			location_lon
		FROM drivers
		WHERE status = ?
		  AND is_active
		  AND is_verified
		  AND current_order_id IS NULL
		  AND location_lat IS NOT NULL
		  AND location_lon IS NOT NULL
	`, int(driver.StatusAvailable)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var match GetNearestDriversQueryResponse
		var id uuid.UUID
		var lat, lon float64

		err = rows.Scan(
			&id,
			&match.DriverID,
			&match.Name,
			&match.Phone,
			&match.VehicleType,
			&lat,
			&lon,
		)
		if err != nil {
			return nil, err
		}

		driverID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		match.ID = driverID

		location, locErr := kernel.NewGeoPoint(lat, lon)
		if locErr != nil {
			return nil, locErr
		}
		match.Location = location

		distance, distErr := location.DistanceKm(query.Origin())
		if distErr != nil {
			return nil, distErr
		}
		if distance > query.RadiusKm() {
			continue
		}
		match.DistanceKm = distance

		matches = append(matches, match)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].DistanceKm < matches[j].DistanceKm
	})

	if len(matches) > query.Limit() {
		matches = matches[:query.Limit()]
	}

	return matches, nil
}
