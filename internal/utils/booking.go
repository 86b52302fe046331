package utils

import (
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"unistay-server/internal/schemas"
)

// CreateBookingDtoFromRows scans booking rows into DTOs. It expects the
// columns booking_id, property_id, agent_id, tenant_id, property_type,
// move_in_date, move_out_date, duration, gender, special_request, amount,
// status, payment_status, created_at and updated_at in that order.
// The second return value is the most recent updated_at across all rows.
func CreateBookingDtoFromRows(rows pgx.Rows) ([]*schemas.BookingDTO, time.Time, error) {
	var bookings []*schemas.BookingDTO
	var lastUpdated time.Time

	for rows.Next() {
		booking := &schemas.BookingDTO{}
		var moveInDate, createdAt, updatedAt time.Time
		var moveOutDate pgtype.Date
		var specialRequest pgtype.Text

		if err := rows.Scan(&booking.BookingId, &booking.PropertyId, &booking.AgentId, &booking.TenantId,
			&booking.PropertyType, &moveInDate, &moveOutDate, &booking.Duration, &booking.Gender,
			&specialRequest, &booking.Amount, &booking.Status, &booking.PaymentStatus,
			&createdAt, &updatedAt); err != nil {
			return nil, time.Time{}, err
		}

		booking.MoveInDate = moveInDate.Format(time.DateOnly)
		if moveOutDate.Valid {
			formatted := moveOutDate.Time.Format(time.DateOnly)
			booking.MoveOutDate = &formatted
		}
		if specialRequest.Valid {
			booking.SpecialRequest = specialRequest.String
		}
		booking.CreatedAt = createdAt.Format(time.RFC3339)

		if updatedAt.After(lastUpdated) {
			lastUpdated = updatedAt
		}

		bookings = append(bookings, booking)
	}

	return bookings, lastUpdated, nil
}
