package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/cinetick/booking-worker/internal/model"
)

// mysqlDupEntry is the server error number for a unique-key violation.
const mysqlDupEntry = 1062

// BookingRepo persists bookings and their seat links.  All writes happen
// inside a single transaction so a booking row and its seat link are never
// visible independently.
type BookingRepo struct {
	db *sql.DB
	// updateLegacySeat controls the backward-compatible update of the old
	// seats.status column alongside the booking_seats link.
	updateLegacySeat bool
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB, updateLegacySeat bool) *BookingRepo {
	return &BookingRepo{db: db, updateLegacySeat: updateLegacySeat}
}

// CreateWithSeat inserts the booking and its seat link in one transaction,
// optionally flipping the legacy seats.status column to BOOKED.  On success
// the generated ID and server-assigned booking time are populated on b.
//
// A duplicate idempotency key aborts the transaction and returns
// ErrDuplicateBooking: the booking from a previous delivery is already
// durable and this attempt must write nothing.  Any other failure rolls
// back so no partial writes are visible.
func (r *BookingRepo) CreateWithSeat(ctx context.Context, b *model.Booking, seatID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const insBooking = `INSERT INTO bookings (user_id, show_id, status, total_amount, idempotency_key)
	                    VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, insBooking, b.UserID, b.ShowID, b.Status, b.TotalAmount, b.IdempotencyKey)
	if err != nil {
		if isDupEntry(err) {
			return ErrDuplicateBooking
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)

	const insSeat = `INSERT INTO booking_seats (booking_id, screen_seat_id) VALUES (?, ?)`
	if _, err := tx.ExecContext(ctx, insSeat, b.ID, seatID); err != nil {
		return err
	}

	if r.updateLegacySeat {
		const updSeat = `UPDATE seats SET status = 'BOOKED' WHERE id = ?`
		if _, err := tx.ExecContext(ctx, updSeat, seatID); err != nil {
			return err
		}
	}

	// Query back the server-assigned timestamp before committing.
	const sel = `SELECT booking_time FROM bookings WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.BookingTime); err != nil {
		return err
	}

	return tx.Commit()
}

func isDupEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDupEntry
}
