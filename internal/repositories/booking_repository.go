package repositories

import (
	"context"
	"database/sql"

	"bnbBack/internal/models"
)

type BookingRepository struct {
	DB *sql.DB
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *BookingRepository) CreateBooking(ctx context.Context, b models.Booking) (models.Booking, error) {
	return insertBooking(ctx, r.DB, b)
}

// CreateBookingIfAvailable inserts b unless one of its days is already booked. The ad
// row is write-locked for the duration of the transaction, which serializes concurrent
// bookings of the same ad across processes.
func (r *BookingRepository) CreateBookingIfAvailable(ctx context.Context, b models.Booking) (models.Booking, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Booking{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE ad SET price = price WHERE id = ?`, b.AdID); err != nil {
		return models.Booking{}, err
	}
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM ad WHERE id = ?`, b.AdID).Scan(&n); err != nil {
		return models.Booking{}, err
	}
	if n == 0 {
		return models.Booking{}, models.ErrAdNotFound
	}

	rows, err := tx.QueryContext(ctx, `SELECT start_date, end_date FROM booking WHERE ad_id = ?`, b.AdID)
	if err != nil {
		return models.Booking{}, err
	}
	booked := &models.Ad{ID: b.AdID}
	for rows.Next() {
		existing := &models.Booking{}
		if err := rows.Scan(&existing.StartDate, &existing.EndDate); err != nil {
			rows.Close()
			return models.Booking{}, err
		}
		existing.StartDate = models.DateOf(existing.StartDate)
		existing.EndDate = models.DateOf(existing.EndDate)
		booked.AddBooking(existing)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return models.Booking{}, err
	}
	if !b.IsBookableDates(booked.NotAvailableDays()) {
		return models.Booking{}, models.ErrDatesUnavailable
	}

	b, err = insertBooking(ctx, tx, b)
	if err != nil {
		return models.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

func insertBooking(ctx context.Context, db execer, b models.Booking) (models.Booking, error) {
	query := `
		INSERT INTO booking (booker_id, ad_id, start_date, end_date, created_at, amount, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	var comment sql.NullString
	if b.Comment != "" {
		comment = sql.NullString{String: b.Comment, Valid: true}
	}
	result, err := db.ExecContext(ctx, query,
		b.BookerID, b.AdID, models.DateOf(b.StartDate), models.DateOf(b.EndDate), b.CreatedAt, b.Amount, comment,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Booking{}, models.ErrAdNotFound
		}
		return models.Booking{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Booking{}, err
	}
	b.ID = int(id)
	return b, nil
}

func (r *BookingRepository) GetBookingByID(ctx context.Context, id int) (models.Booking, error) {
	bookings, err := selectBookings(ctx, r.DB, `WHERE b.id = ?`, id)
	if err != nil {
		return models.Booking{}, err
	}
	if len(bookings) == 0 {
		return models.Booking{}, models.ErrBookingNotFound
	}
	return bookings[0], nil
}

func (r *BookingRepository) GetBookingsByAdID(ctx context.Context, adID int) ([]models.Booking, error) {
	return selectBookings(ctx, r.DB, `WHERE b.ad_id = ?`, adID)
}

func (r *BookingRepository) GetBookingsByBooker(ctx context.Context, bookerID int) ([]models.Booking, error) {
	return selectBookings(ctx, r.DB, `WHERE b.booker_id = ?`, bookerID)
}

func (r *BookingRepository) DeleteBooking(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM booking WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrBookingNotFound
	}
	return nil
}

func selectBookings(ctx context.Context, db *sql.DB, where string, args ...any) ([]models.Booking, error) {
	query := `SELECT b.id, b.ad_id, b.booker_id, b.start_date, b.end_date, b.amount, b.comment, b.created_at, ` +
		userColumns + " FROM booking b JOIN `user` u ON u.id = b.booker_id " + where + ` ORDER BY b.start_date, b.id`
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		var (
			b       models.Booking
			comment sql.NullString
		)
		booker, err := scanUser(scanFunc(func(dest ...any) error {
			return rows.Scan(append([]any{
				&b.ID, &b.AdID, &b.BookerID, &b.StartDate, &b.EndDate, &b.Amount, &comment, &b.CreatedAt,
			}, dest...)...)
		}))
		if err != nil {
			return nil, err
		}
		b.Comment = comment.String
		b.StartDate = models.DateOf(b.StartDate)
		b.EndDate = models.DateOf(b.EndDate)
		b.Booker = &booker
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// scanFunc lets a row that carries more than a user reuse scanUser for its trailing columns.
type scanFunc func(dest ...any) error

func (f scanFunc) Scan(dest ...any) error { return f(dest...) }
