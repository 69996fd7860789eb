package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"bnbBack/internal/models"
)

type AdRepository struct {
	DB *sql.DB
}

const adColumns = `a.id, a.title, a.slug, a.price, a.introduction, a.content, a.cover_image, a.author_id, ` + userColumns

const adFrom = " FROM ad a JOIN `user` u ON u.id = a.author_id"

func scanAd(row rowScanner) (*models.Ad, error) {
	var (
		ad     models.Ad
		author models.User
		avatar sql.NullString
	)
	err := row.Scan(
		&ad.ID, &ad.Title, &ad.Slug, &ad.Price, &ad.Introduction, &ad.Content, &ad.CoverImage, &ad.AuthorID,
		&author.ID, &author.Firstname, &author.Lastname, &author.Email, &avatar, &author.Hash, &author.Slug,
	)
	if err != nil {
		return nil, err
	}
	if avatar.Valid {
		author.Avatar = &avatar.String
	}
	ad.Author = &author
	ad.Images = []*models.Image{}
	ad.Bookings = []*models.Booking{}
	ad.Comments = []*models.Comment{}
	return &ad, nil
}

// CreateAd inserts ad and sets its ID. The slug must already be assigned.
func (r *AdRepository) CreateAd(ctx context.Context, ad *models.Ad) error {
	query := `
		INSERT INTO ad (author_id, title, slug, price, introduction, content, cover_image)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.DB.ExecContext(ctx, query,
		ad.AuthorID, ad.Title, ad.Slug, ad.Price, ad.Introduction, ad.Content, ad.CoverImage,
	)
	if err != nil {
		switch {
		case isDuplicateKey(err):
			return adConflict(err)
		case isForeignKeyViolation(err):
			return models.ErrUserNotFound
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	ad.ID = int(id)
	return nil
}

func (r *AdRepository) UpdateAd(ctx context.Context, ad *models.Ad) error {
	query := `
		UPDATE ad
		SET title = ?, slug = ?, price = ?, introduction = ?, content = ?, cover_image = ?
		WHERE id = ?
	`
	_, err := r.DB.ExecContext(ctx, query,
		ad.Title, ad.Slug, ad.Price, ad.Introduction, ad.Content, ad.CoverImage, ad.ID,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return adConflict(err)
		}
		return err
	}
	return nil
}

// DeleteAd removes the ad; images and comments go with it through the foreign keys.
// Bookings are removed explicitly first since they reference the ad without cascade.
func (r *AdRepository) DeleteAd(ctx context.Context, id int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM booking WHERE ad_id = ?`, id); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM ad WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return models.ErrAdNotFound
	}
	return tx.Commit()
}

// GetAdByID loads the ad with its author, images, bookings and comments.
func (r *AdRepository) GetAdByID(ctx context.Context, id int) (*models.Ad, error) {
	ad, err := scanAd(r.DB.QueryRowContext(ctx, "SELECT "+adColumns+adFrom+" WHERE a.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAdNotFound
	}
	if err != nil {
		return nil, err
	}
	return ad, r.loadChildren(ctx, ad)
}

func (r *AdRepository) GetAdBySlug(ctx context.Context, slug string) (*models.Ad, error) {
	ad, err := scanAd(r.DB.QueryRowContext(ctx, "SELECT "+adColumns+adFrom+" WHERE a.slug = ?", slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAdNotFound
	}
	if err != nil {
		return nil, err
	}
	return ad, r.loadChildren(ctx, ad)
}

// GetAds pages through ads newest first. Only the author is loaded for list entries.
func (r *AdRepository) GetAds(ctx context.Context, limit, offset int) ([]models.Ad, error) {
	return r.queryAds(ctx, "SELECT "+adColumns+adFrom+" ORDER BY a.id DESC LIMIT ? OFFSET ?", limit, offset)
}

func (r *AdRepository) GetAdsByAuthor(ctx context.Context, authorID int) ([]models.Ad, error) {
	return r.queryAds(ctx, "SELECT "+adColumns+adFrom+" WHERE a.author_id = ? ORDER BY a.id DESC", authorID)
}

// TitleExists reports whether another ad than excludeID already uses title.
func (r *AdRepository) TitleExists(ctx context.Context, title string, excludeID int) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM ad WHERE title = ? AND id <> ?`, title, excludeID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SlugExists reports whether another ad than excludeID already uses slug.
func (r *AdRepository) SlugExists(ctx context.Context, slug string, excludeID int) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM ad WHERE slug = ? AND id <> ?`, slug, excludeID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// adConflict tells the title and slug unique indexes apart. MySQL names the index,
// sqlite the column.
func adConflict(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "uniq_ad_slug'") || strings.Contains(msg, "ad.slug") {
		return models.ErrDuplicateSlug
	}
	return models.ErrDuplicateTitle
}

func (r *AdRepository) queryAds(ctx context.Context, query string, args ...any) ([]models.Ad, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ads := []models.Ad{}
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		ads = append(ads, *ad)
	}
	return ads, rows.Err()
}

func (r *AdRepository) loadChildren(ctx context.Context, ad *models.Ad) error {
	images, err := selectImages(ctx, r.DB, `WHERE ad_id = ?`, ad.ID)
	if err != nil {
		return err
	}
	for i := range images {
		ad.AddImage(&images[i])
	}

	bookings, err := selectBookings(ctx, r.DB, `WHERE b.ad_id = ?`, ad.ID)
	if err != nil {
		return err
	}
	for i := range bookings {
		ad.AddBooking(&bookings[i])
	}

	comments, err := selectComments(ctx, r.DB, `WHERE c.ad_id = ?`, ad.ID)
	if err != nil {
		return err
	}
	for i := range comments {
		ad.AddComment(&comments[i])
	}
	return nil
}
