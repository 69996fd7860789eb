package repositories

import (
	"context"
	"database/sql"

	"bnbBack/internal/models"
)

type ImageRepository struct {
	DB *sql.DB
}

func (r *ImageRepository) CreateImage(ctx context.Context, img models.Image) (models.Image, error) {
	result, err := r.DB.ExecContext(ctx,
		`INSERT INTO image (ad_id, url, caption) VALUES (?, ?, ?)`,
		img.AdID, img.URL, img.Caption,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Image{}, models.ErrAdNotFound
		}
		return models.Image{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Image{}, err
	}
	img.ID = int(id)
	return img, nil
}

func (r *ImageRepository) GetImageByID(ctx context.Context, id int) (models.Image, error) {
	images, err := selectImages(ctx, r.DB, `WHERE id = ?`, id)
	if err != nil {
		return models.Image{}, err
	}
	if len(images) == 0 {
		return models.Image{}, models.ErrImageNotFound
	}
	return images[0], nil
}

func (r *ImageRepository) GetImagesByAdID(ctx context.Context, adID int) ([]models.Image, error) {
	return selectImages(ctx, r.DB, `WHERE ad_id = ?`, adID)
}

func (r *ImageRepository) DeleteImage(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM image WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrImageNotFound
	}
	return nil
}

func selectImages(ctx context.Context, db *sql.DB, where string, args ...any) ([]models.Image, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, ad_id, url, caption FROM image `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []models.Image{}
	for rows.Next() {
		var img models.Image
		if err := rows.Scan(&img.ID, &img.AdID, &img.URL, &img.Caption); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return images, nil
}
