package repositories

import (
	"context"
	"database/sql"

	"bnbBack/internal/models"
)

type CommentRepository struct {
	DB *sql.DB
}

func (r *CommentRepository) CreateComment(ctx context.Context, c models.Comment) (models.Comment, error) {
	query := `
		INSERT INTO comments (ad_id, author_id, created_at, rating, content)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.DB.ExecContext(ctx, query, c.AdID, c.AuthorID, c.CreatedAt, c.Rating, c.Content)
	if err != nil {
		switch {
		case isDuplicateKey(err):
			return models.Comment{}, models.ErrDuplicateComment
		case isForeignKeyViolation(err):
			return models.Comment{}, models.ErrAdNotFound
		}
		return models.Comment{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Comment{}, err
	}
	c.ID = int(id)
	return c, nil
}

func (r *CommentRepository) GetCommentByID(ctx context.Context, id int) (models.Comment, error) {
	comments, err := selectComments(ctx, r.DB, `WHERE c.id = ?`, id)
	if err != nil {
		return models.Comment{}, err
	}
	if len(comments) == 0 {
		return models.Comment{}, models.ErrCommentNotFound
	}
	return comments[0], nil
}

func (r *CommentRepository) GetCommentsByAdID(ctx context.Context, adID int) ([]models.Comment, error) {
	return selectComments(ctx, r.DB, `WHERE c.ad_id = ?`, adID)
}

func (r *CommentRepository) GetCommentByAdAndAuthor(ctx context.Context, adID, authorID int) (models.Comment, error) {
	comments, err := selectComments(ctx, r.DB, `WHERE c.ad_id = ? AND c.author_id = ?`, adID, authorID)
	if err != nil {
		return models.Comment{}, err
	}
	if len(comments) == 0 {
		return models.Comment{}, models.ErrCommentNotFound
	}
	return comments[0], nil
}

func (r *CommentRepository) DeleteComment(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrCommentNotFound
	}
	return nil
}

func selectComments(ctx context.Context, db *sql.DB, where string, args ...any) ([]models.Comment, error) {
	query := `SELECT c.id, c.ad_id, c.author_id, c.content, c.rating, c.created_at, ` +
		userColumns + " FROM comments c JOIN `user` u ON u.id = c.author_id " + where + ` ORDER BY c.id`
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		author, err := scanUser(scanFunc(func(dest ...any) error {
			return rows.Scan(append([]any{&c.ID, &c.AdID, &c.AuthorID, &c.Content, &c.Rating, &c.CreatedAt}, dest...)...)
		}))
		if err != nil {
			return nil, err
		}
		c.Author = &author
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}
