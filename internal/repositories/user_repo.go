package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bnbBack/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

const userColumns = `u.id, u.firstname, u.lastname, u.email, u.avatar, u.hash, u.slug`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		user   models.User
		avatar sql.NullString
	)
	err := row.Scan(&user.ID, &user.Firstname, &user.Lastname, &user.Email, &avatar, &user.Hash, &user.Slug)
	if err != nil {
		return models.User{}, err
	}
	if avatar.Valid {
		user.Avatar = &avatar.String
	}
	return user, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := "INSERT INTO `user` (firstname, lastname, email, avatar, hash, slug) VALUES (?, ?, ?, ?, ?, ?)"
	result, err := r.DB.ExecContext(ctx, query,
		user.Firstname, user.Lastname, user.Email, user.Avatar, user.Hash, user.Slug,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return models.User{}, models.ErrDuplicateEmail
		}
		return models.User{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	user.ID = int(id)
	return user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int) (models.User, error) {
	query := "SELECT " + userColumns + " FROM `user` u WHERE u.id = ?"
	user, err := scanUser(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}

	user.Roles, err = r.GetUserRoles(ctx, user.ID)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	query := "SELECT " + userColumns + " FROM `user` u WHERE u.email = ?"
	user, err := scanUser(r.DB.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}

	user.Roles, err = r.GetUserRoles(ctx, user.ID)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// GetAllUsers returns every user ordered by id. Roles are not loaded.
func (r *UserRepository) GetAllUsers(ctx context.Context) ([]models.User, error) {
	query := "SELECT " + userColumns + " FROM `user` u ORDER BY u.id"
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	query := "UPDATE `user` SET firstname = ?, lastname = ?, email = ?, avatar = ?, hash = ?, slug = ? WHERE id = ?"
	_, err := r.DB.ExecContext(ctx, query,
		user.Firstname, user.Lastname, user.Email, user.Avatar, user.Hash, user.Slug, user.ID,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return models.User{}, models.ErrDuplicateEmail
		}
		return models.User{}, err
	}

	// MySQL reports zero affected rows for an unchanged row, so existence is checked by
	// reading it back.
	return r.GetUserByID(ctx, user.ID)
}

func (r *UserRepository) DeleteUser(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM `user` WHERE id = ?", id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) GetUserRoles(ctx context.Context, userID int) ([]models.Role, error) {
	query := `
		SELECT r.id, r.title
		FROM role r
		JOIN role_user ru ON ru.role_id = r.id
		WHERE ru.user_id = ?
		ORDER BY r.title
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := []models.Role{}
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Title); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *UserRepository) AssignRole(ctx context.Context, userID, roleID int) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO role_user (role_id, user_id) VALUES (?, ?)`, roleID, userID)
	switch {
	case err == nil:
		return nil
	case isDuplicateKey(err):
		return models.ErrDuplicateRole
	case isForeignKeyViolation(err):
		return fmt.Errorf("assign role %d to user %d: %w", roleID, userID, models.ErrNoRecord)
	}
	return err
}

func (r *UserRepository) RemoveRole(ctx context.Context, userID, roleID int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM role_user WHERE role_id = ? AND user_id = ?`, roleID, userID)
	return err
}
