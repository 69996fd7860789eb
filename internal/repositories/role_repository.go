package repositories

import (
	"context"
	"database/sql"
	"errors"

	"bnbBack/internal/models"
)

type RoleRepository struct {
	DB *sql.DB
}

func (r *RoleRepository) CreateRole(ctx context.Context, role models.Role) (models.Role, error) {
	result, err := r.DB.ExecContext(ctx, `INSERT INTO role (title) VALUES (?)`, role.Title)
	if err != nil {
		if isDuplicateKey(err) {
			return models.Role{}, models.ErrDuplicateRole
		}
		return models.Role{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Role{}, err
	}
	role.ID = int(id)
	return role, nil
}

func (r *RoleRepository) GetRoleByTitle(ctx context.Context, title string) (models.Role, error) {
	var role models.Role
	err := r.DB.QueryRowContext(ctx, `SELECT id, title FROM role WHERE title = ?`, title).Scan(&role.ID, &role.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Role{}, models.ErrRoleNotFound
	}
	return role, err
}

func (r *RoleRepository) GetAllRoles(ctx context.Context) ([]models.Role, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, title FROM role ORDER BY id`)
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
