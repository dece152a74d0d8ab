package db

import (
	"context"
)

const createUser = `
INSERT INTO users (id, name, email, hashed_password, role, contact_info)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, name, email, hashed_password, role, contact_info, created_at, updated_at
`

type CreateUserParams struct {
	ID             string
	Name           string
	Email          string
	HashedPassword string
	Role           UserRole
	ContactInfo    *string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser,
		arg.ID,
		arg.Name,
		arg.Email,
		arg.HashedPassword,
		arg.Role,
		arg.ContactInfo,
	)

	var u User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.HashedPassword,
		&u.Role,
		&u.ContactInfo,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

const getUserByID = `
SELECT id, name, email, hashed_password, role, contact_info, created_at, updated_at
FROM users
WHERE id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByID, id)

	var u User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.HashedPassword,
		&u.Role,
		&u.ContactInfo,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

const getUserByEmail = `
SELECT id, name, email, hashed_password, role, contact_info, created_at, updated_at
FROM users
WHERE email = $1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByEmail, email)

	var u User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.HashedPassword,
		&u.Role,
		&u.ContactInfo,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

const listUserIDsByRole = `
SELECT id
FROM users
WHERE role = $1
ORDER BY created_at
`

func (q *Queries) ListUserIDsByRole(ctx context.Context, role UserRole) ([]string, error) {
	rows, err := q.db.Query(ctx, listUserIDsByRole, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
