package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"bookListings/internal/live"
	"bookListings/models"
)

const userColumns = `email, username, password, address, phone`

type UserRepository struct {
	db  *sql.DB
	hub *live.Hub
}

// NewUserRepository returns a repository that publishes its writes on hub.
// With a nil hub writes are not broadcast and the Watch methods fail.
func NewUserRepository(db *sql.DB, hub *live.Hub) *UserRepository {
	return &UserRepository{db: db, hub: hub}
}

// Upsert creates the user or overwrites every field of the row with the same email.
// The row is updated in place rather than replaced, so the user's books are kept.
func (r *UserRepository) Upsert(ctx context.Context, u *models.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(email) DO UPDATE SET
            username = excluded.username,
            password = excluded.password,
            address  = excluded.address,
            phone    = excluded.phone`,
		u.Email, u.Username, u.Password, u.Address, u.Phone)
	if err != nil {
		return errors.Wrap(err, "upsert user")
	}
	r.hub.Publish(live.Users)
	return nil
}

// GetByEmailAndPassword returns the user whose email and password both match exactly,
// or nil when there is none.
func (r *UserRepository) GetByEmailAndPassword(ctx context.Context, email, password string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? AND password = ? LIMIT 1`, email, password)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email)
	return scanUser(row)
}

// Update overwrites all fields of the row keyed by u.Email.
// Updating a missing user is a no-op.
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	res, err := r.db.ExecContext(ctx, `UPDATE users SET username = ?, password = ?, address = ?, phone = ? WHERE email = ?`,
		u.Username, u.Password, u.Address, u.Phone, u.Email)
	if err != nil {
		return errors.Wrap(err, "update user")
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		r.hub.Publish(live.Users)
	}
	return nil
}

// WatchByEmail streams the user with the given email, re-emitting after every write
// to the users table. A nil value means the user does not exist (yet).
func (r *UserRepository) WatchByEmail(ctx context.Context, email string) (<-chan *models.User, error) {
	return live.Watch(ctx, r.hub, live.Users, func(ctx context.Context) (*models.User, error) {
		return r.GetByEmail(ctx, email)
	})
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY email LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Email, &u.Username, &u.Password, &u.Address, &u.Phone); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the user. The store cascades the delete to the user's books.
func (r *UserRepository) Delete(ctx context.Context, email string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE email = ?`, email); err != nil {
		return errors.Wrap(err, "delete user")
	}
	r.hub.Publish(live.Users, live.Books)
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.Email, &u.Username, &u.Password, &u.Address, &u.Phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
