package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	"bookListings/internal/live"
	"bookListings/models"
)

const bookColumns = `id, title, author, year, genre, price, email`

type BookRepository struct {
	db  *sql.DB
	hub *live.Hub
}

// NewBookRepository returns a repository that publishes its writes on hub.
// With a nil hub writes are not broadcast and the Watch methods fail.
func NewBookRepository(db *sql.DB, hub *live.Hub) *BookRepository {
	return &BookRepository{db: db, hub: hub}
}

// Create inserts a new book. Any ID set by the caller is ignored; the stored
// book with its assigned ID is returned.
// If b.Email names no user the insert fails with an error matching ErrOwnerNotFound.
func (r *BookRepository) Create(ctx context.Context, b *models.Book) (*models.Book, error) {
	if b == nil {
		return nil, errors.New("nil book")
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO books (title, author, year, genre, price, email) VALUES (?, ?, ?, ?, ?, ?)`,
		b.Title, b.Author, b.Year, b.Genre, b.Price, b.Email)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: %q: %w", ErrOwnerNotFound, b.Email, err)
		}
		return nil, errors.Wrap(err, "insert book")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	r.hub.Publish(live.Books)

	out := *b
	out.ID = id
	return &out, nil
}

func (r *BookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	var b models.Book
	err := r.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id).
		Scan(&b.ID, &b.Title, &b.Author, &b.Year, &b.Genre, &b.Price, &b.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// ListByOwner returns the books posted by email in insertion order.
func (r *BookRepository) ListByOwner(ctx context.Context, email string) ([]models.Book, error) {
	return r.query(ctx, `SELECT `+bookColumns+` FROM books WHERE email = ? ORDER BY id`, email)
}

// ListAll returns every book in insertion order.
func (r *BookRepository) ListAll(ctx context.Context) ([]models.Book, error) {
	return r.query(ctx, `SELECT `+bookColumns+` FROM books ORDER BY id`)
}

// WatchByOwner is the live form of ListByOwner.
func (r *BookRepository) WatchByOwner(ctx context.Context, email string) (<-chan []models.Book, error) {
	return live.Watch(ctx, r.hub, live.Books, func(ctx context.Context) ([]models.Book, error) {
		return r.ListByOwner(ctx, email)
	})
}

// WatchAll is the live form of ListAll.
func (r *BookRepository) WatchAll(ctx context.Context) (<-chan []models.Book, error) {
	return live.Watch(ctx, r.hub, live.Books, r.ListAll)
}

func (r *BookRepository) query(ctx context.Context, q string, args ...any) ([]models.Book, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Book{}
	for rows.Next() {
		var b models.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Year, &b.Genre, &b.Price, &b.Email); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
