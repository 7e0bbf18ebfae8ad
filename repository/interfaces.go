package repository

import (
	"context"

	"bookListings/models"
)

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Upsert(ctx context.Context, u *models.User) error
	GetByEmailAndPassword(ctx context.Context, email, password string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	WatchByEmail(ctx context.Context, email string) (<-chan *models.User, error)
}

// BookRepositoryI defines operations on Book entities.
type BookRepositoryI interface {
	Create(ctx context.Context, b *models.Book) (*models.Book, error)
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	ListByOwner(ctx context.Context, email string) ([]models.Book, error)
	ListAll(ctx context.Context) ([]models.Book, error)
	WatchByOwner(ctx context.Context, email string) (<-chan []models.Book, error)
	WatchAll(ctx context.Context) (<-chan []models.Book, error)
}

var (
	_ UserRepositoryI = (*UserRepository)(nil)
	_ BookRepositoryI = (*BookRepository)(nil)
)
