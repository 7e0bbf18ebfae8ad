package app

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"bookListings/models"
	"bookListings/repository"
)

// BookForm is the raw add-listing input; Year and Price are free text.
type BookForm struct {
	Title  string
	Author string
	Year   string
	Genre  string
	Price  string
}

// Listings implements posting and browsing books.
type Listings struct {
	books   repository.BookRepositoryI
	session SessionFlag
	log     logrus.FieldLogger
}

func NewListings(books repository.BookRepositoryI, session SessionFlag, log logrus.FieldLogger) *Listings {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Listings{books: books, session: session, log: log.WithField("component", "listings")}
}

// Post stores a book attributed to the signed-in user.
// Unparsable Year and Price are stored as 0.
func (l *Listings) Post(ctx context.Context, f BookForm) (*models.Book, error) {
	email, err := currentEmail(l.session)
	if err != nil {
		return nil, err
	}
	b, err := l.books.Create(ctx, &models.Book{
		Title:  f.Title,
		Author: f.Author,
		Year:   ParseYear(f.Year),
		Genre:  f.Genre,
		Price:  ParsePrice(f.Price),
		Email:  email,
	})
	if err != nil {
		return nil, err
	}
	l.log.WithFields(logrus.Fields{"email": email, "book_id": b.ID}).Info("book posted")
	return b, nil
}

// Browse streams every book whose title contains query, ignoring case.
// An empty query matches everything.
func (l *Listings) Browse(ctx context.Context, query string) (<-chan []models.Book, error) {
	in, err := l.books.WatchAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make(chan []models.Book)
	go func() {
		defer close(out)
		for books := range in {
			select {
			case out <- FilterByTitle(books, query):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Mine streams the books posted by the signed-in user.
func (l *Listings) Mine(ctx context.Context) (<-chan []models.Book, error) {
	email, err := currentEmail(l.session)
	if err != nil {
		return nil, err
	}
	return l.books.WatchByOwner(ctx, email)
}

// FilterByTitle keeps the books whose title contains query, ignoring case.
func FilterByTitle(books []models.Book, query string) []models.Book {
	out := make([]models.Book, 0, len(books))
	q := strings.ToLower(query)
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), q) {
			out = append(out, b)
		}
	}
	return out
}

// ParseYear reads a decimal 32-bit year, falling back to 0.
func ParseYear(s string) int {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0
	}
	return int(n)
}

// ParsePrice reads a decimal price, falling back to 0 for unparsable or non-finite input.
// SQLite stores NaN as NULL, which the price column rejects.
func ParsePrice(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
