package models

// Book represents a listing posted by a user.
// Email references User.Email; deleting the user removes its books.
type Book struct {
	ID     int64   `db:"id" json:"id"`
	Title  string  `db:"title" json:"title"`
	Author string  `db:"author" json:"author"`
	Year   int     `db:"year" json:"year"`
	Genre  string  `db:"genre" json:"genre"`
	Price  float64 `db:"price" json:"price"`
	Email  string  `db:"email" json:"email"`
}
