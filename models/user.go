package models

// User represents a registered account.
// It maps to the `users` table in SQLite; Email is the primary key.
type User struct {
	Email    string `db:"email" json:"email"`
	Username string `db:"username" json:"username"`
	// Password is stored and compared as plain text.
	Password string `db:"password" json:"-"`
	Address  string `db:"address" json:"address"`
	Phone    string `db:"phone" json:"phone"`
}
