// Package app holds the flows behind the screens: signing up, logging in,
// posting a book and browsing listings. Screens call these and render the results.
package app

import (
	"github.com/pkg/errors"
)

var (
	// ErrMissingFields is returned by SignUp when any form field is empty.
	ErrMissingFields = errors.New("please fill all the fields")
	// ErrMissingCredentials is returned by Login when email or password is empty.
	ErrMissingCredentials = errors.New("please fill in both fields")
	// ErrInvalidCredentials covers both a credential mismatch and a failed lookup.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotSignedIn is returned by flows that need a signed-in user when none is recorded.
	ErrNotSignedIn = errors.New("not signed in")
)

// SessionFlag records which user is signed in across runs.
type SessionFlag interface {
	CurrentUserEmail() (email string, ok bool, err error)
	SetCurrentUserEmail(email string) error
	ClearCurrentUserEmail() error
}

func currentEmail(s SessionFlag) (string, error) {
	email, ok, err := s.CurrentUserEmail()
	if err != nil {
		return "", errors.Wrap(err, "read session")
	}
	if !ok || email == "" {
		return "", ErrNotSignedIn
	}
	return email, nil
}
