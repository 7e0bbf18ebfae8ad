package app

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"bookListings/models"
	"bookListings/repository"
)

// SignUpForm is the raw sign-up input.
type SignUpForm struct {
	Username string
	Email    string
	Password string
	Address  string
	Phone    string
}

// Accounts implements sign-up, login and the profile view.
type Accounts struct {
	users   repository.UserRepositoryI
	session SessionFlag
	log     logrus.FieldLogger
}

func NewAccounts(users repository.UserRepositoryI, session SessionFlag, log logrus.FieldLogger) *Accounts {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Accounts{users: users, session: session, log: log.WithField("component", "accounts")}
}

// SignUp stores a new account. Signing up again with a registered email
// overwrites that account; its books are kept.
func (a *Accounts) SignUp(ctx context.Context, f SignUpForm) (*models.User, error) {
	if f.Username == "" || f.Email == "" || f.Password == "" || f.Address == "" || f.Phone == "" {
		return nil, ErrMissingFields
	}
	u := &models.User{
		Email:    f.Email,
		Username: f.Username,
		Password: f.Password,
		Address:  f.Address,
		Phone:    f.Phone,
	}
	if err := a.users.Upsert(ctx, u); err != nil {
		return nil, err
	}
	a.log.WithField("email", u.Email).Info("signed up")
	return u, nil
}

// Login checks the credentials literally against the stored account and, on a
// match, records the user as signed in. A lookup failure is reported exactly
// like a mismatch.
func (a *Accounts) Login(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	u, err := a.users.GetByEmailAndPassword(ctx, email, password)
	if err != nil {
		a.log.WithError(err).WithField("email", email).Error("error validating login")
		u = nil
	}
	if u == nil {
		a.log.WithField("email", email).Warn("login failed")
		return nil, ErrInvalidCredentials
	}
	if err := a.session.SetCurrentUserEmail(u.Email); err != nil {
		return nil, errors.Wrap(err, "save session")
	}
	return u, nil
}

// Logout forgets the signed-in user.
func (a *Accounts) Logout() error {
	return a.session.ClearCurrentUserEmail()
}

// CurrentUser returns the signed-in user, or nil if the recorded account no longer exists.
func (a *Accounts) CurrentUser(ctx context.Context) (*models.User, error) {
	email, err := currentEmail(a.session)
	if err != nil {
		return nil, err
	}
	return a.users.GetByEmail(ctx, email)
}

// UpdateProfile overwrites the stored account keyed by u.Email.
func (a *Accounts) UpdateProfile(ctx context.Context, u *models.User) error {
	return a.users.Update(ctx, u)
}

// WatchProfile streams the signed-in user until ctx is done.
func (a *Accounts) WatchProfile(ctx context.Context) (<-chan *models.User, error) {
	email, err := currentEmail(a.session)
	if err != nil {
		return nil, err
	}
	return a.users.WatchByEmail(ctx, email)
}
