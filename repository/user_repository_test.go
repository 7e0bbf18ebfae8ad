package repository

import (
	"context"
	"testing"
	"time"

	"bookListings/internal/testutil"
	"bookListings/models"
)

func newUser() *models.User {
	return &models.User{Email: "a@x.com", Username: "A", Password: "p", Address: "addr", Phone: "123"}
}

func TestUserRepository_CRUDAndQueries(t *testing.T) {
	d := testutil.OpenInMemoryDB(t)
	repo := NewUserRepository(d, testutil.NewHub())
	ctx := context.Background()

	// Upsert then read back
	u := newUser()
	if err := repo.Upsert(ctx, u); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	g, err := repo.GetByEmail(ctx, "a@x.com")
	if err != nil || g == nil {
		t.Fatalf("get by email: %v %+v", err, g)
	}
	if *g != *u {
		t.Fatalf("read back mismatch: got %+v want %+v", g, u)
	}

	// Missing user
	missing, err := repo.GetByEmail(ctx, "b@y.com")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing user, got %+v err=%v", missing, err)
	}

	// List
	list, err := repo.List(ctx, 10, 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v len=%d", err, len(list))
	}

	// Update
	u.Username = "A2"
	u.Phone = "999"
	if err := repo.Update(ctx, u); err != nil {
		t.Fatalf("update: %v", err)
	}
	g, _ = repo.GetByEmail(ctx, "a@x.com")
	if g.Username != "A2" || g.Phone != "999" {
		t.Fatalf("update not applied: %+v", g)
	}

	// Update of a missing user is a no-op
	if err := repo.Update(ctx, &models.User{Email: "nobody@x.com", Username: "N"}); err != nil {
		t.Fatalf("update missing: %v", err)
	}
	if n, _ := repo.GetByEmail(ctx, "nobody@x.com"); n != nil {
		t.Fatalf("update must not create a row: %+v", n)
	}

	// Delete
	if err := repo.Delete(ctx, "a@x.com"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	gone, err := repo.GetByEmail(ctx, "a@x.com")
	if err != nil || gone != nil {
		t.Fatalf("expected user deleted, got: %+v err=%v", gone, err)
	}
}

func TestUserRepository_UpsertOverwrites(t *testing.T) {
	d := testutil.OpenInMemoryDB(t)
	repo := NewUserRepository(d, testutil.NewHub())
	ctx := context.Background()

	if err := repo.Upsert(ctx, newUser()); err != nil {
		t.Fatalf("upsert first: %v", err)
	}
	second := &models.User{Email: "a@x.com", Username: "B", Password: "q", Address: "elsewhere", Phone: "456"}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("upsert second: %v", err)
	}

	list, err := repo.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected a single row after upsert, got %d", len(list))
	}
	if list[0] != *second {
		t.Fatalf("previous values survived upsert: %+v", list[0])
	}
}

func TestUserRepository_GetByEmailAndPassword(t *testing.T) {
	d := testutil.OpenInMemoryDB(t)
	repo := NewUserRepository(d, testutil.NewHub())
	ctx := context.Background()
	if err := repo.Upsert(ctx, newUser()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	cases := []struct {
		name, email, password string
		found                 bool
	}{
		{"match", "a@x.com", "p", true},
		{"wrong password", "a@x.com", "wrong", false},
		{"wrong email", "b@y.com", "p", false},
		{"password case differs", "a@x.com", "P", false},
		{"email case differs", "A@X.COM", "p", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := repo.GetByEmailAndPassword(ctx, tc.email, tc.password)
			if err != nil {
				t.Fatalf("lookup: %v", err)
			}
			if (u != nil) != tc.found {
				t.Fatalf("found=%v, want %v", u != nil, tc.found)
			}
			if u != nil && *u != *newUser() {
				t.Fatalf("unexpected user: %+v", u)
			}
		})
	}
}

func TestUserRepository_WatchByEmail(t *testing.T) {
	d := testutil.OpenInMemoryDB(t)
	repo := NewUserRepository(d, testutil.NewHub())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := repo.WatchByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	next := func() *models.User {
		t.Helper()
		select {
		case u := <-ch:
			return u
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for profile")
			return nil
		}
	}

	if u := next(); u != nil {
		t.Fatalf("expected nil before sign-up, got %+v", u)
	}
	if err := repo.Upsert(ctx, newUser()); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if u := next(); u == nil || u.Username != "A" {
		t.Fatalf("expected created user, got %+v", u)
	}
	changed := newUser()
	changed.Address = "new addr"
	if err := repo.Upsert(ctx, changed); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if u := next(); u == nil || u.Address != "new addr" {
		t.Fatalf("expected overwritten user, got %+v", u)
	}
}
