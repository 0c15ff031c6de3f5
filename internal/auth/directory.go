package auth

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"

	"github.com/squadline/squadline-backend/internal/auth/domain"
)

// UserDirectory is the part of the Firebase Auth client used for invites.
type UserDirectory interface {
	GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error)
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
}

// FirebaseDirectory resolves invited members to Firebase accounts.
type FirebaseDirectory struct {
	client UserDirectory
}

func NewFirebaseDirectory(client UserDirectory) *FirebaseDirectory {
	return &FirebaseDirectory{client: client}
}

// EnsureAccount returns the account registered for email, creating it when
// none exists. New accounts sign in through a password reset link.
func (d *FirebaseDirectory) EnsureAccount(ctx context.Context, email, name string) (domain.Identity, error) {
	rec, err := d.client.GetUserByEmail(ctx, email)
	if auth.IsUserNotFound(err) {
		rec, err = d.client.CreateUser(ctx, (&auth.UserToCreate{}).Email(email).DisplayName(name))
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("firebase account for %s: %w", email, err)
	}
	return domain.Identity{UID: rec.UID, Email: rec.Email, Name: rec.DisplayName}, nil
}

// StaticDirectory derives uids from emails. Used with DEV_AUTH where no
// identity provider is reachable.
type StaticDirectory struct{}

func (StaticDirectory) EnsureAccount(_ context.Context, email, name string) (domain.Identity, error) {
	return domain.Identity{UID: "dev-" + sanitizeUID(email), Email: email, Name: name}, nil
}

func sanitizeUID(email string) string {
	out := make([]rune, 0, len(email))
	for _, r := range email {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
