package usecase

import (
	"context"

	"skipfurther/internal/domain/entity"
)

// IdentityProvider owns credentials. Profiles live in the datastore.
type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
	SignIn(ctx context.Context, email, password string) (*entity.AuthSession, error)
	RevokeSessions(ctx context.Context, uid string) error
	SendPasswordReset(ctx context.Context, email, continueURL string) error
}

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// DevTokenIssuer mints tokens for arbitrary users in development.
type DevTokenIssuer interface {
	IssueDevToken(ctx context.Context, uid string) (string, error)
}

// EventPublisher pushes realtime events to a user's open connections.
type EventPublisher interface {
	Publish(ctx context.Context, userID string, event *entity.Event) error
}
