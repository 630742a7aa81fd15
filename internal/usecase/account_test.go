package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skipfurther/internal/adapter/repository/memory"
	"skipfurther/internal/domain/entity"
	"skipfurther/internal/infrastructure/devauth"
	"skipfurther/internal/infrastructure/storage"
	"skipfurther/pkg/errors"
)

type capturePublisher struct {
	mu     sync.Mutex
	events map[string][]*entity.Event
}

func (p *capturePublisher) Publish(ctx context.Context, userID string, event *entity.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = make(map[string][]*entity.Event)
	}
	p.events[userID] = append(p.events[userID], event)
	return nil
}

func TestNotificationLifecycle(t *testing.T) {
	ctx := context.Background()
	publisher := &capturePublisher{}
	uc := NewNotificationUseCase(memory.NewNotificationRepository(memory.NewStore()), publisher)

	uc.Notify(ctx, "u1", entity.NotificationNewBid, "New bid", "l1")
	uc.Notify(ctx, "u1", entity.NotificationOutbid, "Outbid", "l2")
	uc.Notify(ctx, "u2", entity.NotificationNewBid, "New bid", "l3")
	uc.Notify(ctx, "", entity.NotificationNewBid, "dropped", "")

	require.Len(t, publisher.events["u1"], 2)
	assert.Equal(t, entity.NotificationNewBid, publisher.events["u1"][0].Type)

	list, unread, err := uc.List(ctx, "u1", false, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), unread)

	_, err = uc.SetRead(ctx, "u2", list[0].ID, true)
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	read, err := uc.SetRead(ctx, "u1", list[0].ID, true)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	unreadOnly, unread, err := uc.List(ctx, "u1", true, 10)
	require.NoError(t, err)
	assert.Len(t, unreadOnly, 1)
	assert.Equal(t, int64(1), unread)

	n, err := uc.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, uc.Delete(ctx, "u1", list[1].ID))
	err = uc.Delete(ctx, "u1", list[1].ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestSignupLoginLogout(t *testing.T) {
	ctx := context.Background()
	profiles := memory.NewProfileRepository(memory.NewStore())
	identity := devauth.NewProvider("test-secret", time.Hour)
	uc := NewAuthUseCase(profiles, identity, "http://localhost:3000/")

	res, err := uc.Signup(ctx, SignupInput{Email: "Ada@Example.com", Password: "password123", Username: "ada"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", res.Profile.Email)
	assert.Equal(t, entity.IdentityUnverified, res.Profile.VerificationStatus)
	assert.NotEmpty(t, res.Session.IDToken)

	_, err = uc.Signup(ctx, SignupInput{Email: "other@example.com", Password: "password123", Username: "ada"})
	assert.True(t, errors.Is(err, errors.CodeConflict))

	_, err = uc.Login(ctx, "ada@example.com", "nope-nope")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))

	login, err := uc.Login(ctx, "ada@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, res.Profile.ID, login.Profile.ID)

	require.NoError(t, uc.Logout(ctx, login.Profile.ID))
	_, err = identity.VerifyToken(ctx, login.Session.IDToken)
	assert.Error(t, err)

	require.NoError(t, uc.ResetPassword(ctx, "ada@example.com"))
}

func TestProfileUpdateAndVerification(t *testing.T) {
	ctx := context.Background()
	profiles := memory.NewProfileRepository(memory.NewStore())
	files := storage.NewMemoryStorage()
	uc := NewProfileUseCase(profiles, files)

	for _, id := range []string{"a", "b"} {
		require.NoError(t, profiles.Create(ctx, &entity.Profile{ID: id, Username: id, VerificationStatus: entity.IdentityUnverified}))
	}

	taken := "b"
	_, err := uc.UpdateProfile(ctx, "a", UpdateProfileInput{Username: &taken})
	assert.True(t, errors.Is(err, errors.CodeConflict))

	bio := "Queue flipper"
	updated, err := uc.UpdateProfile(ctx, "a", UpdateProfileInput{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)

	public, err := uc.GetPublicProfile(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, bio, public.Bio)

	req, err := uc.SubmitVerification(ctx, "a", strings.NewReader("scan"), "image/png", "passport")
	require.NoError(t, err)
	assert.True(t, files.Exists(req.DocumentURL))

	profile, err := uc.GetProfile(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, entity.IdentityPending, profile.VerificationStatus)
}
