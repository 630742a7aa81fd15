// Package devauth is a self-contained identity provider for the memory backend:
// bcrypt password hashes and HS256 tokens signed with the configured secret.
package devauth

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"skipfurther/internal/domain/entity"
	"skipfurther/pkg/errors"
	"skipfurther/pkg/logger"
)

const issuer = "skipfurther-dev"

type account struct {
	uid          string
	email        string
	passwordHash []byte
}

type claims struct {
	// Generation is bumped by RevokeSessions; older tokens stop verifying.
	Generation int `json:"gen"`
	jwt.RegisteredClaims
}

type Provider struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
	log    zerolog.Logger

	mu          sync.RWMutex
	byEmail     map[string]*account
	byUID       map[string]*account
	generations map[string]int
}

func NewProvider(secret string, expiry time.Duration) *Provider {
	return &Provider{
		secret:      []byte(secret),
		expiry:      expiry,
		now:         time.Now,
		log:         logger.With("devauth"),
		byEmail:     make(map[string]*account),
		byUID:       make(map[string]*account),
		generations: make(map[string]int),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *Provider) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.BadRequest("Failed to create account", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	email = normalizeEmail(email)
	if _, ok := p.byEmail[email]; ok {
		return "", errors.Conflict("Email is already registered")
	}

	acct := &account{uid: uuid.New().String(), email: email, passwordHash: hash}
	p.byEmail[email] = acct
	p.byUID[acct.uid] = acct
	return acct.uid, nil
}

func (p *Provider) DeleteUser(ctx context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.byUID[uid]
	if !ok {
		return errors.NotFound("User", nil)
	}
	delete(p.byUID, uid)
	delete(p.byEmail, acct.email)
	return nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*entity.AuthSession, error) {
	p.mu.RLock()
	acct, ok := p.byEmail[normalizeEmail(email)]
	p.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)) != nil {
		return nil, errors.Unauthorized("Invalid email or password", nil)
	}

	token, err := p.issue(acct.uid)
	if err != nil {
		return nil, errors.Internal("Failed to sign in", err)
	}

	return &entity.AuthSession{
		UserID:       acct.uid,
		IDToken:      token,
		RefreshToken: uuid.New().String(),
		ExpiresIn:    int64(p.expiry / time.Second),
	}, nil
}

func (p *Provider) RevokeSessions(ctx context.Context, uid string) error {
	p.mu.Lock()
	p.generations[uid]++
	p.mu.Unlock()
	return nil
}

// SendPasswordReset only logs; there is no mail transport in development.
func (p *Provider) SendPasswordReset(ctx context.Context, email, continueURL string) error {
	p.log.Info().Str("email", normalizeEmail(email)).Str("continue_url", continueURL).Msg("password reset requested")
	return nil
}

// IssueDevToken signs a token for any uid, registered or not.
func (p *Provider) IssueDevToken(ctx context.Context, uid string) (string, error) {
	return p.issue(uid)
}

func (p *Provider) issue(uid string) (string, error) {
	p.mu.RLock()
	gen := p.generations[uid]
	p.mu.RUnlock()

	now := p.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Generation: gen,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   uid,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
		},
	})
	return token.SignedString(p.secret)
}

var errRevoked = stderrors.New("token has been revoked")

func (p *Provider) VerifyToken(ctx context.Context, token string) (string, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, stderrors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid || c.Subject == "" || c.Issuer != issuer {
		return "", stderrors.New("invalid token")
	}

	p.mu.RLock()
	gen := p.generations[c.Subject]
	p.mu.RUnlock()
	if c.Generation != gen {
		return "", errRevoked
	}

	return c.Subject, nil
}
