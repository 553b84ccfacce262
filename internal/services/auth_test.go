package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neuroplay/neuroplay-backend/internal/logger"
	apperrors "github.com/neuroplay/neuroplay-backend/internal/pkg/errors"
	"github.com/neuroplay/neuroplay-backend/internal/requestdata"
	"github.com/neuroplay/neuroplay-backend/internal/types"
)

type fakeObserverRepo struct {
	observers map[uuid.UUID]*types.Observer
}

func (f *fakeObserverRepo) Create(ctx context.Context, tx *gorm.DB, o *types.Observer) (*types.Observer, error) {
	f.observers[o.ID] = o
	return o, nil
}
func (f *fakeObserverRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Observer, error) {
	if o, ok := f.observers[id]; ok {
		return o, nil
	}
	return nil, apperrors.ErrNotFound
}
func (f *fakeObserverRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Observer, error) {
	for _, o := range f.observers {
		if o.Email == email {
			return o, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

type fakeTokenRepo struct {
	tokens map[uuid.UUID]*types.ObserverToken
}

func (f *fakeTokenRepo) Create(ctx context.Context, tx *gorm.DB, t *types.ObserverToken) (*types.ObserverToken, error) {
	f.tokens[t.ID] = t
	return t, nil
}
func (f *fakeTokenRepo) GetByRefreshToken(ctx context.Context, tx *gorm.DB, token string) (*types.ObserverToken, error) {
	for _, t := range f.tokens {
		if t.RefreshToken == token {
			return t, nil
		}
	}
	return nil, apperrors.ErrNotFound
}
func (f *fakeTokenRepo) GetByAccessToken(ctx context.Context, tx *gorm.DB, token string) (*types.ObserverToken, error) {
	for _, t := range f.tokens {
		if t.AccessToken == token {
			return t, nil
		}
	}
	return nil, apperrors.ErrNotFound
}
func (f *fakeTokenRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	delete(f.tokens, id)
	return nil
}
func (f *fakeTokenRepo) DeleteByObserverID(ctx context.Context, tx *gorm.DB, observerID uuid.UUID) error {
	for id, t := range f.tokens {
		if t.ObserverID == observerID {
			delete(f.tokens, id)
		}
	}
	return nil
}

const testJWTSecret = "test-secret"

func newAuthService(t *testing.T) AuthService {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	observers := &fakeObserverRepo{observers: make(map[uuid.UUID]*types.Observer)}
	tokens := &fakeTokenRepo{tokens: make(map[uuid.UUID]*types.ObserverToken)}
	return NewAuthService(nil, log, observers, tokens, testJWTSecret, time.Hour, 24*time.Hour)
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		role     string
	}{
		{"missing email", "", "longenough", ""},
		{"email without at sign", "nobody", "longenough", ""},
		{"short password", "a@b.c", "short", ""},
		{"unknown role", "a@b.c", "longenough", "clinician"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.Register(ctx, tt.email, tt.password, tt.role); !errors.Is(err, apperrors.ErrInvalidArgument) {
				t.Fatalf("got %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestRefreshUnknownToken(t *testing.T) {
	svc := newAuthService(t)
	if _, err := svc.Refresh(context.Background(), "no-such-token"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}

func TestLogoutUnknownTokenIsNoOp(t *testing.T) {
	svc := newAuthService(t)
	if err := svc.Logout(context.Background(), "no-such-token"); err != nil {
		t.Fatalf("logout of unknown token: %v", err)
	}
}

func TestContextFromToken(t *testing.T) {
	svc := newAuthService(t)
	observerID := uuid.New()

	claims := jwt.MapClaims{
		"sub":  observerID.String(),
		"role": types.RoleParent,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	ctx, err := svc.ContextFromToken(context.Background(), signed)
	if err != nil {
		t.Fatalf("ContextFromToken failed: %v", err)
	}
	got, ok := requestdata.ObserverID(ctx)
	if !ok || got != observerID {
		t.Fatalf("observer id not carried: %v %v", got, ok)
	}
	if role, ok := requestdata.Role(ctx); !ok || role != types.RoleParent {
		t.Fatalf("role not carried: %q %v", role, ok)
	}
}

func TestContextFromTokenRejectsBadSignature(t *testing.T) {
	svc := newAuthService(t)

	claims := jwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	if _, err := svc.ContextFromToken(context.Background(), signed); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}

func TestContextFromTokenRejectsExpired(t *testing.T) {
	svc := newAuthService(t)

	claims := jwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": time.Now().Add(-time.Minute).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	if _, err := svc.ContextFromToken(context.Background(), signed); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}
