package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/neuroplay/neuroplay-backend/internal/logger"
	apperrors "github.com/neuroplay/neuroplay-backend/internal/pkg/errors"
	"github.com/neuroplay/neuroplay-backend/internal/repos"
	"github.com/neuroplay/neuroplay-backend/internal/requestdata"
	"github.com/neuroplay/neuroplay-backend/internal/types"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthService interface {
	Register(ctx context.Context, email, password, role string) (*types.Observer, *TokenPair, error)
	Login(ctx context.Context, email, password string) (*types.Observer, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	ContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db         *gorm.DB
	log        *logger.Logger
	observers  repos.ObserverRepo
	tokens     repos.ObserverTokenRepo
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(db *gorm.DB, log *logger.Logger, observers repos.ObserverRepo, tokens repos.ObserverTokenRepo, jwtSecret string, accessTTL, refreshTTL time.Duration) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:         db,
		log:        serviceLog,
		observers:  observers,
		tokens:     tokens,
		jwtSecret:  jwtSecret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (as *authService) Register(ctx context.Context, email, password, role string) (*types.Observer, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, fmt.Errorf("%w: a valid email is required", apperrors.ErrInvalidArgument)
	}
	if len(password) < 8 {
		return nil, nil, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrInvalidArgument)
	}
	if role == "" {
		role = types.RoleParent
	}
	if role != types.RoleParent && role != types.RoleTeacher {
		return nil, nil, fmt.Errorf("%w: role must be parent or teacher", apperrors.ErrInvalidArgument)
	}

	if _, err := as.observers.GetByEmail(ctx, nil, email); err == nil {
		return nil, nil, fmt.Errorf("%w: email already registered", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	observer := &types.Observer{
		ID:        uuid.New(),
		Email:     email,
		Password:  string(hash),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var pair *TokenPair
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := as.observers.Create(ctx, tx, observer); err != nil {
			return fmt.Errorf("failed to create observer: %w", err)
		}
		p, err := as.issueTokens(ctx, tx, observer)
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	as.log.Info("Observer registered", "observer_id", observer.ID)
	return observer, pair, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*types.Observer, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	observer, err := as.observers.GetByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.ErrUnauthorized
		}
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(observer.Password), []byte(password)); err != nil {
		return nil, nil, apperrors.ErrUnauthorized
	}

	var pair *TokenPair
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := as.issueTokens(ctx, tx, observer)
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return observer, pair, nil
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	stored, err := as.tokens.GetByRefreshToken(ctx, nil, refreshToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if stored.ExpiresAt.Before(time.Now()) {
		_ = as.tokens.DeleteByID(ctx, nil, stored.ID)
		return nil, apperrors.ErrUnauthorized
	}

	observer, err := as.observers.GetByID(ctx, nil, stored.ObserverID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	var pair *TokenPair
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := as.tokens.DeleteByID(ctx, tx, stored.ID); err != nil {
			return fmt.Errorf("failed to rotate token: %w", err)
		}
		p, err := as.issueTokens(ctx, tx, observer)
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (as *authService) Logout(ctx context.Context, accessToken string) error {
	stored, err := as.tokens.GetByAccessToken(ctx, nil, accessToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	return as.tokens.DeleteByObserverID(ctx, nil, stored.ObserverID)
}

// ContextFromToken verifies a bearer token and returns a context
// carrying the observer identity and role.
func (as *authService) ContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(as.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return ctx, apperrors.ErrUnauthorized
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return ctx, apperrors.ErrUnauthorized
	}
	observerID, err := uuid.Parse(sub)
	if err != nil {
		return ctx, apperrors.ErrUnauthorized
	}

	ctx = requestdata.WithObserverID(ctx, observerID)
	if role, ok := claims["role"].(string); ok {
		ctx = requestdata.WithRole(ctx, role)
	}
	return ctx, nil
}

func (as *authService) issueTokens(ctx context.Context, tx *gorm.DB, observer *types.Observer) (*TokenPair, error) {
	now := time.Now()
	accessClaims := jwt.MapClaims{
		"sub":  observer.ID.String(),
		"role": observer.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(as.accessTTL).Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(as.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshClaims := jwt.MapClaims{
		"sub": observer.ID.String(),
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(as.refreshTTL).Unix(),
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(as.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	record := &types.ObserverToken{
		ID:           uuid.New(),
		ObserverID:   observer.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(as.refreshTTL),
		CreatedAt:    now,
	}
	if _, err := as.tokens.Create(ctx, tx, record); err != nil {
		return nil, fmt.Errorf("failed to persist token pair: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
