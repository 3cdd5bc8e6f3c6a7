package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/masterchef/backend/internal/apperrors"
	"github.com/pageza/masterchef/backend/internal/models"
	"github.com/pageza/masterchef/backend/internal/session"
	"github.com/pageza/masterchef/backend/pkg/types"
)

// MinPasswordLength is the shortest password sign-up accepts
const MinPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

var validate = validator.New()

// Session is an issued bearer token and the identity it carries
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      types.Identity
}

// AuthService issues and revokes bearer tokens for email/password users
type AuthService struct {
	db        *gorm.DB
	profiles  IProfileService
	store     session.Store
	jwtSecret []byte
	tokenTTL  time.Duration
	metrics   *Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// Ensure AuthService implements IAuthService
var _ IAuthService = (*AuthService)(nil)

func NewAuthService(db *gorm.DB, profiles IProfileService, store session.Store, jwtSecret string, tokenTTL time.Duration, metrics *Metrics, logger *zap.Logger) *AuthService {
	return &AuthService{
		db:        db,
		profiles:  profiles,
		store:     store,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// SignUp creates a credential and then its profile. A failed profile write
// does not undo the credential; the user can still sign in.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, apperrors.New(apperrors.InvalidRequest, "a valid email address is required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperrors.New(apperrors.InvalidRequest,
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if count > 0 {
		return nil, apperrors.New(apperrors.Conflict, "an account with this email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.New(apperrors.Conflict, "an account with this email already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.metrics.signedUp()

	if _, err := s.profiles.CreateProfile(ctx, user.ID, email); err != nil {
		s.logger.Error("profile creation failed after sign-up",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
	}

	return s.issue(ctx, user)
}

// SignIn checks the password and issues a new token
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.NotAuthenticated, "invalid email or password", ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Wrap(apperrors.NotAuthenticated, "invalid email or password", ErrInvalidCredentials)
	}

	return s.issue(ctx, &user)
}

// SignOut revokes the token until it would have expired and notifies
// the user's session subscribers
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	claims, err := s.ValidateToken(token)
	if err != nil {
		return err
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.store.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	if err := s.store.Publish(ctx, session.Event{
		Type:   session.SignedOut,
		UserID: claims.UserID,
		At:     s.now(),
	}); err != nil {
		s.logger.Warn("failed to publish sign-out", zap.Error(err))
	}
	s.logger.Info("user signed out", zap.String("user_id", claims.UserID.String()))
	return nil
}

// Refresh exchanges a valid token for a new one with a full lifetime and
// revokes the old one. The identity is unchanged so no event is published.
func (s *AuthService) Refresh(ctx context.Context, token string) (*Session, error) {
	claims, err := s.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.WithContext(ctx).Where("id = ?", claims.UserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.NotAuthenticated, "invalid or expired session", ErrInvalidToken)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	sess, err := s.sign(&user)
	if err != nil {
		return nil, err
	}

	if err := s.store.Revoke(ctx, claims.ID, claims.ExpiresAt.Time.Sub(s.now())); err != nil {
		return nil, fmt.Errorf("failed to revoke token: %w", err)
	}
	s.logger.Info("session refreshed", zap.String("user_id", user.ID.String()))
	return sess, nil
}

// ValidateToken parses a bearer token and rejects revoked ones
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || claims.UserID == uuid.Nil {
		return nil, apperrors.Wrap(apperrors.NotAuthenticated, "invalid or expired session", ErrInvalidToken)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	revoked, err := s.store.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, apperrors.Wrap(apperrors.NotAuthenticated, "session has ended", ErrTokenRevoked)
	}

	return claims, nil
}

// Subscribe streams session events for userID
func (s *AuthService) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan session.Event, func()) {
	return s.store.Subscribe(ctx, userID)
}

// issue signs a new token and announces the sign-in
func (s *AuthService) issue(ctx context.Context, user *models.User) (*Session, error) {
	sess, err := s.sign(user)
	if err != nil {
		return nil, err
	}

	identity := sess.User
	if err := s.store.Publish(ctx, session.Event{
		Type:     session.SignedIn,
		UserID:   user.ID,
		Identity: &identity,
		At:       s.now(),
	}); err != nil {
		s.logger.Warn("failed to publish sign-in", zap.Error(err))
	}
	return sess, nil
}

func (s *AuthService) sign(user *models.User) (*Session, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:   user.ID,
		Email:    user.Email,
		Username: UsernameFromEmail(user.Email),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Session{Token: token, ExpiresAt: expiresAt, User: claims.Identity()}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
