package auth

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/meeplehaven/boardshelf/cache"
	"github.com/meeplehaven/boardshelf/config"
	"github.com/meeplehaven/boardshelf/middleware"
	"github.com/meeplehaven/boardshelf/model"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateEmail is returned when registering an email that is taken.
	ErrDuplicateEmail = errors.New("auth: email already registered")
	// ErrUnknownEmail is returned when no account matches the email.
	ErrUnknownEmail = errors.New("auth: unknown email")
	// ErrBadPassword is returned when the password hash does not verify.
	ErrBadPassword = errors.New("auth: wrong password")
)

// Service verifies credentials and manages server-side sessions.
type Service struct {
	db     *gorm.DB
	store  cache.Cache
	sec    config.SecurityConfig
	app    config.AppConfig
	logger *zap.Logger
}

// New creates an auth Service.
func New(db *gorm.DB, store cache.Cache, sec config.SecurityConfig, app config.AppConfig, logger *zap.Logger) *Service {
	return &Service{db: db, store: store, sec: sec, app: app, logger: logger}
}

// Register creates a new account with a bcrypt password hash and the
// default avatar. Emails are matched exactly as stored.
func (s *Service) Register(email, name, password string) (*model.Account, error) {
	var existing model.Account
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cost := s.sec.BcryptCost
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}

	avatar := s.app.DefaultAvatarURL
	if avatar == "" {
		avatar = model.DefaultAvatarURL
	}
	acc := &model.Account{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		AvatarURL:    avatar,
	}
	if err := s.db.Create(acc).Error; err != nil {
		// Unique constraint violation: a concurrent request registered
		// the same email between the check and the insert.
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return acc, nil
}

// Login verifies the credential pair and returns the matching account.
func (s *Service) Login(email, password string) (*model.Account, error) {
	var acc model.Account
	err := s.db.Where("email = ?", email).First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownEmail
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadPassword
	}
	return &acc, nil
}

// EstablishSession issues a signed session token and records it server-side.
// The cache entry's TTL is the session idle expiry.
func (s *Service) EstablishSession(ctx context.Context, accountID int64) (string, error) {
	token, err := middleware.GenerateToken(accountID, s.sec.SessionSecret, s.sec.SessionTTL)
	if err != nil {
		return "", err
	}
	key := middleware.SessionKey(token)
	if err := s.store.Set(ctx, key, strconv.FormatInt(accountID, 10), s.sec.SessionTTL); err != nil {
		return "", err
	}
	return token, nil
}

// DestroySession tears down the session unconditionally. It succeeds even
// if no session existed.
func (s *Service) DestroySession(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.store.Del(ctx, middleware.SessionKey(token)); err != nil {
		s.logger.Warn("session delete failed", zap.Error(err))
	}
}

// AccountByID returns the account for a bound session identity.
func (s *Service) AccountByID(id int64) (*model.Account, error) {
	var acc model.Account
	if err := s.db.First(&acc, id).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

// isUniqueViolation detects duplicate-key errors from common database drivers.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "already exists")
}
