package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/matheus3301/pairchat/internal/conversation"
	"github.com/matheus3301/pairchat/internal/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

// Service registers participants and signs them in.
type Service struct {
	db     *store.DB
	authn  *Authenticator
	logger *zap.Logger
}

// NewService creates the account service.
func NewService(db *store.DB, authn *Authenticator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, authn: authn, logger: logger}
}

// Register validates the form and creates an account with a fresh
// participant id.
func (s *Service) Register(ctx context.Context, r Registration) (*conversation.Profile, error) {
	r = r.Normalize()
	if err := r.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acct := &store.Account{
		Profile: conversation.Profile{
			ID:       uuid.NewString(),
			FullName: r.FullName,
			Email:    r.Email,
			Phone:    r.Phone,
		},
		PasswordHash: string(hash),
	}
	if err := s.db.CreateAccount(ctx, acct); err != nil {
		if errors.Is(err, store.ErrProfileExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("participant registered", zap.String("participant", acct.Profile.ID))
	return &acct.Profile, nil
}

// Login checks the credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *conversation.Profile, error) {
	if err := ValidateLogin(email, password); err != nil {
		return "", nil, err
	}

	acct, err := s.db.GetAccountByEmail(ctx, email)
	if errors.Is(err, store.ErrProfileNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.authn.GenerateToken(acct.Profile.ID, acct.Profile.FullName)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, &acct.Profile, nil
}
