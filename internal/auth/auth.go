// Package auth is the account collaborator: signup, login and the per-session
// logged-in flag that gates the habit engine.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"lifequest/internal/config"
	"lifequest/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials, please try again")
	ErrUsernameTaken      = errors.New("an account with that username already exists")
)

// SignupError reports rejected signup input.
type SignupError struct {
	Reason string
}

func (e *SignupError) Error() string { return e.Reason }

type SignupInput struct {
	Username        string `json:"username"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type Service struct {
	accounts    *storage.AccountRepo
	emailDomain string
	cost        int
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(db *sql.DB, cfg config.AuthConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		accounts:    storage.NewAccountRepo(db),
		emailDomain: strings.ToLower(strings.TrimSpace(cfg.EmailDomain)),
		cost:        cost,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Accounts() *storage.AccountRepo { return s.accounts }

func (s *Service) validateSignup(in SignupInput) error {
	if in.Password != in.ConfirmPassword {
		return &SignupError{Reason: "passwords do not match"}
	}
	if s.emailDomain != "" && !strings.HasSuffix(strings.ToLower(in.Username), s.emailDomain) {
		return &SignupError{Reason: fmt.Sprintf("enter a valid address ending in %s", s.emailDomain)}
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return &SignupError{Reason: "first name and last name cannot be empty"}
	}
	return nil
}

// Signup validates the input and creates the account.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*storage.Account, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := s.validateSignup(in); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, &SignupError{Reason: "password cannot be used: " + err.Error()}
	}
	acct := &storage.Account{
		Username:     in.Username,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.accounts.Create(ctx, acct); err != nil {
		if errors.Is(err, storage.ErrAccountExists) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	s.logger.Info("account created", zap.String("username", acct.Username))
	return acct, nil
}

// Login checks the credentials and records the login time.
func (s *Service) Login(ctx context.Context, username, password string) (*storage.Account, error) {
	acct, err := s.accounts.Get(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)); err != nil {
		s.logger.Debug("login rejected", zap.String("username", acct.Username))
		return nil, ErrInvalidCredentials
	}
	now := s.now()
	if err := s.accounts.TouchLogin(ctx, acct.Username, now); err != nil {
		return nil, err
	}
	acct.LastLoginAt = &now
	return acct, nil
}

// Gate is the logged-in flag of one session.
type Gate struct {
	svc *Service

	mu      sync.RWMutex
	account *storage.Account
}

func NewGate(svc *Service) *Gate {
	return &Gate{svc: svc}
}

func (g *Gate) IsLoggedIn() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.account != nil
}

// Account returns the logged-in account, or nil.
func (g *Gate) Account() *storage.Account {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.account
}

func (g *Gate) Signup(ctx context.Context, in SignupInput) (*storage.Account, error) {
	acct, err := g.svc.Signup(ctx, in)
	if err != nil {
		return nil, err
	}
	g.set(acct)
	return acct, nil
}

func (g *Gate) Login(ctx context.Context, username, password string) (*storage.Account, error) {
	acct, err := g.svc.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	g.set(acct)
	return acct, nil
}

func (g *Gate) Logout() {
	g.set(nil)
}

func (g *Gate) set(acct *storage.Account) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.account = acct
}
