// Package services contains server-side business logic. AuthService handles
// registration and the email one-time code flow that ends in a session;
// NoteService handles owner-scoped note CRUD.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/notify"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/otps"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const defaultBcryptCost = 12

// Messages returned to clients for rejected input.
const (
	MsgRequiredSignUpFields = "Please fill in all required fields (name, email, and password)."
	MsgPasswordTooShort     = "Password must be at least 6 characters long."
	MsgInvalidEmail         = "Please provide a valid email address."
	MsgEmailRequired        = "Please provide an email address."
	MsgEmailAndCodeRequired = "Please provide both email and verification code."
)

// Session is the outcome of a successful code verification.
type Session struct {
	Token     string
	ExpiresAt time.Time
	UserID    string
	User      models.UserView
}

type registerInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// AuthService issues and verifies one-time codes and registers users.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codes       otps.Store
	notifier    notify.Notifier
	sessions    *auth.SessionManager
	metrics     *Metrics
	logger      logging.Logger
	validate    *validator.Validate

	codeValidity   time.Duration
	storageTimeout time.Duration
	notifyTimeout  time.Duration
	bcryptCost     int

	now      func() time.Time
	generate func() (string, error)
}

// NewAuthService wires an AuthService from its collaborators and config.
func NewAuthService(
	db *sql.DB,
	m repomanager.RepositoryManager,
	codes otps.Store,
	notifier notify.Notifier,
	sessions *auth.SessionManager,
	cfg *config.Config,
	metrics *Metrics,
	logger logging.Logger,
) *AuthService {
	return &AuthService{
		db:             db,
		repomanager:    m,
		codes:          codes,
		notifier:       notifier,
		sessions:       sessions,
		metrics:        metrics,
		logger:         logger,
		validate:       validator.New(),
		codeValidity:   cfg.OTPValidity,
		storageTimeout: cfg.StorageTimeout,
		notifyTimeout:  cfg.NotifyTimeout,
		bcryptCost:     defaultBcryptCost,
		now:            time.Now,
		generate: func() (string, error) {
			return common.RandomDigits(nil, common.CodeDigits)
		},
	}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user and returns it. A taken email yields
// common.ErrorAlreadyExists.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	in := registerInput{Name: strings.TrimSpace(name), Email: NormalizeEmail(email), Password: password}
	if err := s.validateRegister(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}

	var user *models.User
	err = dbx.WithTimeout(ctx, s.storageTimeout, func(ctx context.Context) error {
		var err error
		user, err = s.repomanager.Users(s.db).Create(ctx, &models.User{
			Name:         in.Name,
			Email:        in.Email,
			PasswordHash: hash,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, fmt.Errorf("register %s: %w", in.Email, common.ErrorAlreadyExists)
		}
		return nil, fmt.Errorf("%w: create user: %v", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) validateRegister(in registerInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return common.NewValidationError(MsgRequiredSignUpFields)
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return common.NewValidationError(MsgRequiredSignUpFields)
		}
	}
	switch verrs[0].Field() {
	case "Password":
		return common.NewValidationError(MsgPasswordTooShort)
	default:
		return common.NewValidationError(MsgInvalidEmail)
	}
}

// RequestCode replaces any pending code for a registered email with a fresh
// one and hands it to the notifier. If delivery fails the stored code stays;
// the caller sees common.ErrorDispatch.
func (s *AuthService) RequestCode(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return common.NewValidationError(MsgEmailRequired)
	}

	if _, err := s.lookupUser(ctx, email); err != nil {
		return err
	}

	code, err := s.generate()
	if err != nil {
		return fmt.Errorf("%w: generate code: %v", common.ErrorInternal, err)
	}

	otp := &models.OneTimeCode{
		Email:     email,
		Code:      code,
		ExpiresAt: s.now().Add(s.codeValidity),
	}
	err = dbx.WithTimeout(ctx, s.storageTimeout, func(ctx context.Context) error {
		return s.codes.Replace(ctx, otp)
	})
	if err != nil {
		return fmt.Errorf("%w: store code: %v", common.ErrorInternal, err)
	}

	err = dbx.WithTimeout(ctx, s.notifyTimeout, func(ctx context.Context) error {
		return s.notifier.SendCode(ctx, notify.Message{To: email, Code: code, ExpiresAt: otp.ExpiresAt})
	})
	if err != nil {
		s.metrics.DispatchFailures.Inc()
		s.logger.Error(ctx, "code dispatch failed", "email", email, "error", err)
		return fmt.Errorf("%w: %v", common.ErrorDispatch, err)
	}

	s.metrics.CodesIssued.Inc()
	s.logger.Info(ctx, "verification code issued", "email", email)
	return nil
}

// VerifyCode consumes the code for email and, when it is valid, mints a
// session. A code is consumed whether it turns out valid or expired, so it
// can never be used twice.
func (s *AuthService) VerifyCode(ctx context.Context, email, code string) (*Session, error) {
	email = NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, common.NewValidationError(MsgEmailAndCodeRequired)
	}

	var otp *models.OneTimeCode
	err := dbx.WithTimeout(ctx, s.storageTimeout, func(ctx context.Context) error {
		var err error
		otp, err = s.codes.Consume(ctx, email, code)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.metrics.Verifications.WithLabelValues(ResultInvalid).Inc()
			return nil, common.ErrCodeInvalid
		}
		s.metrics.Verifications.WithLabelValues(ResultError).Inc()
		return nil, fmt.Errorf("%w: consume code: %v", common.ErrorInternal, err)
	}

	if otp.Expired(s.now()) {
		s.metrics.Verifications.WithLabelValues(ResultExpired).Inc()
		return nil, common.ErrCodeExpired
	}

	user, err := s.lookupUser(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.metrics.Verifications.WithLabelValues(ResultUnknownUser).Inc()
		} else {
			s.metrics.Verifications.WithLabelValues(ResultError).Inc()
		}
		return nil, err
	}

	token, err := s.sessions.Issue(auth.Identity{UserID: user.ID, Email: user.Email, Name: user.Name})
	if err != nil {
		s.metrics.Verifications.WithLabelValues(ResultError).Inc()
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	s.metrics.Verifications.WithLabelValues(ResultOK).Inc()
	s.logger.Info(ctx, "session issued", "user_id", user.ID)
	return &Session{
		Token:     token,
		ExpiresAt: s.now().Add(s.sessions.Validity()),
		UserID:    user.ID,
		User:      user.View(),
	}, nil
}

func (s *AuthService) lookupUser(ctx context.Context, email string) (*models.User, error) {
	var user *models.User
	err := dbx.WithTimeout(ctx, s.storageTimeout, func(ctx context.Context) error {
		var err error
		user, err = s.repomanager.Users(s.db).GetByEmail(ctx, email)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("user %s: %w", email, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("%w: lookup user: %v", common.ErrorInternal, err)
	}
	return user, nil
}
