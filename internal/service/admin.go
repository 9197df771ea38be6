package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nis2meetu/paymongo-server/internal/domain"
	"github.com/nis2meetu/paymongo-server/pkg/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCodeNotFound       = errors.New("no verification code found")
	ErrCodeExpired        = errors.New("verification code expired")
	ErrCodeMismatch       = errors.New("incorrect verification code")
)

// RolePasswordReset is the role carried by the short-lived token minted
// when a verification code checks out. It is accepted only by the
// change-password route, and only for the account it names.
const RolePasswordReset = "password_reset"

type AdminStore interface {
	ByEmail(ctx context.Context, email string) (*domain.AdminUser, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	SaveCode(ctx context.Context, c *domain.VerificationCode) error
	CodeByUser(ctx context.Context, userID string) (*domain.VerificationCode, error)
	DeleteCode(ctx context.Context, userID string) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Admin handles the back-office account: login, password reset via emailed
// verification codes. Codes are stored as expiring rows so any instance, or
// a restarted one, can verify a code another instance issued.
type Admin struct {
	store     AdminStore
	mailer    Mailer
	adminMail string // fixed receiver for reset codes; account email when empty
	codeTTL   time.Duration
	tokenTTL  time.Duration
	log       *zap.Logger
}

func NewAdmin(store AdminStore, mailer Mailer, adminMail string, codeTTL, tokenTTL time.Duration, log *zap.Logger) *Admin {
	return &Admin{store: store, mailer: mailer, adminMail: adminMail, codeTTL: codeTTL, tokenTTL: tokenTTL, log: log}
}

func (s *Admin) Login(ctx context.Context, email, password string) (string, *domain.AdminUser, error) {
	u, err := s.store.ByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	role := u.Role
	if role == "" {
		role = "user"
	}
	token, err := auth.CreateAccessToken(u.ID, role, u.Email, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// SendVerificationCode issues a fresh 6-digit code for the account and mails
// it. The previous code, if any, stops working immediately.
func (s *Admin) SendVerificationCode(ctx context.Context, email string) error {
	u, err := s.store.ByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := sixDigitCode()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	rec := &domain.VerificationCode{
		UserID:    u.ID,
		Code:      code,
		ExpiresAt: now.Add(s.codeTTL),
		CreatedAt: now,
	}
	if err := s.store.SaveCode(ctx, rec); err != nil {
		return err
	}

	to := s.adminMail
	if to == "" {
		to = u.Email
	}
	body := fmt.Sprintf("Hello! Your verification code is: %s", code)
	if err := s.mailer.Send(ctx, to, "Admin Password Reset Verification Code", body); err != nil {
		return err
	}
	s.log.Info("verification code sent", zap.String("user_id", u.ID))
	return nil
}

// VerifyCode checks expiry on read and burns the code on success. The
// returned reset token authorizes ChangePassword for the same account,
// for as long as the code itself would have lived.
func (s *Admin) VerifyCode(ctx context.Context, email, code string) (string, error) {
	u, err := s.store.ByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", err
	}

	rec, err := s.store.CodeByUser(ctx, u.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", err
	}
	if rec.Expired(time.Now().UTC()) {
		_ = s.store.DeleteCode(ctx, u.ID)
		return "", ErrCodeExpired
	}
	if rec.Code != code {
		return "", ErrCodeMismatch
	}
	if err := s.store.DeleteCode(ctx, u.ID); err != nil {
		return "", err
	}
	return auth.CreateAccessToken(u.ID, RolePasswordReset, u.Email, s.codeTTL)
}

func (s *Admin) ChangePassword(ctx context.Context, email, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := s.store.ByEmail(ctx, email); err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, email, string(hash))
}

func sixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
