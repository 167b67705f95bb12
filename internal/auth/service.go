// Package auth implements registration with email OTP verification, login and
// the current-user lookup.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobtracker-backend/internal/shared/apperr"
	sharedauth "jobtracker-backend/internal/shared/auth"
	"jobtracker-backend/internal/shared/mail"
	"jobtracker-backend/internal/shared/metrics"
	"jobtracker-backend/internal/shared/otp"
	"jobtracker-backend/internal/shared/telemetry"
	"jobtracker-backend/internal/users"
)

const (
	msgEmailTaken      = "User already exists with this email"
	msgInvalidOTP      = "Invalid or expired OTP"
	msgInvalidLogin    = "Invalid email or password"
	msgNotVerified     = "Please verify your email before logging in"
	msgAlreadyVerified = "Account is already verified"
	msgUserNotFound    = "User not found"
	msgPasswordTooLong = "Password must be at most 72 bytes"
)

// TokenIssuer signs session tokens for a user id.
type TokenIssuer interface {
	Sign(userID string) (string, error)
}

// Service runs the account verification and login flows.
type Service struct {
	Users  users.Repo
	Tokens TokenIssuer
	Mailer mail.Sender
	Now    func() time.Time
	// NewCode generates OTP codes; defaults to otp.Generate.
	NewCode func() string
}

// RegisterInput is a new account request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates an unverified account and mails its verification code.
// An address already on file is rejected whether or not it was verified.
func (s *Service) Register(ctx context.Context, in RegisterInput) (users.User, error) {
	email := users.NormalizeEmail(in.Email)
	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return users.User{}, apperr.Conflict(msgEmailTaken)
	} else if !errors.Is(err, users.ErrNotFound) {
		return users.User{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := sharedauth.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, sharedauth.ErrPasswordTooLong) {
			return users.User{}, apperr.Validation(msgPasswordTooLong,
				apperr.FieldError{Path: "password", Message: msgPasswordTooLong})
		}
		return users.User{}, fmt.Errorf("hash password: %w", err)
	}
	code := s.newCode()
	expires := otp.Expiry(s.now())

	user, err := s.Users.Create(ctx, users.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		OTPCode:      &code,
		OTPExpiresAt: &expires,
	})
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			return users.User{}, apperr.Conflict(msgEmailTaken)
		}
		return users.User{}, fmt.Errorf("create user: %w", err)
	}
	metrics.IncUsersRegistered()
	s.sendCode(ctx, user, code)
	return user, nil
}

// VerifyOTP marks the account verified and returns a session token. Every
// failure is reported the same way and leaves the account untouched.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (users.User, string, error) {
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return users.User{}, "", apperr.Unauthenticated(msgInvalidOTP)
		}
		return users.User{}, "", fmt.Errorf("lookup user: %w", err)
	}
	if user.IsVerified || !otp.Matches(user.OTPCode, strings.TrimSpace(code)) || otp.IsExpired(user.OTPExpiresAt, s.now()) {
		return users.User{}, "", apperr.Unauthenticated(msgInvalidOTP)
	}

	user.IsVerified = true
	user.OTPCode = nil
	user.OTPExpiresAt = nil
	user, err = s.Users.Update(ctx, user)
	if err != nil {
		return users.User{}, "", fmt.Errorf("update user: %w", err)
	}
	metrics.IncUsersVerified()

	token, err := s.Tokens.Sign(user.ID)
	if err != nil {
		return users.User{}, "", fmt.Errorf("sign token: %w", err)
	}
	return user, token, nil
}

// ResendOTP issues a fresh code for an unverified account.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return apperr.NotFound(msgUserNotFound)
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if user.IsVerified {
		return apperr.Validation(msgAlreadyVerified)
	}

	code := s.newCode()
	expires := otp.Expiry(s.now())
	user.OTPCode = &code
	user.OTPExpiresAt = &expires
	if _, err := s.Users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	s.sendCode(ctx, user, code)
	return nil
}

// Login checks credentials and returns a session token.
func (s *Service) Login(ctx context.Context, email, password string) (users.User, string, error) {
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			metrics.IncLoginFailed()
			return users.User{}, "", apperr.Unauthenticated(msgInvalidLogin)
		}
		return users.User{}, "", fmt.Errorf("lookup user: %w", err)
	}
	if !sharedauth.CheckPassword(user.PasswordHash, password) {
		metrics.IncLoginFailed()
		return users.User{}, "", apperr.Unauthenticated(msgInvalidLogin)
	}
	if !user.IsVerified {
		return users.User{}, "", apperr.Unauthenticated(msgNotVerified)
	}

	token, err := s.Tokens.Sign(user.ID)
	if err != nil {
		return users.User{}, "", fmt.Errorf("sign token: %w", err)
	}
	return user, token, nil
}

// Me returns the authenticated user.
func (s *Service) Me(ctx context.Context, userID string) (users.User, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return users.User{}, apperr.NotFound(msgUserNotFound)
		}
		return users.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// UserExists reports whether userID still has an account.
func (s *Service) UserExists(ctx context.Context, userID string) (bool, error) {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup user: %w", err)
	}
	return true, nil
}

// sendCode mails the code. Delivery failures are logged; the client can request a resend.
func (s *Service) sendCode(ctx context.Context, user users.User, code string) {
	metrics.IncOTPIssued()
	if s.Mailer == nil {
		return
	}
	if err := s.Mailer.Send(ctx, mail.OTPEmail(user.Email, user.Name, code)); err != nil {
		telemetry.Error("auth.otp_mail_failed", map[string]any{
			"user_id": user.ID,
			"error":   err.Error(),
		})
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Service) newCode() string {
	if s.NewCode == nil {
		return otp.Generate()
	}
	return s.NewCode()
}
