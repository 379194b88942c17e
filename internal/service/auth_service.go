package service

import (
	"context"
	"fmt"
	"strings"

	"cafebook/internal/apierror"
	"cafebook/internal/auth"
	"cafebook/internal/dto"
	"cafebook/internal/model"
	"cafebook/internal/repository"
	"cafebook/internal/worker"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	ChangePassword(ctx context.Context, phone string, req dto.ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) error
	VerifyOTP(ctx context.Context, req dto.VerifyOTPRequest) (bool, error)
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error
}

// OTPStore is satisfied by *infra.OTPStore.
type OTPStore interface {
	Issue(ctx context.Context, phone, email string) (string, error)
	Check(ctx context.Context, phone, email, code string) (bool, error)
	Consume(ctx context.Context, phone, email, code string) (bool, error)
}

// EmailQueue is satisfied by *worker.Dispatcher.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, payload worker.EmailJobPayload) error
}

type authService struct {
	repo   repository.EmployeeRepository
	tokens *auth.TokenService
	otps   OTPStore
	emails EmailQueue
}

func NewAuthService(repo repository.EmployeeRepository, tokens *auth.TokenService, otps OTPStore, emails EmailQueue) AuthService {
	return &authService{repo: repo, tokens: tokens, otps: otps, emails: emails}
}

// Login returns NotFound(account) for an unknown phone and AuthError for a
// wrong password.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	cred, err := s.repo.FindCredential(ctx, req.Phone)
	if repository.IsNotFound(err) {
		log.Warn().Str("phone", req.Phone).Msg("login: unknown account")
		return nil, apierror.NotFound(apierror.EntityAccount, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("find credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn().Str("phone", req.Phone).Msg("login: wrong password")
		return nil, &apierror.AuthError{Reason: apierror.AuthBadCredentials}
	}

	emp, err := s.repo.FindByPhone(ctx, req.Phone)
	if repository.IsNotFound(err) {
		return nil, apierror.NotFound(apierror.EntityEmployee, req.Phone)
	}
	if err != nil {
		return nil, fmt.Errorf("find employee: %w", err)
	}
	if !emp.Active {
		return nil, &apierror.AuthError{Reason: apierror.AuthBadCredentials}
	}

	log.Info().Uint("employee_id", emp.ID).Msg("login: success")
	return s.issue(emp)
}

// Refresh exchanges a valid refresh token for a new pair. The employee is
// reloaded so role changes and deactivation take effect.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != auth.KindRefresh {
		return nil, &apierror.AuthError{Reason: apierror.AuthWrongType}
	}

	emp, err := s.repo.FindByPhone(ctx, claims.Phone)
	if repository.IsNotFound(err) {
		return nil, apierror.NotFound(apierror.EntityAccount, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("find employee: %w", err)
	}
	if !emp.Active {
		return nil, &apierror.AuthError{Reason: apierror.AuthBadCredentials}
	}
	return s.issue(emp)
}

func (s *authService) ChangePassword(ctx context.Context, phone string, req dto.ChangePasswordRequest) error {
	cred, err := s.repo.FindCredential(ctx, phone)
	if repository.IsNotFound(err) {
		return apierror.NotFound(apierror.EntityAccount, nil)
	}
	if err != nil {
		return fmt.Errorf("find credential: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.OldPassword)); err != nil {
		return &apierror.AuthError{Reason: apierror.AuthBadCredentials}
	}
	return s.setPassword(ctx, phone, req.NewPassword)
}

// ForgotPassword mails a 6-digit OTP when phone and email belong to the same
// employee.
func (s *authService) ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) error {
	emp, err := s.repo.FindByPhone(ctx, req.Phone)
	if repository.IsNotFound(err) {
		return apierror.NotFound(apierror.EntityAccount, nil)
	}
	if err != nil {
		return fmt.Errorf("find employee: %w", err)
	}
	if emp.Email == nil || !strings.EqualFold(*emp.Email, req.Email) {
		return apierror.NotFound(apierror.EntityAccount, nil)
	}

	code, err := s.otps.Issue(ctx, req.Phone, req.Email)
	if err != nil {
		return fmt.Errorf("issue otp: %w", err)
	}
	err = s.emails.EnqueueEmail(ctx, worker.EmailJobPayload{
		ToEmail: req.Email,
		Subject: "Mã OTP đặt lại mật khẩu CafeBook",
		Body:    fmt.Sprintf("Mã OTP của bạn là %s. Mã có hiệu lực trong 5 phút.", code),
	})
	if err != nil {
		return fmt.Errorf("enqueue otp email: %w", err)
	}
	log.Info().Uint("employee_id", emp.ID).Msg("forgot_password: otp issued")
	return nil
}

func (s *authService) VerifyOTP(ctx context.Context, req dto.VerifyOTPRequest) (bool, error) {
	return s.otps.Check(ctx, req.Phone, req.Email, req.OTP)
}

// ResetPassword consumes the OTP; a code can be used once.
func (s *authService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	ok, err := s.otps.Consume(ctx, req.Phone, req.Email, req.OTP)
	if err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	if !ok {
		return apierror.Invalid(apierror.BadInput, "otp", "Mã OTP không hợp lệ hoặc đã hết hạn")
	}
	return s.setPassword(ctx, req.Phone, req.NewPassword)
}

func (s *authService) setPassword(ctx context.Context, phone, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	err = s.repo.UpdatePassword(ctx, phone, string(hash))
	if repository.IsNotFound(err) {
		return apierror.NotFound(apierror.EntityAccount, nil)
	}
	return err
}

func (s *authService) issue(emp *model.Employee) (*dto.LoginResponse, error) {
	pair, err := s.tokens.IssuePair(auth.Identity{
		EmployeeID: emp.ID,
		Phone:      emp.Phone,
		Name:       emp.Name,
		RoleID:     emp.RoleID,
	})
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &dto.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    pair.ExpiresIn,
		Employee:     toEmployeeResponse(emp),
	}, nil
}
