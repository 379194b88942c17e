package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Phone    string `json:"phone"    validate:"required,numeric,min=9,max=15"`
	Password string `json:"password" validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,nefield=OldPassword"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,numeric,min=9,max=15"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,numeric,min=9,max=15"`
	OTP   string `json:"otp"   validate:"required,len=6,numeric"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	Phone       string `json:"phone"        validate:"required,numeric,min=9,max=15"`
	OTP         string `json:"otp"          validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LoginResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	TokenType    string           `json:"token_type"`
	ExpiresIn    int              `json:"expires_in"` // seconds
	Employee     EmployeeResponse `json:"employee"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type VerifyOTPResponse struct {
	Valid bool `json:"valid"`
}
