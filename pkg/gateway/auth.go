package gateway

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/itsneelabh/campusbite/pkg/models"
)

var (
	phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
	otpPattern   = regexp.MustCompile(`^\d{6}$`)
)

// LoginResponse acknowledges an OTP request. Development backends may echo
// the code in OTP.
type LoginResponse struct {
	Message string `json:"message"`
	OTP     string `json:"otp,omitempty"`
}

// ValidatePhone checks a 10-digit mobile number starting with 6-9
func ValidatePhone(phone string) error {
	return validatePhone("ValidatePhone", phone)
}

// ValidateOTP checks a 6-digit code
func ValidateOTP(otp string) error {
	return validateOTP("ValidateOTP", otp)
}

func validatePhone(op, phone string) error {
	if !phonePattern.MatchString(phone) {
		return &ValidationError{Op: op, Field: "phone", Err: ErrInvalidPhone}
	}
	return nil
}

func validateOTP(op, otp string) error {
	if !otpPattern.MatchString(otp) {
		return &ValidationError{Op: op, Field: "otp", Err: ErrInvalidOTP}
	}
	return nil
}

// RequestOTP asks the backend to send a one-time code to phone
func (c *Client) RequestOTP(ctx context.Context, phone string) (*LoginResponse, error) {
	if err := validatePhone("RequestOTP", phone); err != nil {
		return nil, err
	}

	var out LoginResponse
	err := c.do(ctx, request{
		op:     "RequestOTP",
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"phone": phone},
		public: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyOTP exchanges a code for a bearer token and starts the session
func (c *Client) VerifyOTP(ctx context.Context, phone, otp string) (*models.AuthResponse, error) {
	if err := validatePhone("VerifyOTP", phone); err != nil {
		return nil, err
	}
	if err := validateOTP("VerifyOTP", otp); err != nil {
		return nil, err
	}

	var out models.AuthResponse
	err := c.do(ctx, request{
		op:     "VerifyOTP",
		method: http.MethodPost,
		path:   "/auth/verify-otp",
		body:   map[string]string{"phone": phone, "otp": otp},
		public: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, &APIError{Op: "VerifyOTP", StatusCode: http.StatusOK, Message: "response carried no token"}
	}
	if out.User.Phone == "" {
		out.User.Phone = phone
	}

	if err := c.creds.Begin(ctx, out.Token, out.User); err != nil {
		return nil, fmt.Errorf("VerifyOTP: %w", err)
	}
	c.logger.Info("Signed in", map[string]interface{}{"user_id": out.User.ID})
	return &out, nil
}

// Logout clears the local session. The backend keeps no logout endpoint.
func (c *Client) Logout(ctx context.Context) error {
	return c.creds.End(ctx)
}

// CurrentUser returns the signed-in profile, or nil
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	return c.creds.User(ctx)
}

// IsAuthenticated reports whether a bearer token is stored
func (c *Client) IsAuthenticated(ctx context.Context) (bool, error) {
	token, err := c.creds.Token(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}
