package server

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"chirp/models"
	"chirp/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
	otpTTL          = 24 * time.Hour
)

type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an unverified account and mails a one-time verification
// code. Registration never logs the user in; login requires a verified email.
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if err := validation.ValidateName(req.Name); err != nil {
		return models.RespondWithError(c, models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateUsername(req.Username); err != nil {
		return models.RespondWithError(c, models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, models.NewValidationError(err.Error()))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	code, err := generateVerificationCode()
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	expires := time.Now().Add(otpTTL)

	user := models.User{
		Name:                req.Name,
		Username:            req.Username,
		Email:               req.Email,
		Password:            string(hashed),
		VerificationToken:   code,
		VerificationExpires: &expires,
	}
	if err := s.userRepo.Create(c.Context(), &user); err != nil {
		return models.RespondWithError(c, err)
	}

	go s.mailer.SendVerificationCode(user.Email, code)

	return models.SuccessMessage(c, fiber.StatusCreated,
		"Account created. Check your email for the verification code")
}

// VerifyEmail redeems the one-time code mailed at registration.
func (s *Server) VerifyEmail(c *fiber.Ctx) error {
	var req verifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Code = strings.TrimSpace(req.Code)
	if req.Email == "" || req.Code == "" {
		return models.RespondWithError(c, models.NewValidationError("Email and code are required"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if user == nil || user.VerificationToken == "" || user.VerificationToken != req.Code {
		return models.RespondWithError(c, models.NewValidationError("Invalid verification code"))
	}
	if user.VerificationExpires == nil || time.Now().After(*user.VerificationExpires) {
		return models.RespondWithError(c, models.NewValidationError("Verification code has expired"))
	}
	if user.EmailVerified {
		return models.SuccessMessage(c, fiber.StatusOK, "Email already verified")
	}

	err = s.userRepo.UpdateFields(c.Context(), user.ID, map[string]any{
		"email_verified":       true,
		"verification_token":   "",
		"verification_expires": nil,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.SuccessMessage(c, fiber.StatusOK, "Email verified. You can now log in")
}

// Login verifies credentials and issues the access/refresh token pair as
// HTTP-only cookies. The tokens are also returned in the body for non-browser
// clients.
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, models.NewValidationError("Email and password are required"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	// A missing account and a wrong password produce the same response.
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return models.RespondWithError(c, models.NewUnauthorizedError("Invalid email or password"))
	}
	if !user.EmailVerified {
		return models.RespondWithError(c, models.NewForbiddenError("Email not verified"))
	}

	return s.issueSession(c, user)
}

// Refresh rotates the refresh token: the presented token is revoked and a new
// pair is issued.
func (s *Server) Refresh(c *fiber.Ctx) error {
	tokenString := c.Cookies("refreshToken")
	if tokenString == "" {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.BodyParser(&body); err == nil {
			tokenString = body.RefreshToken
		}
	}
	if tokenString == "" {
		return models.RespondWithError(c, models.NewUnauthorizedError("Refresh token required"))
	}

	userID, err := s.parseAccessToken(tokenString)
	if err != nil {
		return models.RespondWithError(c, models.NewUnauthorizedError("Invalid or expired refresh token"))
	}

	valid, err := s.tokenRepo.IsValid(c.Context(), tokenString)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if !valid {
		return models.RespondWithError(c, models.NewUnauthorizedError("Invalid or expired refresh token"))
	}

	if err := s.tokenRepo.Revoke(c.Context(), tokenString); err != nil {
		return models.RespondWithError(c, err)
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return s.issueSession(c, user)
}

// Logout revokes the refresh token and clears the session cookies.
func (s *Server) Logout(c *fiber.Ctx) error {
	if tokenString := c.Cookies("refreshToken"); tokenString != "" {
		if err := s.tokenRepo.Revoke(c.Context(), tokenString); err != nil {
			s.log.Error("refresh token revoke failed", "error", err)
		}
	}

	s.clearSessionCookies(c)
	return models.SuccessMessage(c, fiber.StatusOK, "Logged out")
}

// GetMe returns the authenticated user's own account.
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Success(c, fiber.StatusOK, user)
}

func (s *Server) issueSession(c *fiber.Ctx, user *models.User) error {
	accessToken, err := s.signToken(user.ID, accessTokenTTL)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	refreshToken, err := s.signToken(user.ID, refreshTokenTTL)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	if err := s.tokenRepo.Store(c.Context(), user.ID, refreshToken, time.Now().Add(refreshTokenTTL)); err != nil {
		return models.RespondWithError(c, err)
	}

	s.setSessionCookies(c, accessToken, refreshToken)

	return models.Success(c, fiber.StatusOK, fiber.Map{
		"user":          user,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (s *Server) signToken(userID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": tokenIssuer,
		"aud": tokenAudience,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"jti": uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func (s *Server) setSessionCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     "accessToken",
		Value:    accessToken,
		Expires:  time.Now().Add(accessTokenTTL),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refreshToken",
		Value:    refreshToken,
		Expires:  time.Now().Add(refreshTokenTTL),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/api/auth",
	})
}

func (s *Server) clearSessionCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	c.Cookie(&fiber.Cookie{Name: "accessToken", Value: "", Expires: expired, HTTPOnly: true, Path: "/"})
	c.Cookie(&fiber.Cookie{Name: "refreshToken", Value: "", Expires: expired, HTTPOnly: true, Path: "/api/auth"})
}

// generateVerificationCode returns a 6-digit numeric one-time code.
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
