package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"creatorpulse/client"
	"creatorpulse/models"
	"creatorpulse/utils"

	"github.com/gofiber/fiber/v2"
)

// Identity labels the signed-in user for display.
type Identity struct {
	Email    string `json:"email"`
	SignedIn bool   `json:"signed_in"`
}

// NotSignedIn is returned when neither the token nor /users/me yields an identity.
var NotSignedIn = Identity{}

// AuthService exchanges credentials with the API and keeps the profile of
// each signed-in token in storage. A token without a stored profile is
// treated as signed out.
type AuthService struct {
	api      *client.Client
	profiles fiber.Storage
	ttl      time.Duration
}

func NewAuthService(api *client.Client, profiles fiber.Storage, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &AuthService{api: api, profiles: profiles, ttl: ttl}
}

func profileKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "profile:" + hex.EncodeToString(sum[:])
}

// ResolveIdentity never fails: decode errors fall through to /users/me, and
// a failing lookup yields NotSignedIn.
func (s *AuthService) ResolveIdentity(ctx context.Context, token string) Identity {
	if token == "" {
		return NotSignedIn
	}
	if email, ok := utils.DecodeIdentity(token); ok {
		return Identity{Email: email, SignedIn: true}
	}
	profile, err := s.api.Me(ctx, token)
	if err != nil || profile.Email == "" {
		return NotSignedIn
	}
	return Identity{Email: profile.Email, SignedIn: true}
}

// Session builds the request session from a token and its stored profile.
func (s *AuthService) Session(token string) *models.Session {
	sess := &models.Session{Token: token}
	if token == "" {
		return sess
	}
	profile, ok := s.CachedProfile(token)
	if !ok {
		return sess
	}
	sess.Email = profile.Email
	sess.IsAdmin = profile.IsAdmin
	sess.HasProfile = true
	return sess
}

func (s *AuthService) CachedProfile(token string) (models.Profile, bool) {
	raw, err := s.profiles.Get(profileKey(token))
	if err != nil || raw == nil {
		return models.Profile{}, false
	}
	var profile models.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return models.Profile{}, false
	}
	return profile, true
}

func (s *AuthService) storeProfile(token string, profile models.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return s.profiles.Set(profileKey(token), raw, s.ttl)
}

// Login exchanges credentials for a token, fetches the profile and stores it.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.TokenResponse, models.Profile, error) {
	email = strings.TrimSpace(email)
	if !utils.ValidEmail(email) {
		return models.TokenResponse{}, models.Profile{}, ErrInvalidEmail
	}

	token, err := s.api.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return models.TokenResponse{}, models.Profile{}, ErrInvalidCredentials
		}
		return models.TokenResponse{}, models.Profile{}, err
	}

	profile, err := s.api.Me(ctx, token.AccessToken)
	if err != nil {
		return models.TokenResponse{}, models.Profile{}, err
	}
	if err := s.storeProfile(token.AccessToken, profile); err != nil {
		utils.LogError("profile_cache_write_failed", err, map[string]interface{}{"email": profile.Email})
	}
	utils.LogEvent("login", map[string]interface{}{"email": profile.Email, "is_admin": profile.IsAdmin})
	return token, profile, nil
}

// Signup creates an account. The confirmation is checked before any request.
func (s *AuthService) Signup(ctx context.Context, email, password, confirm string) (models.TokenResponse, error) {
	email = strings.TrimSpace(email)
	if !utils.ValidEmail(email) {
		return models.TokenResponse{}, ErrInvalidEmail
	}
	if password != confirm {
		return models.TokenResponse{}, ErrPasswordMismatch
	}
	return s.api.Signup(ctx, email, password)
}

// Logout forgets the stored profile of token.
func (s *AuthService) Logout(token string) {
	if token == "" {
		return
	}
	if err := s.profiles.Delete(profileKey(token)); err != nil {
		utils.Logger("auth").WithError(err).Warn("could not drop cached profile")
	}
}

// Checkout starts a Stripe checkout for a plan and returns its URL.
func (s *AuthService) Checkout(ctx context.Context, sess *models.Session, plan string) (string, error) {
	session, err := s.api.CreateCheckoutSession(ctx, sess, plan)
	if err != nil {
		return "", err
	}
	return session.URL, nil
}
