package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/cashcraft/server/internal/models"
)

// Seed data for new users
var defaultCategories = []struct {
	Name  string
	Icon  string
	Color string
	Type  models.CategoryType
}{
	{"Groceries", "🛒", "#FF6B6B", models.CategoryExpense},
	{"Transport", "🚌", "#4ECDC4", models.CategoryExpense},
	{"Entertainment", "🎮", "#45B7D1", models.CategoryExpense},
	{"Salary", "💰", "#95E1D3", models.CategoryIncome},
	{"Side Income", "💵", "#F38181", models.CategoryIncome},
}

// issueTokens generates an access/refresh token pair and persists the
// refresh token
func (s *DefaultService) issueTokens(ctx context.Context, userID string) (string, string, error) {
	accessToken, err := s.generateAccessToken(userID)
	if err != nil {
		return "", "", fmt.Errorf("error generating access token: %w", err)
	}

	refreshToken, err := s.generateRefreshToken(userID)
	if err != nil {
		return "", "", fmt.Errorf("error generating refresh token: %w", err)
	}

	stored := &models.RefreshToken{
		UserID:    userID,
		Token:     refreshToken,
		ExpiresAt: time.Now().UTC().Add(s.refreshTokenTTL),
	}
	if err := s.repo.CreateRefreshToken(ctx, stored); err != nil {
		return "", "", fmt.Errorf("error storing refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// seedUserData creates the default categories and a default cash account for
// a newly registered user
func (s *DefaultService) seedUserData(ctx context.Context, userID string) error {
	for _, c := range defaultCategories {
		icon, color := c.Icon, c.Color
		category := &models.Category{
			UserID:   &userID,
			Name:     c.Name,
			Type:     c.Type,
			Icon:     &icon,
			Color:    &color,
			IsSystem: true,
		}
		if err := s.repo.CreateCategory(ctx, category); err != nil {
			return fmt.Errorf("error seeding categories: %w", err)
		}
	}

	icon, color := "💵", "#95E1D3"
	account := &models.Account{
		UserID:            userID,
		Name:              "Cash",
		Type:              models.AccountCash,
		Balance:           decimal.Zero,
		Currency:          "RUB",
		ExchangeRate:      1,
		Icon:              &icon,
		Color:             &color,
		IsDefault:         true,
		IsIncludedInTotal: true,
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return fmt.Errorf("error seeding default account: %w", err)
	}

	return nil
}

func userInfo(user *models.User) models.UserInfo {
	return models.UserInfo{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsPremium:   user.IsPremium,
		IsGuest:     user.IsGuest,
	}
}

// Authentication methods
func (s *DefaultService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	existingUser, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking user existence: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = emailLocalPart(req.Email)
	}

	user := &models.User{
		ID:          uuid.New().String(),
		Email:       req.Email,
		Password:    string(hashedPassword),
		DisplayName: displayName,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if err := s.seedUserData(ctx, user.ID); err != nil {
		return nil, err
	}

	accessToken, refreshToken, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		User:         userInfo(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Error("failed to update last login for %s: %v", user.ID, err)
	}

	accessToken, refreshToken, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		User:         userInfo(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// GuestLogin creates a throwaway local account so the app works without
// registration
func (s *DefaultService) GuestLogin(ctx context.Context) (*models.AuthResponse, error) {
	password := randomPassword()
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		ID:          uuid.New().String(),
		Email:       fmt.Sprintf("guest_%d@cashcraft.local", time.Now().UnixNano()),
		Password:    string(hashedPassword),
		DisplayName: "Guest User",
		IsGuest:     true,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("error creating guest user: %w", err)
	}

	if err := s.seedUserData(ctx, user.ID); err != nil {
		return nil, err
	}

	accessToken, refreshToken, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		User:         userInfo(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// GoogleLogin signs a user in via their Google identity: match by google id
// first, then link by email, otherwise create a fresh verified user
func (s *DefaultService) GoogleLogin(ctx context.Context, req models.GoogleLoginRequest) (*models.AuthResponse, error) {
	user, err := s.repo.GetUserByGoogleID(ctx, req.GoogleID)
	if err != nil {
		return nil, fmt.Errorf("error getting user by google id: %w", err)
	}

	if user != nil {
		if err := s.repo.TouchLastLogin(ctx, user.ID); err != nil {
			s.logger.Error("failed to update last login for %s: %v", user.ID, err)
		}
	} else {
		user, err = s.repo.GetUserByEmail(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("error getting user by email: %w", err)
		}

		if user != nil {
			if err := s.repo.LinkGoogleID(ctx, user.ID, req.GoogleID); err != nil {
				return nil, fmt.Errorf("error linking google id: %w", err)
			}
		} else {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(randomPassword()), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("error hashing password: %w", err)
			}

			displayName := req.Name
			if displayName == "" {
				displayName = emailLocalPart(req.Email)
			}

			googleID := req.GoogleID
			now := time.Now().UTC()
			user = &models.User{
				ID:          uuid.New().String(),
				Email:       req.Email,
				Password:    string(hashedPassword),
				DisplayName: displayName,
				GoogleID:    &googleID,
				IsVerified:  true,
				LastLogin:   &now,
			}

			if err := s.repo.CreateUser(ctx, user); err != nil {
				return nil, fmt.Errorf("error creating user: %w", err)
			}

			if err := s.seedUserData(ctx, user.ID); err != nil {
				return nil, err
			}
		}
	}

	accessToken, refreshToken, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		User:         userInfo(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshTokens rotates a refresh token: the presented token is verified,
// deleted and replaced by a fresh pair
func (s *DefaultService) RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPairResponse, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if tokenType, _ := claims["type"].(string); tokenType != "refresh" {
		return nil, ErrInvalidToken
	}
	userID, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	stored, err := s.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("error getting refresh token: %w", err)
	}
	if stored == nil || stored.UserID != userID {
		return nil, ErrInvalidToken
	}

	if stored.IsExpired() {
		if err := s.repo.DeleteRefreshToken(ctx, refreshToken); err != nil {
			s.logger.Error("failed to delete expired refresh token: %v", err)
		}
		return nil, ErrTokenExpired
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	if err := s.repo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("error rotating refresh token: %w", err)
	}

	accessToken, newRefreshToken, err := s.issueTokens(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

func (s *DefaultService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.repo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

func emailLocalPart(email string) string {
	for i := 0; i < len(email); i++ {
		if email[i] == '@' {
			return email[:i]
		}
	}
	return email
}

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomPassword() string {
	b := make([]byte, 16)
	for i := range b {
		b[i] = passwordAlphabet[rand.Intn(len(passwordAlphabet))]
	}
	return string(b)
}
