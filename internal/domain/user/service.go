// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrAddressNotFound    = errors.New("address not found")
)

// Service handles account business logic
type Service struct {
	db              *gorm.DB
	logger          *logrus.Logger
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
	rotateRefresh   bool
}

// NewService creates a new user service
func NewService(db *gorm.DB, logger *logrus.Logger, pm *auth.PasswordManager, jm *auth.JWTManager, rotateRefresh bool) *Service {
	return &Service{
		db:              db,
		logger:          logger,
		passwordManager: pm,
		jwtManager:      jm,
		rotateRefresh:   rotateRefresh,
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	Phone           string `json:"phone"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents editable profile fields
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=2"`
	LastName  *string `json:"last_name" binding:"omitempty,min=2"`
	Phone     *string `json:"phone" binding:"omitempty,min=10"`
}

// AddressRequest represents address create/update data
type AddressRequest struct {
	Type         string `json:"type" binding:"omitempty,oneof=shipping billing"`
	AddressLine1 string `json:"address_line1" binding:"required,min=5"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" binding:"required,min=2"`
	State        string `json:"state" binding:"required,min=2"`
	PostalCode   string `json:"postal_code" binding:"required,min=5"`
	Country      string `json:"country" binding:"required,min=2"`
	IsDefault    bool   `json:"is_default"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Register creates a new user account
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	db := s.db.WithContext(ctx)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := db.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		Email:     email,
		Password:  hashedPassword,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		IsActive:  true,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID}).Info("user registered")
	return s.issueTokens(ctx, &user)
}

// Login authenticates a user
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	var user User
	err := s.db.WithContext(ctx).
		Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(req.Email)), true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.passwordManager.VerifyPassword(req.Password, user.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, &user)
}

// RefreshToken generates new tokens using a refresh token
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	var user User
	err = s.db.WithContext(ctx).Where("id = ? AND is_active = ?", claims.UserID, true).First(&user).Error
	if err != nil {
		return nil, ErrUserNotFound
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	newRefreshToken := refreshToken
	if s.rotateRefresh {
		newRefreshToken, err = s.jwtManager.GenerateRefreshToken(user.ID, user.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to generate refresh token: %w", err)
		}
	}

	return &AuthResponse{
		User:         &user,
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    int64(s.jwtManager.AccessTokenExpiry().Seconds()),
	}, nil
}

// GetProfile returns the user with saved addresses
func (s *Service) GetProfile(ctx context.Context, userID uint) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Preload("Addresses").First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &user, nil
}

// UpdateProfile updates editable profile fields
func (s *Service) UpdateProfile(ctx context.Context, userID uint, req *UpdateProfileRequest) (*User, error) {
	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}

	if len(updates) > 0 {
		result := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update profile: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrUserNotFound
		}
	}

	return s.GetProfile(ctx, userID)
}

// SaveAddress stores a new address. A default address replaces the previous
// default of the same type.
func (s *Service) SaveAddress(ctx context.Context, userID uint, req *AddressRequest) (*Address, error) {
	addressType := req.Type
	if addressType == "" {
		addressType = "shipping"
	}

	address := Address{
		UserID:       userID,
		Type:         addressType,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		IsDefault:    req.IsDefault,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			err := tx.Model(&Address{}).
				Where("user_id = ? AND type = ? AND is_default = ?", userID, addressType, true).
				Update("is_default", false).Error
			if err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save address: %w", err)
	}

	return &address, nil
}

// GetDefaultAddress gets the default address for a user and type
func (s *Service) GetDefaultAddress(ctx context.Context, userID uint, addressType string) (*Address, error) {
	var address Address
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND is_default = ?", userID, addressType, true).
		First(&address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to retrieve default address: %w", err)
	}
	return &address, nil
}

// CheckoutProfile returns the fields used to pre-fill the checkout form. A
// missing default shipping address leaves the address fields empty.
func (s *Service) CheckoutProfile(ctx context.Context, userID uint) (*Profile, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
	}

	address, err := s.GetDefaultAddress(ctx, userID, "shipping")
	switch {
	case err == nil:
		profile.Address = strings.TrimSpace(address.AddressLine1 + " " + address.AddressLine2)
		profile.City = address.City
		profile.State = address.State
		profile.Zip = address.PostalCode
		profile.Country = address.Country
	case !errors.Is(err, ErrAddressNotFound):
		return nil, err
	}

	return profile, nil
}

func (s *Service) issueTokens(ctx context.Context, user *User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := s.db.WithContext(ctx).Model(user).Update("last_login_at", now).Error; err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("failed to record last login")
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtManager.AccessTokenExpiry().Seconds()),
	}, nil
}
