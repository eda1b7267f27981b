package service

import (
	"blogCMS/internal/apperrors"
	"blogCMS/internal/config"
	"blogCMS/internal/models"
	"blogCMS/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AuthService interface {
	Register(ctx context.Context, req repository.CreateUserRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, string, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*models.User, string, string, error)
	ValidateToken(tokenString string) (*jwt.Token, error)
	ActorFromToken(ctx context.Context, tokenString string) (models.Actor, error)
}

type authService struct {
	userRepo repository.UserRepository
	invites  InviteService
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, invites InviteService, cfg *config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		invites:  invites,
		cfg:      cfg,
	}
}

// Register creates a reader account. With an invite code the account is
// created as an author and the invite is consumed in the same transaction.
func (s *authService) Register(ctx context.Context, req repository.CreateUserRequest) (*models.User, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, internalError("Failed to register", err)
	}
	if exists {
		return nil, apperrors.New(apperrors.KindAlreadyRegistered, "User with this email already exists")
	}

	refreshToken, refreshTokenExpiry := s.generateRefreshToken()

	user := &models.User{
		Email:                  req.Email,
		Name:                   req.Name,
		Role:                   models.RoleReader,
		RefreshToken:           refreshToken,
		RefreshTokenExpiryTime: refreshTokenExpiry,
	}

	if req.InviteCode == "" {
		err = s.userRepo.CreateUser(ctx, user, req.Password)
	} else {
		invite, inviteErr := s.invites.Validate(ctx, req.InviteCode, req.Email)
		if inviteErr != nil {
			return nil, inviteErr
		}
		user.Role = models.RoleAuthor
		err = s.userRepo.CreateUserWithInvite(ctx, user, req.Password, invite.InviteID)
	}

	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUniqueViolation):
			return nil, apperrors.New(apperrors.KindAlreadyRegistered, "User with this email already exists")
		case errors.Is(err, repository.ErrInviteUsed):
			return nil, apperrors.New(apperrors.KindAlreadyUsed, "Invitation code has already been used")
		}
		return nil, internalError("Failed to register", err)
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, string, error) {
	user, err := s.userRepo.VerifyPassword(ctx, email, password)
	if err != nil {
		return nil, "", "", apperrors.Wrap(apperrors.KindUnauthenticated, "Invalid email or password", err)
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*models.User, string, string, error) {
	user, err := s.userRepo.GetUserByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", "", apperrors.New(apperrors.KindUnauthenticated, "Refresh token expired or invalid")
		}
		return nil, "", "", internalError("Failed to refresh token", err)
	}

	return s.issueTokens(ctx, user)
}

// issueTokens signs a new access token and rotates the refresh token.
func (s *authService) issueTokens(ctx context.Context, user *models.User) (*models.User, string, string, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, "", "", internalError("Failed to issue token", err)
	}

	refreshToken, refreshTokenExpiry := s.generateRefreshToken()

	err = s.userRepo.UpdateRefreshToken(ctx, user.UserID, refreshToken, refreshTokenExpiry)
	if err != nil {
		return nil, "", "", internalError("Failed to issue token", err)
	}

	return user, accessToken, refreshToken, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": user.UserID,
		"email":  user.Email,
		"role":   user.Role,
		"exp":    now.Add(s.cfg.AccessTokenDuration).Unix(),
		"iat":    now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecretKey))
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}

	return tokenString, nil
}

func (s *authService) generateRefreshToken() (string, time.Time) {
	return uuid.New().String(), time.Now().Add(s.cfg.RefreshTokenDuration)
}

func (s *authService) ValidateToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecretKey), nil
	})

	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга токена: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("недействительный токен")
	}

	return token, nil
}

// ActorFromToken resolves the request actor from a signed access token.
// The role is read from the store, so role changes apply to tokens already issued.
func (s *authService) ActorFromToken(ctx context.Context, tokenString string) (models.Actor, error) {
	token, err := s.ValidateToken(tokenString)
	if err != nil {
		return models.Actor{}, apperrors.Wrap(apperrors.KindUnauthenticated, "Invalid token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Actor{}, apperrors.New(apperrors.KindUnauthenticated, "Invalid token claims")
	}

	userID, ok := claims["userId"].(string)
	if !ok || userID == "" {
		return models.Actor{}, apperrors.New(apperrors.KindUnauthenticated, "Invalid token claims")
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Actor{}, apperrors.New(apperrors.KindUnauthenticated, "User no longer exists")
		}
		return models.Actor{}, internalError("Failed to resolve user", err)
	}

	return models.Actor{UserID: user.UserID, Role: user.Role}, nil
}
