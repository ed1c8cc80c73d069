package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/tradefund/pkg/events"
	pkghash "github.com/Skotchmaster/tradefund/pkg/hash"
	jwthelp "github.com/Skotchmaster/tradefund/pkg/jwt"
	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/pkg/roles"
	"github.com/Skotchmaster/tradefund/pkg/tokens"
	"github.com/Skotchmaster/tradefund/services/auth/internal/models"
	"github.com/Skotchmaster/tradefund/services/auth/internal/repo"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
	minPasswordLen    = 8
)

type AuthService struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Events        *events.BestEffort
}

type LoginResult struct {
	UserID       uuid.UUID
	Role         string
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Role     string
}

func (s *AuthService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return DefaultAccessTTL
}

func (s *AuthService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return DefaultRefreshTTL
}

func (s *AuthService) CreateAccessToken(role, id string, accessExp time.Time) (string, error) {
	return tokens.SignAccess(tokens.AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
	}, s.JWTSecret)
}

func (s *AuthService) CreateRefreshToken(id string, refreshExp time.Time) (string, string, error) {
	jti := jwthelp.NewJTI()
	tok, err := tokens.SignRefresh(tokens.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(refreshExp),
		},
	}, s.RefreshSecret)
	if err != nil {
		return "", "", err
	}
	return tok, jti, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if email == "" {
		return fmt.Errorf("%w: email required", ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("%w: password required", ErrValidation)
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateCredentials(in.Email, in.Password); err != nil {
		return nil, err
	}
	if !slices.Contains(roles.SelfService, in.Role) {
		return nil, fmt.Errorf("%w: role must be one of %s", ErrValidation, strings.Join(roles.SelfService, ", "))
	}
	return s.createUser(ctx, in)
}

// CreateUser lets a super admin provision any account, admins included.
func (s *AuthService) CreateUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateCredentials(in.Email, in.Password); err != nil {
		return nil, err
	}
	if !roles.Valid(in.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}
	return s.createUser(ctx, in)
}

func (s *AuthService) createUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}

	pwHash, err := pkghash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}
	user := &models.User{
		Email:        in.Email,
		PasswordHash: pwHash,
		FullName:     strings.TrimSpace(in.FullName),
		Role:         in.Role,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, err
	}

	s.Events.Emit(ctx, events.TopicUser, events.UserRegistered, user.ID.String(), events.UserChanged{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !pkghash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "password mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, user)
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*LoginResult, error) {
	res, stored, err := s.newPair(user)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddRefreshToken(ctx, stored); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *AuthService) newPair(user *models.User) (*LoginResult, *models.RefreshToken, error) {
	now := time.Now()
	accessExp := now.Add(s.accessTTL())
	accessToken, err := s.CreateAccessToken(user.Role, user.ID.String(), accessExp)
	if err != nil {
		return nil, nil, err
	}
	refreshExp := now.Add(s.refreshTTL())
	refreshToken, jti, err := s.CreateRefreshToken(user.ID.String(), refreshExp)
	if err != nil {
		return nil, nil, err
	}
	stored := &models.RefreshToken{
		Token:     jwthelp.Sha256Hex(refreshToken),
		UserID:    user.ID,
		JTI:       jti,
		ExpiresAt: refreshExp.Unix(),
	}
	return &LoginResult{
		UserID:       user.ID,
		Role:         user.Role,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, stored, nil
}

// Refresh rotates a refresh token. The role is re-read from the user row so role changes apply.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil || claims.ID == "" {
		return nil, ErrInvalidRefreshToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	res, stored, err := s.newPair(user)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.RotateRefreshToken(ctx, claims.ID, refreshToken, stored); err != nil {
		if errors.Is(err, repo.ErrTokenRevoked) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	return res, nil
}

func (s *AuthService) LogOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Repo.RevokeRefreshToken(ctx, refreshToken)
}
