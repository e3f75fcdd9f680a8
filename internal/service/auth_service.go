package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/zhpack/jobtrack/internal/models"
	"github.com/zhpack/jobtrack/internal/repository"
)

// ErrInvalidCredentials is returned for a wrong employee code or password.
var ErrInvalidCredentials = errors.New("invalid employee code or password")

const employeeCodeCacheTTL = 10 * time.Minute

// Claims is the JWT payload carried by every authenticated request.
type Claims struct {
	EmployeeCode string   `json:"employee_code"`
	Role         string   `json:"role"`
	Roles        []string `json:"roles"`
	jwt.RegisteredClaims
}

// AuthService issues and validates session tokens and resolves identities to
// profiles. Redis, when configured, caches employee-code lookups; without it
// every resolution reads through to the database.
type AuthService struct {
	profiles *repository.ProfileRepository
	rdb      *redis.Client
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
}

// NewAuthService builds a service with dependencies. rdb may be nil.
func NewAuthService(profiles *repository.ProfileRepository, rdb *redis.Client, secret string, tokenTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		profiles: profiles,
		rdb:      rdb,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Login checks the employee code and password and returns a signed token with
// the matching profile.
func (s *AuthService) Login(ctx context.Context, employeeCode, password string) (string, *models.Profile, error) {
	profile, err := s.profiles.FindByEmployeeCode(ctx, employeeCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.issueToken(profile)
	if err != nil {
		return "", nil, err
	}
	return token, profile, nil
}

// ParseToken validates a bearer token and returns its claims.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ResolveProfile loads the profile behind a validated token. A missing row is
// auto-provisioned as a worker with the printing capability, preserving the
// first-sign-in behavior for identities created by an external auth issuer.
func (s *AuthService) ResolveProfile(ctx context.Context, claims *Claims) (*models.Profile, error) {
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.Wrap(err, "invalid token subject")
	}
	profile, err := s.profiles.FindByID(ctx, id)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if claims.EmployeeCode == "" {
		return nil, ErrProfileNotFound
	}
	provisioned := &models.Profile{
		ID:           id,
		EmployeeCode: claims.EmployeeCode,
		Role:         models.RoleWorker,
		Roles:        models.RoleList{"printing"},
	}
	if err := s.profiles.Create(ctx, provisioned); err != nil {
		return nil, errors.Wrap(err, "auto-provision profile")
	}
	s.logger.Info("auto-provisioned worker profile",
		zap.String("id", id.String()),
		zap.String("employee_code", claims.EmployeeCode))
	return provisioned, nil
}

// EmployeeCode resolves an identity id to its employee code through the cache.
func (s *AuthService) EmployeeCode(ctx context.Context, id uuid.UUID) (string, error) {
	key := "employee_code:" + id.String()
	if s.rdb != nil {
		if code, err := s.rdb.Get(ctx, key).Result(); err == nil && code != "" {
			return code, nil
		}
	}
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrProfileNotFound
		}
		return "", err
	}
	if s.rdb != nil {
		if err := s.rdb.Set(ctx, key, profile.EmployeeCode, employeeCodeCacheTTL).Err(); err != nil {
			s.logger.Warn("cache employee code", zap.Error(err))
		}
	}
	return profile.EmployeeCode, nil
}

// InvalidateEmployeeCode drops a cached lookup after a profile update.
func (s *AuthService) InvalidateEmployeeCode(ctx context.Context, id uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, "employee_code:"+id.String()).Err(); err != nil {
		s.logger.Warn("invalidate employee code cache", zap.Error(err))
	}
}

func (s *AuthService) issueToken(profile *models.Profile) (string, error) {
	now := time.Now()
	claims := Claims{
		EmployeeCode: profile.EmployeeCode,
		Role:         string(profile.Role),
		Roles:        profile.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	return signed, errors.WithStack(err)
}
