package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
)

const DefaultAccessTTL = 12 * time.Hour

// TokenService issues and validates HS256 access tokens carrying a role claim.
type TokenService struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

func NewTokenService(secret string, accessTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	return &TokenService{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

// Issue signs an access token for subject with the given role.
func (s *TokenService) Issue(subject string, role types.UserRole) (string, time.Time, error) {
	if !validRole(role) {
		return "", time.Time{}, ErrInvalidRole
	}
	if subject == "" {
		return "", time.Time{}, errors.New("subject is required")
	}

	issuedAt := s.now().UTC()
	exp := issuedAt.Add(s.accessTTL)

	claims := jwt.MapClaims{
		"jti":  uuid.NewString(),
		"sub":  subject,
		"role": role.String(),
		"iat":  issuedAt.Unix(),
		"exp":  exp.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, exp, nil
}

// Validate checks the signature and expiry of token and returns its principal.
func (s *TokenService) Validate(ctx context.Context, token string) (*models.Principal, error) {
	ctx = wrap.WithAction(ctx, "validate_token")

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, wrap.Error(ctx, ErrExpToken)
		}
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	subject, _ := mc["sub"].(string)
	if subject == "" {
		return nil, wrap.Error(ctx, fmt.Errorf("%w: missing 'sub' claim", ErrInvalidToken))
	}

	role, _ := mc["role"].(string)
	if !validRole(types.UserRole(role)) {
		return nil, wrap.Error(ctx, fmt.Errorf("%w: %w", ErrInvalidToken, ErrInvalidRole))
	}

	return &models.Principal{Subject: subject, Role: types.UserRole(role)}, nil
}

func validRole(r types.UserRole) bool {
	return r == types.RoleDispatcher || r == types.RoleViewer
}
