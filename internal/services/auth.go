package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/idea2sns-backend/internal/platform/ctxutil"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

// JWTClaims is the subset of a Supabase-style access token this service reads.
type JWTClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	log          *logger.Logger
	jwtSecretKey []byte
	audience     string
}

func NewAuthService(log *logger.Logger, jwtSecretKey, audience string) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		log:          serviceLog,
		jwtSecretKey: []byte(jwtSecretKey),
		audience:     strings.TrimSpace(audience),
	}
}

// SetContextFromToken verifies an HS256 bearer token and attaches the caller to ctx.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, errors.New("missing token")
	}
	if len(as.jwtSecretKey) == 0 {
		return ctx, errors.New("token verification is not configured")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	}
	if as.audience != "" {
		opts = append(opts, jwt.WithAudience(as.audience))
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return as.jwtSecretKey, nil
	}, opts...)
	if err != nil {
		return ctx, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, errors.New("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}
	rd := &ctxutil.RequestData{
		UserID:      userID,
		Email:       claims.Email,
		Role:        claims.Role,
		TokenString: tokenString,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}
