package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const tokenLeeway = 30 * time.Second

// Claims holds what the API needs from an auth-provider access token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(tokenString string) (*Claims, error)
}

type jwtVerifier struct {
	parser  *jwt.Parser
	keyFunc jwt.Keyfunc
}

// NewHMACVerifier verifies HS256 tokens signed with the project's JWT secret.
func NewHMACVerifier(secret string) (TokenVerifier, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must be set")
	}
	key := []byte(secret)
	return &jwtVerifier{
		parser: jwt.NewParser(
			jwt.WithLeeway(tokenLeeway),
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
			jwt.WithExpirationRequired(),
		),
		keyFunc: func(token *jwt.Token) (interface{}, error) {
			return key, nil
		},
	}, nil
}

// NewJWKSVerifier verifies asymmetric tokens against the auth provider's JWKS endpoint.
func NewJWKSVerifier(jwksURL string) (TokenVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("jwks url must be set")
	}
	provider, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("init jwks keyfunc: %w", err)
	}
	return &jwtVerifier{
		parser: jwt.NewParser(
			jwt.WithLeeway(tokenLeeway),
			jwt.WithValidMethods([]string{jwt.SigningMethodES256.Name, jwt.SigningMethodRS256.Name}),
			jwt.WithExpirationRequired(),
		),
		keyFunc: provider.Keyfunc,
	}, nil
}

func (v *jwtVerifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, v.keyFunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token missing sub")
	}
	return claims, nil
}
