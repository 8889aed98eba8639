package jwt

import (
	"errors"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenTTL = 5 * time.Minute
)

type Service interface {
	// GenerateAccessToken signs an access token; issuance normally belongs to
	// the identity provider, this is used by tooling and tests.
	GenerateAccessToken(claims auth.Claims, ttl time.Duration) (token string, expiresAt time.Time, err error)
	GenerateSSEToken(employeeID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (employeeID string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
	now       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:       time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(claims auth.Claims, ttl time.Duration) (string, time.Time, error) {
	expiresAt := j.now().Add(ttl)

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"employee_id": claims.EmployeeID,
		"name":        claims.Name,
		"email":       claims.Email,
		"role":        claims.Role,
		"type":        TokenTypeAccess,
		"exp":         expiresAt.Unix(),
	})
	return tokenString, expiresAt, err
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(employeeID string) (string, int, error) {
	expiresAt := j.now().Add(sseTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"employee_id": employeeID,
		"type":        TokenTypeSSE,
		"exp":         expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenTTL.Seconds()), nil
}

// ValidateSSEToken validates an SSE token and returns the employee ID
func (j *JWTService) ValidateSSEToken(tokenString string) (string, error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return "", err
	}

	if err := jwt.Validate(token, jwt.WithAcceptableSkew(30*time.Second)); err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeSSE {
		return "", jwt.ErrInvalidJWT()
	}

	employeeID, ok := token.Get("employee_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	id, ok := employeeID.(string)
	if !ok || id == "" {
		return "", jwt.ErrInvalidJWT()
	}

	return id, nil
}

// ClaimsFromMap reads the identity claims produced by GenerateAccessToken.
func ClaimsFromMap(claims map[string]interface{}) (auth.Claims, error) {
	if t, _ := claims["type"].(string); t != "" && t != TokenTypeAccess {
		return auth.Claims{}, errors.New("not an access token")
	}

	employeeID, _ := claims["employee_id"].(string)
	if employeeID == "" {
		return auth.Claims{}, errors.New("token has no employee_id")
	}

	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return auth.Claims{
		EmployeeID: employeeID,
		Name:       name,
		Email:      email,
		Role:       role,
	}, nil
}
