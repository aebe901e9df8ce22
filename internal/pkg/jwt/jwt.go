package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Role values carried in the "role" claim.
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// Identity is what the engine needs from a verified access token. Tokens are
// issued by the identity service; the engine only verifies them.
type Identity struct {
	UserID     string
	EmployeeID string
	CompanyID  string
	Role       string
}

type Service interface {
	GenerateAccessToken(identity Identity) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime time.Duration
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime time.Duration) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

// GenerateAccessToken signs a token with the same claims the identity service
// issues. Used by tooling and tests.
func (j *JWTService) GenerateAccessToken(identity Identity) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpirationTime).Unix()

	claims := map[string]interface{}{
		"user_id":     identity.UserID,
		"employee_id": identity.EmployeeID,
		"company_id":  identity.CompanyID,
		"role":        identity.Role,
		"type":        "access",
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// IdentityFromClaims reads the claims map produced by jwtauth.FromContext.
func IdentityFromClaims(claims map[string]interface{}) (Identity, bool) {
	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		return Identity{}, false
	}
	id := Identity{
		UserID:     stringClaim(claims, "user_id"),
		EmployeeID: stringClaim(claims, "employee_id"),
		CompanyID:  stringClaim(claims, "company_id"),
		Role:       stringClaim(claims, "role"),
	}
	if id.CompanyID == "" || id.Role == "" {
		return Identity{}, false
	}
	return id, true
}

func stringClaim(claims map[string]interface{}, key string) string {
	v, _ := claims[key].(string)
	return v
}
