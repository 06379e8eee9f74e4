package jwt

import (
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Claim names carried by roster access tokens.
const (
	ClaimUserID  = "user_id"
	ClaimRole    = "role"
	ClaimIsAdmin = "is_admin"
	ClaimType    = "type"

	TokenTypeAccess = "access"
)

type Service interface {
	GenerateAccessToken(actor user.Actor) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

// GenerateAccessToken signs the actor's identity into an access token.
// Tokens are normally issued by the plant identity provider; this is used by
// cmd/seed and the handler tests.
func (j *JWTService) GenerateAccessToken(actor user.Actor) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		ClaimUserID:  actor.UserID,
		ClaimRole:    string(actor.Role),
		ClaimIsAdmin: actor.IsAdmin,
		ClaimType:    TokenTypeAccess,
		"exp":        expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// ActorFromClaims reads the roster actor out of decoded token claims.
func ActorFromClaims(claims map[string]interface{}) (user.Actor, bool) {
	userID, ok := claims[ClaimUserID].(string)
	if !ok || userID == "" {
		return user.Actor{}, false
	}
	role, _ := claims[ClaimRole].(string)
	isAdmin, _ := claims[ClaimIsAdmin].(bool)
	return user.Actor{UserID: userID, Role: user.Role(role), IsAdmin: isAdmin}, true
}
