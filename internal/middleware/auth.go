package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"spacebudget/internal/config"
	apperrors "spacebudget/internal/errors"
	"spacebudget/internal/uuid"
)

// UserIDKey is the context key holding the authenticated subject.
const UserIDKey = "userID"

// Claims are the claims read from identity-provider access tokens. The
// subject is the user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks provider-issued HS256 access tokens.
type Verifier struct {
	key    []byte
	parser *jwt.Parser
}

// NewVerifier builds a verifier from the auth settings. Issuer and audience
// are only enforced when configured.
func NewVerifier(cfg *config.Config) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if cfg.AuthJWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.AuthJWTIssuer))
	}
	if cfg.AuthJWTAudience != "" {
		opts = append(opts, jwt.WithAudience(cfg.AuthJWTAudience))
	}
	return &Verifier{key: []byte(cfg.AuthJWTSecret), parser: jwt.NewParser(opts...)}
}

// Verify parses the token and returns its claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if !uuid.IsValid(claims.Subject) {
		return nil, fmt.Errorf("token subject is not a user id")
	}
	return claims, nil
}

// GenerateAccessToken signs a token the way the identity provider does.
// It is used by tests and local tooling.
func GenerateAccessToken(cfg *config.Config, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    cfg.AuthJWTIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if cfg.AuthJWTAudience != "" {
		claims.Audience = jwt.ClaimStrings{cfg.AuthJWTAudience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.AuthJWTSecret))
}

// AuthMiddleware verifies the bearer token and sets the user id in the context
func AuthMiddleware(v *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := v.Verify(parts[1])
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"code": apperrors.ErrUnauthorized.Code, "message": message},
	})
}
