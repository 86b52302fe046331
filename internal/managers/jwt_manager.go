package managers

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"

	"unistay-server/internal/schemas"
	"unistay-server/internal/utils"
)

// JWTMgr defines the interface for JWT management.
// It provides methods for generating, validating and enforcing JWTs on routes.
type JWTMgr interface {
	GenerateJWT(claims jwt.Claims) (string, error)
	ValidateJWT(tokenString string) (jwt.Claims, error)
	GenerateClaims(userId, role string) jwt.Claims
	JWTMiddleware() gin.HandlerFunc
}

// JWTManager handles JWT generation, signing, and validation.
type JWTManager struct {
	secret []byte
}

// NewJWTManager creates a new JWTManager using the JWT_SECRET environment variable.
func NewJWTManager() (JWTMgr, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	log.Info("Initializing JWT manager")
	return &JWTManager{secret: []byte(secret)}, nil
}

// NewJWTManagerWithSecret creates a new JWTManager with the given secret, used in tests.
func NewJWTManagerWithSecret(secret string) JWTMgr {
	return &JWTManager{secret: []byte(secret)}
}

// GenerateClaims generates the standard JWT claims for the given user and role.
func (jm *JWTManager) GenerateClaims(userId, role string) jwt.Claims {
	return jwt.MapClaims{
		"iss":  "unistay.tech",
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour * 24).Unix(),
		"sub":  userId,
		"role": role,
	}
}

// GenerateJWT generates a new JWT with the given claims.
func (jm *JWTManager) GenerateJWT(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jm.secret)
}

// ValidateJWT validates the given JWT and returns the claims if valid.
func (jm *JWTManager) ValidateJWT(tokenString string) (jwt.Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("invalid signing method")
		}

		return jm.secret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	return token.Claims, nil
}

// JWTMiddleware extracts the bearer token from the Authorization header,
// validates it and stores the claims in the request context. Requests
// without a valid token are aborted with 401.
func (jm *JWTManager) JWTMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, &schemas.ErrorDTO{Error: *schemas.Unauthorized})
			return
		}

		claims, err := jm.ValidateJWT(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, &schemas.ErrorDTO{Error: *schemas.Unauthorized})
			return
		}

		c.Set(utils.ClaimsKey.String(), claims)
		c.Next()
	}
}
