package jwtutil

import (
	"time"

	"gallery-service/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	signingKey []byte
	expiration time.Duration
)

// UserClaims represents the JWT claims for the internal selector API
type UserClaims struct {
	Email       string `json:"email"`
	UserID      uint   `json:"user_id"`
	CompanyID   *uint  `json:"company_id,omitempty"` // Company scope for multi-company setups
	CompanyName string `json:"company_name,omitempty"`
	Role        string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Initialize configures the JWT utility from application configuration
func Initialize(cfg *config.JWTConfig) {
	signingKey = []byte(cfg.SigningKey)
	expiration = cfg.ExpirationTime
}

// GenerateToken creates a signed token for a sales user scoped to a company
func GenerateToken(userID uint, email string, companyID uint, companyName string) (string, error) {
	now := time.Now()
	claims := UserClaims{
		Email:       email,
		UserID:      userID,
		CompanyID:   &companyID,
		CompanyName: companyName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return signingKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
