package util

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/ZhaoZeLuWei/HelpMe/configs"
	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// TokenClaims is the decoded identity carried by a token.
type TokenClaims struct {
	UserID    uint
	Name      string
	Role      constants.UserRole
	ExpiresAt time.Time
}

func GenerateJWTToken(cfg *configs.TokenJWT, userID uint, name string, role constants.UserRole, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"ID":   userID,
		"name": name,
		"role": string(role),
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(cfg.JWT))
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return tokenString, nil
}

// GenerateUserToken issues a token for a marketplace user.
func GenerateUserToken(cfg *configs.TokenJWT, userID uint, name string) (string, error) {
	return GenerateJWTToken(cfg, userID, name, constants.RoleUser, cfg.ExpireDuration)
}

// ParseJWTToken verifies tokenString. When the signature is good but the token
// is expired, the claims are returned together with ErrTokenExpired.
func ParseJWTToken(cfg *configs.TokenJWT, tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(cfg.JWT), nil
	})

	expired := false
	if err != nil {
		ve, ok := err.(*jwt.ValidationError)
		if !ok || ve.Errors != jwt.ValidationErrorExpired {
			return nil, ErrTokenInvalid
		}
		expired = true
	} else if !token.Valid {
		return nil, ErrTokenInvalid
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	claims, err := claimsFromMap(mapClaims)
	if err != nil {
		return nil, err
	}
	if expired {
		return claims, ErrTokenExpired
	}
	return claims, nil
}

func claimsFromMap(m jwt.MapClaims) (*TokenClaims, error) {
	id, ok := m["ID"].(float64)
	if !ok {
		return nil, ErrTokenInvalid
	}
	role, ok := m["role"].(string)
	if !ok || role == "" {
		return nil, ErrTokenInvalid
	}
	name, _ := m["name"].(string)
	exp, _ := m["exp"].(float64)

	return &TokenClaims{
		UserID:    uint(id),
		Name:      name,
		Role:      constants.UserRole(role),
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}
