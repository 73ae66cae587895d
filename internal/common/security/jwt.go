package security

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"catalog_api/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var (
	TokenAuth      *jwtauth.JWTAuth
	AccessTokenTTL = time.Hour
)

func InitJWT(key []byte, ttl time.Duration) {
	TokenAuth = jwtauth.New("HS256", key, nil)
	if ttl > 0 {
		AccessTokenTTL = ttl
	}
}

// GenerateToken signs an access token carrying the user's id and role.
func GenerateToken(userID int, role string) (string, error) {
	claims := jwt.MapClaims{
		"id":   userID,
		"role": role,
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, AccessTokenTTL)
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

// ExpiresInSeconds is the access token lifetime reported to clients.
func ExpiresInSeconds() int {
	return int(AccessTokenTTL / time.Second)
}

// VerifyToken checks signature and expiry and returns the embedded identity.
func VerifyToken(tokenString string) (*model.Principal, error) {
	token, err := jwtauth.VerifyToken(TokenAuth, tokenString)
	if err != nil {
		return nil, err
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return nil, err
	}
	return PrincipalFromClaims(claims)
}

func PrincipalFromClaims(claims jwt.MapClaims) (*model.Principal, error) {
	id, err := GetUserIDFromClaims(claims)
	if err != nil {
		return nil, err
	}
	role, err := GetUserRoleFromClaims(claims)
	if err != nil {
		return nil, err
	}
	return &model.Principal{ID: id, Role: role}, nil
}

// GetUserIDFromClaims accepts the numeric forms a decoded id claim can take.
func GetUserIDFromClaims(claims jwt.MapClaims) (int, error) {
	switch v := claims["id"].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("id claim %v is not an integer", v)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("id claim: %w", err)
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("id claim: %w", err)
		}
		return n, nil
	case nil:
		return 0, errors.New("id claim is missing")
	default:
		return 0, fmt.Errorf("id claim has unexpected type %T", v)
	}
}

func GetUserRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}
