package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// Имена JWT claims, которые выдаёт auth handler.
const (
	jwtClaimUserID = "user_id"
	jwtClaimClubID = "club_id"
	jwtClaimRole   = "role"
)

func claimsFromContext(ctx context.Context) (jwt.MapClaims, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return nil, errors.New("user claims not found in context or invalid type")
	}
	return claims, nil
}

func intClaim(claims jwt.MapClaims, name string) (int, error) {
	raw, ok := claims[name]
	if !ok {
		return 0, fmt.Errorf("missing %q claim in token", name)
	}
	// encoding/json отдаёт числа как float64.
	value, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("invalid type for %q claim: expected number, got %T", name, raw)
	}
	if value != float64(int(value)) {
		return 0, fmt.Errorf("%q claim is not an integer: %f", name, value)
	}
	return int(value), nil
}

func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return 0, err
	}
	userID, err := intClaim(claims, jwtClaimUserID)
	if err != nil {
		return 0, err
	}
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user ID value in %q claim: %d", jwtClaimUserID, userID)
	}
	return userID, nil
}

// GetClubIDFromContext возвращает клуб сотрудника. Для супер-роли admin
// клуб может быть 0 — доступ ко всем клубам.
func GetClubIDFromContext(ctx context.Context) (int, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return 0, err
	}
	clubID, err := intClaim(claims, jwtClaimClubID)
	if err != nil {
		return 0, err
	}
	if clubID < 0 {
		return 0, fmt.Errorf("invalid club ID value in %q claim: %d", jwtClaimClubID, clubID)
	}
	return clubID, nil
}

func GetUserRoleFromContext(ctx context.Context) (string, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	role, ok := claims[jwtClaimRole].(string)
	if !ok || role == "" {
		return "", fmt.Errorf("missing or invalid %q claim in token", jwtClaimRole)
	}
	return role, nil
}
