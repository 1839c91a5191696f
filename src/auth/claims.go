package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"course-client/src/models"
)

// Claims are the identity fields the client reads from the token payload.
// The client holds no signing key, so the token is decoded without
// verification; the server remains the authority on every request.
type Claims struct {
	UserID int
	Role   models.Role
}

// DecodeClaims decodes the base64 payload segment of a three-part token and
// extracts the role and user id claims. It performs no signature check and
// no I/O. Any malformed token yields models.ErrClaimsDecode.
func DecodeClaims(token string) (Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", models.ErrClaimsDecode, err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, models.ErrClaimsDecode
	}

	claims := Claims{Role: models.RoleGuest}

	if role, ok := mapClaims["role"].(string); ok {
		claims.Role = models.ParseRole(role)
	}

	// JSON numbers arrive as float64
	switch id := mapClaims["userId"].(type) {
	case float64:
		claims.UserID = int(id)
	case string:
		// Some backend versions stringify the id
		var n int
		if _, err := fmt.Sscanf(id, "%d", &n); err == nil {
			claims.UserID = n
		}
	}

	return claims, nil
}
