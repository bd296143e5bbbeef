package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// StaffClaims 员工 JWT 载荷（HS256 签发）
type StaffClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Roles accepted on the staff surface. Guest sessions signed by the same
// issuer carry other roles and must not pass.
const (
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

type staffClaimsKey struct{}

// StaffFromContext returns the verified claims a RequireStaff middleware
// stored on the request.
func StaffFromContext(ctx context.Context) (*StaffClaims, bool) {
	c, ok := ctx.Value(staffClaimsKey{}).(*StaffClaims)
	return c, ok
}

// AuthVerifier verifies staff bearer tokens. An empty secret locks the staff
// surface: every request is rejected, it never falls open.
type AuthVerifier struct {
	secret []byte
	logger *zap.Logger
}

func NewAuthVerifier(secret string, logger *zap.Logger) *AuthVerifier {
	if secret == "" {
		logger.Warn("STAFF_JWT_SECRET not set, staff API locked")
	}
	return &AuthVerifier{secret: []byte(secret), logger: logger}
}

func (v *AuthVerifier) verify(tokenString string) (*StaffClaims, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("staff auth not configured")
	}

	claims := &StaffClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// RequireStaff guards the staff routes: valid bearer token AND a staff or
// admin role claim.
func (v *AuthVerifier) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Missing bearer token")
			return
		}

		claims, err := v.verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			v.logger.Warn("Staff token rejected", zap.Error(err))
			writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid token")
			return
		}
		if claims.Role != RoleStaff && claims.Role != RoleAdmin {
			v.logger.Warn("Staff token role rejected",
				zap.String("subject", claims.Subject),
				zap.String("role", claims.Role),
			)
			writeError(w, http.StatusForbidden, "forbidden", "Insufficient role")
			return
		}

		ctx := context.WithValue(r.Context(), staffClaimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
