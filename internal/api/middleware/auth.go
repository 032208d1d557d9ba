package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// APIKeyHeader заголовок сервисного ключа для пополнения кошельков
const APIKeyHeader = "X-Api-Key"

// Claims полезная нагрузка access токена; sub - ID пользователя
type Claims struct {
	Role     string `json:"role"`
	ResortID *int64 `json:"resortId,omitempty"`
	jwt.RegisteredClaims
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func forbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Auth проверяет Bearer токен (HS256) и кладет domain.Identity в контекст
func Auth(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				unauthorized(w, "отсутствует токен авторизации")
				return
			}

			claims := &Claims{}
			tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				return key, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !tok.Valid {
				unauthorized(w, "некорректный токен")
				return
			}

			userID, err := strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil || userID <= 0 {
				unauthorized(w, "некорректный токен")
				return
			}

			identity := domain.Identity{
				UserID:   userID,
				Role:     domain.Role(claims.Role),
				ResortID: claims.ResortID,
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireAdmin пропускает только администраторов курорта
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := GetIdentity(r.Context())
		if !ok {
			unauthorized(w, "отсутствует токен авторизации")
			return
		}
		if _, ok := identity.AsAdmin(); !ok {
			forbidden(w, "доступно только администраторам курорта")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// APIKey проверяет сервисный ключ в заголовке X-Api-Key
func APIKey(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(APIKeyHeader)
			if expected == "" || subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
				unauthorized(w, "некорректный API ключ")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity кладет вызывающего в контекст
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity извлекает вызывающего из контекста
func GetIdentity(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(domain.Identity)
	return identity, ok
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(ctx context.Context) (int64, bool) {
	identity, ok := GetIdentity(ctx)
	if !ok {
		return 0, false
	}
	return identity.UserID, true
}

// GetAdmin извлекает capability администратора из контекста
func GetAdmin(ctx context.Context) (domain.Admin, bool) {
	identity, ok := GetIdentity(ctx)
	if !ok {
		return domain.Admin{}, false
	}
	return identity.AsAdmin()
}
