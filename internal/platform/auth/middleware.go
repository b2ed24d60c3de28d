package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/apierr"
)

const (
	CtxUserIDKey = "user_id"
	CtxRoleKey   = "role"
)

type TokenParser interface {
	ParseToken(tokenStr string) (*Claims, error)
}

func abort(c *gin.Context, status int, code apierr.Code, msg string) {
	c.AbortWithStatusJSON(status, apierr.Body(code, msg))
}

// RequireAuth: Authorization: Bearer <token> を検証して context に sub/role を詰める
func RequireAuth(tp TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, tp) {
			return
		}
		c.Next()
	}
}

// RequireAuthRole は RequireAuth + RequireRole を 1 つにしたもの。
// 公開グループの一部ルートだけ保護したい時に使う
func RequireAuthRole(tp TokenParser, roles ...string) gin.HandlerFunc {
	allowed := roleSet(roles)
	return func(c *gin.Context) {
		if !authenticate(c, tp) || !authorize(c, allowed) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, tp TokenParser) bool {
	h := c.GetHeader("Authorization")
	if h == "" {
		abort(c, http.StatusUnauthorized, apierr.CodeUnauthorized, "missing Authorization header")
		return false
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		abort(c, http.StatusUnauthorized, apierr.CodeUnauthorized, "invalid Authorization header")
		return false
	}

	tokenStr := strings.TrimSpace(parts[1])
	if tokenStr == "" {
		abort(c, http.StatusUnauthorized, apierr.CodeUnauthorized, "empty token")
		return false
	}

	claims, err := tp.ParseToken(tokenStr)
	if err != nil {
		abort(c, http.StatusUnauthorized, apierr.CodeUnauthorized, "invalid token")
		return false
	}

	c.Set(CtxUserIDKey, claims.Subject)
	c.Set(CtxRoleKey, claims.Role)
	return true
}

// RequireRole: 例) admin のみ許可したい時に追加。RequireAuth の後に置く
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := roleSet(roles)
	return func(c *gin.Context) {
		if !authorize(c, allowed) {
			return
		}
		c.Next()
	}
}

func roleSet(roles []string) map[string]struct{} {
	set := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		if r = CanonicalRole(r); r != "" {
			set[r] = struct{}{}
		}
	}
	return set
}

func authorize(c *gin.Context, allowed map[string]struct{}) bool {
	role := Role(c)
	if role == "" {
		abort(c, http.StatusForbidden, apierr.CodeForbidden, "missing role")
		return false
	}
	if _, ok := allowed[role]; !ok {
		abort(c, http.StatusForbidden, apierr.CodeForbidden, "forbidden")
		return false
	}
	return true
}

func UserID(c *gin.Context) string { return c.GetString(CtxUserIDKey) }

func Role(c *gin.Context) string { return c.GetString(CtxRoleKey) }
