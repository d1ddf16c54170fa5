package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-library-services/internal/core/auth"
	resp "go-library-services/internal/transport/http/response"
)

// gin context 里存放已解析 Claims 的键
const KeyClaims = "claims"

// AuthOpts 认证失败的状态码/文案按服务可配。历史契约如此：
// auth/book 服务对缺失或非法 token 返回 422，borrow 服务返回 401，
// 为兼容旧客户端原样保留（见 DESIGN.md）。
type AuthOpts struct {
	FailStatus int    // 缺失/非法 token 的状态码
	MissingMsg string // Authorization 头缺失或格式不对
	InvalidMsg string // 解析失败（签名、过期、篡改）
	RoleMsg    string // 角色不符（固定 403）
}

// LegacyUnprocessable auth/book 服务的历史返回
func LegacyUnprocessable() AuthOpts {
	return AuthOpts{
		FailStatus: http.StatusUnprocessableEntity,
		MissingMsg: "Missing or invalid Authorization header",
		InvalidMsg: "Invalid or expired token",
		RoleMsg:    "Admin role required",
	}
}

// Unauthorized borrow 服务的返回
func Unauthorized() AuthOpts {
	return AuthOpts{
		FailStatus: http.StatusUnauthorized,
		MissingMsg: "Invalid or missing token",
		InvalidMsg: "Invalid token",
		RoleMsg:    "Admin access required",
	}
}

// BearerAuth 解析 Authorization: Bearer <token> 并把 Claims 放进 context
func BearerAuth(j *auth.JWTer, o AuthOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.AbortErr(c, o.FailStatus, o.MissingMsg)
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			resp.AbortErr(c, o.FailStatus, o.InvalidMsg)
			return
		}
		c.Set(KeyClaims, claims)
		c.Next()
	}
}

// RequireAdmin 必须先过 BearerAuth
func RequireAdmin(o AuthOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := MustClaims(c)
		if claims == nil || claims.Role != "admin" {
			resp.AbortErr(c, http.StatusForbidden, o.RoleMsg)
			return
		}
		c.Next()
	}
}

// MustClaims 取出 BearerAuth 写入的 Claims；未经过认证中间件时返回 nil
func MustClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(KeyClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
