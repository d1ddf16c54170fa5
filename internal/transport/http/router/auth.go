package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-library-services/internal/core/auth"
	"go-library-services/internal/service"
	mdw "go-library-services/internal/transport/http/middleware"
	resp "go-library-services/internal/transport/http/response"
)

// NewAuthEngine 身份服务路由。历史契约：认证失败返回 422（非 401），原样保留。
func NewAuthEngine(l *zap.Logger, svc *service.AuthService, jwter *auth.JWTer) *gin.Engine {
	r := newEngine("auth", l)
	opts := mdw.LegacyUnprocessable()

	r.POST("/signup", func(c *gin.Context) {
		var in struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := c.ShouldBindJSON(&in); err != nil || in.Username == "" || in.Password == "" || in.Role == "" {
			resp.Err(c, http.StatusUnprocessableEntity, "Missing required fields")
			return
		}
		switch err := svc.Signup(c.Request.Context(), in.Username, in.Password, in.Role); {
		case errors.Is(err, service.ErrUserExists):
			resp.Err(c, http.StatusBadRequest, "User already exists")
		case errors.Is(err, service.ErrBadRole):
			resp.Err(c, http.StatusUnprocessableEntity, "Role must be user or admin")
		case err != nil:
			resp.Err(c, http.StatusInternalServerError, "Internal server error")
		default:
			resp.Msg(c, http.StatusCreated, "User created successfully")
		}
	})

	r.POST("/login", func(c *gin.Context) {
		var in struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&in); err != nil || in.Username == "" || in.Password == "" {
			resp.Err(c, http.StatusUnprocessableEntity, "Missing credentials")
			return
		}
		token, u, err := svc.Login(c.Request.Context(), in.Username, in.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				resp.Err(c, http.StatusUnauthorized, "Invalid username or password")
			} else {
				resp.Err(c, http.StatusInternalServerError, "Internal server error")
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "user_id": u.ID, "role": u.Role})
	})

	admin := r.Group("", mdw.BearerAuth(jwter, opts), mdw.RequireAdmin(opts))

	admin.GET("/users", func(c *gin.Context) {
		users, err := svc.ListUsers(c.Request.Context())
		if err != nil {
			resp.Err(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		out := make([]gin.H, 0, len(users))
		for _, u := range users {
			out = append(out, gin.H{"id": u.ID, "username": u.Username, "role": u.Role})
		}
		c.JSON(http.StatusOK, gin.H{"users": out})
	})

	admin.POST("/users", func(c *gin.Context) {
		var in struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := c.ShouldBindJSON(&in); err != nil || in.Username == "" || in.Password == "" || in.Role == "" {
			resp.Err(c, http.StatusUnprocessableEntity, "Missing username, password, or role")
			return
		}
		userID, err := svc.CreateUser(c.Request.Context(), in.Username, in.Password, in.Role)
		switch {
		case errors.Is(err, service.ErrUserExists):
			// 注意：自助注册撞名是 400，这里是 409，历史契约不一致但保留
			resp.Err(c, http.StatusConflict, "Username already exists")
		case errors.Is(err, service.ErrBadRole):
			resp.Err(c, http.StatusUnprocessableEntity, "Role must be user or admin")
		case errors.Is(err, service.ErrPasswordTooShort):
			resp.Err(c, http.StatusUnprocessableEntity, "Password must be at least 6 characters")
		case err != nil:
			resp.Err(c, http.StatusInternalServerError, "Internal server error")
		default:
			c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "user_id": userID})
		}
	})

	admin.DELETE("/users/:id", func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			resp.Err(c, http.StatusNotFound, "User not found")
			return
		}
		claims := mdw.MustClaims(c)
		switch err := svc.DeleteUser(c.Request.Context(), claims.UserID, id); {
		case errors.Is(err, service.ErrSelfDelete):
			resp.Err(c, http.StatusForbidden, "Cannot delete your own account")
		case errors.Is(err, service.ErrUserNotFound):
			resp.Err(c, http.StatusNotFound, "User not found")
		case err != nil:
			resp.Err(c, http.StatusInternalServerError, "Internal server error")
		default:
			resp.Msg(c, http.StatusOK, "User deleted successfully")
		}
	})

	return r
}
