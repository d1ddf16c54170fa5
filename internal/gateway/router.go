package gateway

import (
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	mdw "go-library-services/internal/transport/http/middleware"
)

// NewEngine 网关路由；templatesGlob 如 "web/templates/*.html"
func NewEngine(l *zap.Logger, h *Handler, templatesGlob string) *gin.Engine {
	r := gin.New()
	r.Use(
		ginzap.Ginzap(l, time.RFC3339, true),
		ginzap.RecoveryWithZap(l, true),
		cors.Default(),
		mdw.RequestID(),
		mdw.Metrics("gateway"),
	)
	if templatesGlob != "" {
		r.LoadHTMLGlob(templatesGlob)
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	pub := r.Group("", h.EnsureSID())
	pub.GET("/", h.Index)
	pub.GET("/signin", h.SigninForm)
	pub.POST("/signin", h.Signin)
	pub.GET("/signup", h.SignupForm)
	pub.POST("/signup", h.Signup)
	pub.GET("/logout", h.Logout)

	user := pub.Group("", h.RequireSession())
	user.GET("/books", h.Books)
	user.GET("/book/:id", h.BookDetails)
	user.POST("/borrow/:id", h.BorrowBook)
	user.GET("/borrowed", h.Borrowed)
	user.POST("/return/:borrow_id", h.ReturnBook)

	admin := user.Group("", h.RequireAdmin())
	admin.GET("/admin", h.Admin)
	admin.GET("/admin/users", h.AdminUsersForm)
	admin.POST("/admin/users", h.AdminCreateUser)
	admin.POST("/admin/delete-user/:id", h.AdminDeleteUser)
	admin.GET("/admin/add-book", h.AddBookForm)
	admin.POST("/admin/add-book", h.AddBook)
	admin.GET("/admin/edit-book/:id", h.EditBookForm)
	admin.POST("/admin/edit-book/:id", h.EditBook)
	admin.POST("/admin/delete/:id", h.AdminDeleteBook)

	return r
}
