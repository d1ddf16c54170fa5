package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-library-services/internal/core/auth"
	"go-library-services/internal/repo"
	"go-library-services/internal/service"
	mdw "go-library-services/internal/transport/http/middleware"
	resp "go-library-services/internal/transport/http/response"
)

// NewBorrowEngine 借阅服务路由。该服务认证失败返回 401（与 auth/book 的 422 不同，
// 属历史契约差异，原样保留）。
func NewBorrowEngine(l *zap.Logger, svc *service.BorrowService, jwter *auth.JWTer) *gin.Engine {
	r := newEngine("borrow", l)
	opts := mdw.Unauthorized()

	authed := r.Group("", mdw.BearerAuth(jwter, opts))
	admin := authed.Group("", mdw.RequireAdmin(opts))

	authed.POST("/borrow", func(c *gin.Context) {
		var in struct {
			UserID uint `json:"user_id"`
			BookID uint `json:"book_id"`
		}
		if err := c.ShouldBindJSON(&in); err != nil || in.UserID == 0 || in.BookID == 0 {
			resp.Err(c, http.StatusUnprocessableEntity, "Missing user_id or book_id")
			return
		}
		claims := mdw.MustClaims(c)
		// 只能为自己借书
		if claims.UserID != in.UserID {
			resp.Err(c, http.StatusForbidden, "Unauthorized")
			return
		}
		borrowID, err := svc.Borrow(c.Request.Context(), in.UserID, in.BookID)
		if errors.Is(err, service.ErrBookNotAvailable) {
			resp.Err(c, http.StatusNotFound, "Book not available")
			return
		}
		if err != nil {
			resp.Err(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Book borrowed successfully", "borrow_id": borrowID})
	})

	authed.POST("/return/:borrow_id", func(c *gin.Context) {
		borrowID, ok := parseID(c, "borrow_id")
		if !ok {
			resp.Err(c, http.StatusNotFound, "Borrow not found")
			return
		}
		claims := mdw.MustClaims(c)
		switch err := svc.Return(c.Request.Context(), claims.UserID, borrowID); {
		case errors.Is(err, service.ErrBorrowNotFound):
			resp.Err(c, http.StatusNotFound, "Borrow not found")
		case errors.Is(err, service.ErrNotOwner):
			resp.Err(c, http.StatusForbidden, "Unauthorized to return this book")
		case err != nil:
			resp.Err(c, http.StatusInternalServerError, "Internal server error")
		default:
			resp.Msg(c, http.StatusOK, "Book returned successfully")
		}
	})

	authed.GET("/borrowed", func(c *gin.Context) {
		claims := mdw.MustClaims(c)
		rows, err := svc.ListForUser(c.Request.Context(), claims.UserID)
		if err != nil {
			resp.Err(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		if rows == nil {
			rows = []repo.BorrowedBook{} // 契约要求空数组而不是 null
		}
		c.JSON(http.StatusOK, gin.H{"borrowed_books": rows})
	})

	admin.GET("/borrows/all", func(c *gin.Context) {
		rows, err := svc.ListAll(c.Request.Context())
		if err != nil {
			resp.Err(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		if rows == nil {
			rows = []repo.BorrowReport{}
		}
		c.JSON(http.StatusOK, gin.H{"borrows": rows})
	})

	return r
}
