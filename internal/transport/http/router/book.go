package router

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-library-services/internal/core/auth"
	"go-library-services/internal/domain"
	"go-library-services/internal/service"
	mdw "go-library-services/internal/transport/http/middleware"
	resp "go-library-services/internal/transport/http/response"
)

func bookJSON(b *domain.Book) gin.H {
	return gin.H{
		"id":         b.ID,
		"title":      b.Title,
		"author":     b.Author,
		"author_bio": b.AuthorBio,
		"image_url":  b.ImageURL,
		"book_url":   b.BookURL,
		"available":  b.Available,
	}
}

func booksJSON(books []domain.Book) []gin.H {
	out := make([]gin.H, 0, len(books))
	for i := range books {
		out = append(out, bookJSON(&books[i]))
	}
	return out
}

// NewBookEngine 图书目录路由。与 auth 服务一致走 422 认证失败契约。
func NewBookEngine(l *zap.Logger, svc *service.BookService, jwter *auth.JWTer) *gin.Engine {
	r := newEngine("book", l)
	opts := mdw.LegacyUnprocessable()

	authed := r.Group("", mdw.BearerAuth(jwter, opts))
	admin := authed.Group("", mdw.RequireAdmin(opts))

	// 普通用户只能看到可借的书
	authed.GET("/books", func(c *gin.Context) {
		books, err := svc.ListAvailable(c.Request.Context())
		if err != nil {
			resp.Err(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		c.JSON(http.StatusOK, gin.H{"books": booksJSON(books)})
	})

	admin.GET("/books/all", func(c *gin.Context) {
		books, err := svc.ListAll(c.Request.Context())
		if err != nil {
			resp.Err(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		c.JSON(http.StatusOK, gin.H{"books": booksJSON(books)})
	})

	authed.GET("/books/:id", func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			resp.Err(c, http.StatusNotFound, "Book not found")
			return
		}
		b, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			resp.Err(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		if b == nil {
			resp.Err(c, http.StatusNotFound, "Book not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"book": bookJSON(b)})
	})

	admin.POST("/books", func(c *gin.Context) {
		var in struct {
			Title     string `json:"title"`
			Author    string `json:"author"`
			AuthorBio string `json:"author_bio"`
			ImageURL  string `json:"image_url"`
			BookURL   string `json:"book_url"`
		}
		_ = c.ShouldBindJSON(&in)
		var missing []string
		if in.Title == "" {
			missing = append(missing, "title")
		}
		if in.Author == "" {
			missing = append(missing, "author")
		}
		if in.BookURL == "" {
			missing = append(missing, "book_url")
		}
		if len(missing) > 0 {
			resp.Err(c, http.StatusUnprocessableEntity,
				"Missing required fields: "+strings.Join(missing, ", ")+" (also provide author_bio, image_url)")
			return
		}
		b := &domain.Book{
			Title:     in.Title,
			Author:    in.Author,
			AuthorBio: in.AuthorBio,
			ImageURL:  in.ImageURL,
			BookURL:   in.BookURL,
		}
		if err := svc.Create(c.Request.Context(), b); err != nil {
			resp.Err(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message":    "Book added",
			"id":         b.ID,
			"title":      b.Title,
			"author":     b.Author,
			"author_bio": b.AuthorBio,
			"image_url":  b.ImageURL,
			"book_url":   b.BookURL,
		})
	})

	admin.PUT("/books/:id", func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			resp.Err(c, http.StatusNotFound, "Book not found")
			return
		}
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil || len(body) == 0 {
			resp.Err(c, http.StatusUnprocessableEntity, "No data provided")
			return
		}
		// 部分更新：只合并请求里出现的键
		fields := map[string]any{}
		for key, col := range map[string]string{
			"title":      "title",
			"author":     "author",
			"author_bio": "author_bio",
			"image_url":  "image_url",
			"book_url":   "book_url",
			"available":  "available",
		} {
			if v, present := body[key]; present {
				fields[col] = v
			}
		}
		b, err := svc.Update(c.Request.Context(), id, fields)
		if errors.Is(err, service.ErrBookNotFound) {
			resp.Err(c, http.StatusNotFound, "Book not found")
			return
		}
		if err != nil {
			resp.Err(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Book updated", "book": bookJSON(b)})
	})

	admin.DELETE("/books/:id", func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			resp.Err(c, http.StatusNotFound, "Book not found")
			return
		}
		switch err := svc.Delete(c.Request.Context(), id); {
		case errors.Is(err, service.ErrBookNotFound):
			resp.Err(c, http.StatusNotFound, "Book not found")
		case err != nil:
			resp.Err(c, http.StatusInternalServerError, "Internal server error")
		default:
			resp.Msg(c, http.StatusOK, "Book deleted")
		}
	})

	return r
}
