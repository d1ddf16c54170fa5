package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-library-services/internal/core/auth"
	"go-library-services/internal/domain"
	"go-library-services/internal/repo"
	"go-library-services/internal/service"
)

func init() { gin.SetMode(gin.TestMode) }

// 单连接内存 sqlite，事务串行化，测试结果可复现
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&domain.User{}, &domain.Book{}, &domain.Borrow{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestJWTer() *auth.JWTer {
	return &auth.JWTer{Secret: []byte("test-secret"), Issuer: "library", TTL: 24 * time.Hour}
}

// testStack 一套库 + 三个服务引擎，模拟共享数据库的多进程部署
type testStack struct {
	db     *gorm.DB
	jwter  *auth.JWTer
	auth   *gin.Engine
	book   *gin.Engine
	borrow *gin.Engine
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	db := newTestDB(t)
	j := newTestJWTer()
	l := zap.NewNop()
	users := repo.NewUserRepo(db)
	books := repo.NewBookRepo(db)
	borrows := repo.NewBorrowRepo(db)
	return &testStack{
		db:     db,
		jwter:  j,
		auth:   NewAuthEngine(l, service.NewAuthService(users, j, l), j),
		book:   NewBookEngine(l, service.NewBookService(books, nil, l), j),
		borrow: NewBorrowEngine(l, service.NewBorrowService(db, borrows, books, nil, l), j),
	}
}

// token 直接签一个 token，绕过 signup/login
func (s *testStack) token(t *testing.T, userID uint, username, role string) string {
	t.Helper()
	tok, err := s.jwter.Issue(userID, username, role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func (s *testStack) seedUser(t *testing.T, username, role string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, PasswordHash: "x", Role: role}
	if err := s.db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func (s *testStack) seedBook(t *testing.T, title string) *domain.Book {
	t.Helper()
	b := &domain.Book{Title: title, Author: "Test Author", BookURL: "http://example.com/" + title, Available: true}
	if err := s.db.Create(b).Error; err != nil {
		t.Fatalf("seed book: %v", err)
	}
	return b
}

// doJSON 发请求；token 为空则不带 Authorization 头
func doJSON(t *testing.T, e *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}

func wantError(t *testing.T, w *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	wantStatus(t, w, status)
	if got := decode(t, w)["error"]; got != msg {
		t.Fatalf("error = %q, want %q", got, msg)
	}
}
