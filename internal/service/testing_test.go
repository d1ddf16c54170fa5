package service

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-library-services/internal/core/auth"
	"go-library-services/internal/domain"
	"go-library-services/internal/repo"
)

// newTestDB 内存 sqlite；限制单连接保证 :memory: 始终指向同一个库，
// 事务也因此串行化，借书并发测试结果可复现
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

func newTestAuthService(t *testing.T, db *gorm.DB) *AuthService {
	t.Helper()
	return NewAuthService(repo.NewUserRepo(db), newTestJWTer(), zap.NewNop())
}

func newTestBorrowService(t *testing.T, db *gorm.DB) *BorrowService {
	t.Helper()
	return NewBorrowService(db, repo.NewBorrowRepo(db), repo.NewBookRepo(db), nil, zap.NewNop())
}

func seedBook(t *testing.T, db *gorm.DB, title string) *domain.Book {
	t.Helper()
	b := &domain.Book{Title: title, Author: "Test Author", BookURL: "http://example.com/" + title, Available: true}
	if err := db.Create(b).Error; err != nil {
		t.Fatalf("seed book: %v", err)
	}
	return b
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, PasswordHash: "x", Role: role}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}
