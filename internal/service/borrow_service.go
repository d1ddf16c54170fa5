package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-library-services/internal/core/cache"
	"go-library-services/internal/domain"
	"go-library-services/internal/repo"
)

var (
	// ErrBookNotAvailable 书不存在或已被借走，线上契约不区分这两种情况
	ErrBookNotAvailable = errors.New("book not available")
	ErrBorrowNotFound   = errors.New("borrow not found")
	ErrNotOwner         = errors.New("not the owner of this borrow")
)

type BorrowService struct {
	db      *gorm.DB
	borrows *repo.BorrowRepo
	books   *repo.BookRepo
	cache   *cache.Cache // 可为 nil
	log     *zap.Logger
}

func NewBorrowService(db *gorm.DB, borrows *repo.BorrowRepo, books *repo.BookRepo, c *cache.Cache, log *zap.Logger) *BorrowService {
	return &BorrowService{db: db, borrows: borrows, books: books, cache: c, log: log}
}

// Borrow 单事务内完成：条件翻转 available + 插入借阅记录。
// 条件更新 0 行受影响即视为不可借，并发借同一本书只会有一个成功。
func (s *BorrowService) Borrow(ctx context.Context, userID, bookID uint) (uint, error) {
	var borrowID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.books.AcquireForBorrow(tx, bookID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrBookNotAvailable
		}
		b := &domain.Borrow{UserID: userID, BookID: bookID}
		if err := s.borrows.Create(tx, b); err != nil {
			return err
		}
		borrowID = b.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, bookID)
	s.log.Info("book borrowed", zap.Uint("book_id", bookID), zap.Uint("user_id", userID), zap.Uint("borrow_id", borrowID))
	return borrowID, nil
}

// Return 归还：校验归属后翻回可借并删除记录（不保留历史）
func (s *BorrowService) Return(ctx context.Context, callerID, borrowID uint) error {
	b, err := s.borrows.FindByID(ctx, borrowID)
	if err != nil {
		return err
	}
	if b == nil {
		return ErrBorrowNotFound
	}
	if b.UserID != callerID {
		return ErrNotOwner
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.books.Release(tx, b.BookID); err != nil {
			return err
		}
		return s.borrows.Delete(tx, borrowID)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, b.BookID)
	s.log.Info("book returned", zap.Uint("borrow_id", borrowID), zap.Uint("user_id", callerID))
	return nil
}

func (s *BorrowService) ListForUser(ctx context.Context, userID uint) ([]repo.BorrowedBook, error) {
	return s.borrows.ListForUser(ctx, userID)
}

func (s *BorrowService) ListAll(ctx context.Context) ([]repo.BorrowReport, error) {
	return s.borrows.ListAll(ctx)
}

func (s *BorrowService) invalidate(ctx context.Context, bookID uint) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, cache.BookKey(bookID))
	}
}
