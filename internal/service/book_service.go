package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"go-library-services/internal/core/cache"
	"go-library-services/internal/domain"
	"go-library-services/internal/repo"
)

var ErrBookNotFound = errors.New("book not found")

const bookCacheTTL = 5 * time.Minute

type BookService struct {
	books *repo.BookRepo
	cache *cache.Cache // 可为 nil（测试环境不接 redis）
	log   *zap.Logger
}

func NewBookService(books *repo.BookRepo, c *cache.Cache, log *zap.Logger) *BookService {
	return &BookService{books: books, cache: c, log: log}
}

func (s *BookService) ListAvailable(ctx context.Context) ([]domain.Book, error) {
	return s.books.ListAvailable(ctx)
}

func (s *BookService) ListAll(ctx context.Context) ([]domain.Book, error) {
	return s.books.ListAll(ctx)
}

// Get 详情走 redis 读缓存；写路径和借还都会打掉对应键
func (s *BookService) Get(ctx context.Context, id uint) (*domain.Book, error) {
	if s.cache == nil {
		return s.books.FindByID(ctx, id)
	}
	return cache.GetOrLoadJSON(s.cache, ctx, cache.BookKey(id), bookCacheTTL,
		func(ctx context.Context) (*domain.Book, error) {
			return s.books.FindByID(ctx, id)
		})
}

func (s *BookService) Create(ctx context.Context, b *domain.Book) error {
	b.Available = true
	if err := s.books.Create(ctx, b); err != nil {
		return err
	}
	s.log.Info("book added", zap.Uint("id", b.ID), zap.String("title", b.Title))
	return nil
}

// Update 部分更新：只合并请求里出现的键
func (s *BookService) Update(ctx context.Context, id uint, fields map[string]any) (*domain.Book, error) {
	b, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBookNotFound
	}
	if err := s.books.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	s.log.Info("book updated", zap.Uint("id", id))
	return s.books.FindByID(ctx, id)
}

func (s *BookService) Delete(ctx context.Context, id uint) error {
	rows, err := s.books.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrBookNotFound
	}
	s.invalidate(ctx, id)
	s.log.Info("book deleted", zap.Uint("id", id))
	return nil
}

func (s *BookService) invalidate(ctx context.Context, id uint) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, cache.BookKey(id))
	}
}
