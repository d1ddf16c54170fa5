package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-library-services/internal/domain"
)

type BookRepo struct{ db *gorm.DB }

func NewBookRepo(db *gorm.DB) *BookRepo { return &BookRepo{db: db} }

func (r *BookRepo) Create(ctx context.Context, b *domain.Book) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookRepo) FindByID(ctx context.Context, id uint) (*domain.Book, error) {
	var b domain.Book
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &b, err
}

func (r *BookRepo) ListAvailable(ctx context.Context) ([]domain.Book, error) {
	var books []domain.Book
	err := r.db.WithContext(ctx).Where("available = ?", true).Order("id").Find(&books).Error
	return books, err
}

func (r *BookRepo) ListAll(ctx context.Context) ([]domain.Book, error) {
	var books []domain.Book
	err := r.db.WithContext(ctx).Order("id").Find(&books).Error
	return books, err
}

// UpdateFields 部分更新：只写请求里出现过的列
func (r *BookRepo) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&domain.Book{}).Where("id = ?", id).Updates(fields).Error
}

func (r *BookRepo) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Book{})
	return res.RowsAffected, res.Error
}

// AcquireForBorrow 借出时的条件更新：仅当 available=true 才翻转，
// 0 行受影响说明书不存在或已被借走。并发借同一本书只会有一个成功。
func (r *BookRepo) AcquireForBorrow(tx *gorm.DB, bookID uint) (bool, error) {
	res := tx.Model(&domain.Book{}).
		Where("id = ? AND available = ?", bookID, true).
		Update("available", false)
	return res.RowsAffected == 1, res.Error
}

// Release 归还时翻回可借
func (r *BookRepo) Release(tx *gorm.DB, bookID uint) error {
	return tx.Model(&domain.Book{}).Where("id = ?", bookID).Update("available", true).Error
}
