package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"go-library-services/internal/domain"
)

type BorrowRepo struct{ db *gorm.DB }

func NewBorrowRepo(db *gorm.DB) *BorrowRepo { return &BorrowRepo{db: db} }

// BorrowedBook 用户在借列表的联查行
type BorrowedBook struct {
	ID         uint      `json:"id"` // 借阅记录 ID，归还时用
	BookID     uint      `json:"book_id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	AuthorBio  string    `json:"author_bio"`
	ImageURL   string    `json:"image_url"`
	BookURL    string    `json:"book_url"`
	BorrowDate time.Time `json:"borrow_date"`
}

// BorrowReport 管理端报表行（borrow × book × user 三表联查）
type BorrowReport struct {
	BorrowID   uint      `json:"borrow_id"`
	UserID     uint      `json:"user_id"`
	Username   string    `json:"username"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	BorrowDate time.Time `json:"borrow_date"`
	Available  bool      `json:"available"`
}

func (r *BorrowRepo) Create(tx *gorm.DB, b *domain.Borrow) error {
	return tx.Create(b).Error
}

func (r *BorrowRepo) FindByID(ctx context.Context, id uint) (*domain.Borrow, error) {
	var b domain.Borrow
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &b, err
}

func (r *BorrowRepo) Delete(tx *gorm.DB, id uint) error {
	return tx.Where("id = ?", id).Delete(&domain.Borrow{}).Error
}

func (r *BorrowRepo) ListForUser(ctx context.Context, userID uint) ([]BorrowedBook, error) {
	var rows []BorrowedBook
	err := r.db.WithContext(ctx).
		Table("borrows").
		Select("borrows.id AS id, books.id AS book_id, books.title, books.author, books.author_bio, books.image_url, books.book_url, borrows.borrow_date").
		Joins("JOIN books ON borrows.book_id = books.id").
		Where("borrows.user_id = ?", userID).
		Order("borrows.borrow_date DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *BorrowRepo) ListAll(ctx context.Context) ([]BorrowReport, error) {
	var rows []BorrowReport
	err := r.db.WithContext(ctx).
		Table("borrows").
		Select("borrows.id AS borrow_id, borrows.user_id, users.username, books.title, books.author, borrows.borrow_date, books.available").
		Joins("JOIN books ON borrows.book_id = books.id").
		Joins("JOIN users ON borrows.user_id = users.id").
		Order("borrows.borrow_date DESC").
		Scan(&rows).Error
	return rows, err
}
