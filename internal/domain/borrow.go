package domain

import "time"

// Borrow 借阅记录：归还时整行删除（与线上契约一致，不保留历史）
type Borrow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	BookID     uint      `gorm:"index;not null" json:"book_id"`
	BorrowDate time.Time `gorm:"autoCreateTime" json:"borrow_date"`
}

func (Borrow) TableName() string { return "borrows" }
