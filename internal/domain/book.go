package domain

type Book struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Title     string `gorm:"size:200;not null" json:"title"`
	Author    string `gorm:"size:100;not null" json:"author"`
	AuthorBio string `gorm:"type:text" json:"author_bio"`
	ImageURL  string `gorm:"size:500" json:"image_url"`
	BookURL   string `gorm:"size:500;not null" json:"book_url"`
	Available bool   `gorm:"not null;default:true" json:"available"` // true = 可借
}

func (Book) TableName() string { return "books" }
