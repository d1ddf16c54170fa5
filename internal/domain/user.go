package domain

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole 仅允许 user / admin 两种角色
func ValidRole(r string) bool { return r == RoleUser || r == RoleAdmin }

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;size:80;not null" json:"username"`
	PasswordHash string `gorm:"size:120;not null" json:"-"`
	Role         string `gorm:"size:20;not null;default:user" json:"role"` // "user"/"admin"
}

func (User) TableName() string { return "users" }
