package utils

import "golang.org/x/crypto/bcrypt"

// MinPasswordLen 管理端建用户时的最短口令长度
const MinPasswordLen = 6

func HashPassword(pw string) string {
	b, _ := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b)
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
