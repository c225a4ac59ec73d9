package users

import "time"

type User struct {
	ID           string
	UserName     string
	Salt         []byte
	PasswordHash []byte
	CreatedAt    time.Time
}
