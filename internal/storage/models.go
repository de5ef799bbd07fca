package storage

import "time"

// Account is a registered user. Habit state is never stored here.
type Account struct {
	Username     string
	FirstName    string
	LastName     string
	PasswordHash []byte
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

func (a Account) DisplayName() string {
	return a.FirstName + " " + a.LastName
}
