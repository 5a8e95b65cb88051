package model

// User is a player account. Only the fields this service touches are
// modeled; the rest of the account lives with the auth service.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Coins        int    `json:"coins"`
	XP           int    `json:"xp"`
	Level        int    `json:"level"`
}

// XPToNextLevel returns the XP required to advance from the current level.
func (u *User) XPToNextLevel() int {
	return 100 + u.Level*20
}

// AddXP grants experience and applies level-ups, carrying surplus XP
// across level boundaries.
func (u *User) AddXP(amount int) {
	u.XP += amount
	for needed := u.XPToNextLevel(); u.XP >= needed; needed = u.XPToNextLevel() {
		u.Level++
		u.XP -= needed
	}
}
