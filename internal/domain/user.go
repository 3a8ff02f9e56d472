package domain

import "time"

// User — пользователь фудграма. Пароль хранится только в виде bcrypt-хеша.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:150;not null;uniqueIndex;uniqueIndex:idx_users_username_email"`
	Email        string    `json:"email" gorm:"size:254;not null;uniqueIndex;uniqueIndex:idx_users_username_email"`
	FirstName    string    `json:"first_name" gorm:"size:150"`
	LastName     string    `json:"last_name" gorm:"size:150"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Subscription — направленная подписка user → author.
// Пара (user, author) уникальна, подписка на себя запрещена CHECK-ограничением.
type Subscription struct {
	ID       int64 `json:"id" gorm:"primaryKey"`
	UserID   int64 `json:"user_id" gorm:"not null;uniqueIndex:idx_subscriptions_user_author;check:chk_no_self_subscribe,user_id <> author_id"`
	AuthorID int64 `json:"author_id" gorm:"not null;uniqueIndex:idx_subscriptions_user_author"`

	User   *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Author *User `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
}

func (Subscription) TableName() string { return "subscriptions" }
