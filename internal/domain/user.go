package domain

import "time"

// User is an operator account. CustomerID links Customer-role accounts to
// the customer record they belong to; Admin and Staff accounts carry none.
type User struct {
	ID         int64     `gorm:"primaryKey" json:"id,string"`
	Username   string    `gorm:"size:50;uniqueIndex" json:"username"`
	Password   string    `gorm:"size:200" json:"-"`
	Role       string    `gorm:"size:20;index" json:"role"`
	CustomerID *int64    `gorm:"index" json:"customer_id,string,omitempty"`
	Realname   string    `gorm:"size:150" json:"realname"`
	Status     string    `gorm:"size:20;index;default:'enabled'" json:"status"`
	LastLogin  time.Time `json:"last_login"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName Specify table name
func (User) TableName() string {
	return "users"
}
