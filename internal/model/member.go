package model

import "time"

// Member is a person tasks are assigned to. Members are listed in creation
// order.
type Member struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"index" json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}
