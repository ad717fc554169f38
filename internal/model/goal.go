package model

import "time"

const (
	DefaultTargetAmount int64 = 10_000_000
	DefaultTargetPoints int64 = 1_000
)

// Goal holds the team targets for one month, keyed "YYYY-MM".
type Goal struct {
	Month        string    `gorm:"primaryKey" json:"month"`
	TargetAmount int64     `json:"target_amount"`
	TargetPoints int64     `json:"target_points"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
