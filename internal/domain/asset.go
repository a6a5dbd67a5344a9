package domain

import "time"

type Asset struct {
	ID        AssetID   `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	UserID    UserID    `gorm:"type:uuid;index:ix_assets_user" db:"user_id" json:"userId"`
	Category  string    `gorm:"type:text;not null" db:"category" json:"category"`
	Name      string    `gorm:"type:text;not null" db:"name" json:"name"`
	Quantity  float64   `gorm:"not null;default:0" db:"quantity" json:"quantity"`
	UnitPrice float64   `gorm:"not null;default:0" db:"unit_price" json:"unitPrice"`
	CreatedAt time.Time `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (Asset) TableName() string { return "assets" }
