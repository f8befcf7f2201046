package model

import "time"

// Product 对应于数据库中的 'products' 表，表示一种可生产的产品。
type Product struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"type:varchar(100);not null" json:"name"`
	Code          string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Specification string    `gorm:"type:varchar(255)" json:"specification"`
	Unit          string    `gorm:"type:varchar(20)" json:"unit"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Product) TableName() string {
	return "products"
}
