package model

import "time"

// Project 对应于数据库中的 'projects' 表，表示一个工程项目。
// EstimatedCost 与 ActualCost 为项目级的总成本字段，由业务维护。
type Project struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string     `gorm:"type:varchar(100);not null" json:"name"`
	Description   string     `gorm:"type:text" json:"description"`
	Status        string     `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	EstimatedCost float64    `gorm:"type:decimal(14,2);not null;default:0" json:"estimatedCost"`
	ActualCost    float64    `gorm:"type:decimal(14,2);not null;default:0" json:"actualCost"`
	StartDate     *LocalTime `gorm:"type:datetime" json:"startDate"`
	EndDate       *LocalTime `gorm:"type:datetime" json:"endDate"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Project) TableName() string {
	return "projects"
}
