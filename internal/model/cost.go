package model

import "time"

// ProductionCost 对应于 'production_costs' 表，记录一次生产的单位成本。
type ProductionCost struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID  uint      `gorm:"index;not null" json:"productId"`
	Quantity   float64   `gorm:"type:decimal(14,2);not null" json:"quantity"`
	UnitCost   float64   `gorm:"type:decimal(14,2);not null" json:"unitCost"`
	RecordDate LocalTime `gorm:"type:datetime;not null" json:"recordDate"`
	Notes      string    `gorm:"type:varchar(255)" json:"notes"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (ProductionCost) TableName() string {
	return "production_costs"
}

// TransportationCost 对应于 'transportation_costs' 表，记录项目的一笔运输费用。
type TransportationCost struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID   uint      `gorm:"index;not null" json:"projectId"`
	Origin      string    `gorm:"type:varchar(100)" json:"origin"`
	Destination string    `gorm:"type:varchar(100)" json:"destination"`
	Amount      float64   `gorm:"type:decimal(14,2);not null" json:"amount"`
	RecordDate  LocalTime `gorm:"type:datetime;not null" json:"recordDate"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (TransportationCost) TableName() string {
	return "transportation_costs"
}

// InstallationCost 对应于 'installation_costs' 表，记录项目的一笔安装费用。
type InstallationCost struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID  uint      `gorm:"index;not null" json:"projectId"`
	Crew       string    `gorm:"type:varchar(100)" json:"crew"`
	LaborHours float64   `gorm:"type:decimal(10,2)" json:"laborHours"`
	Amount     float64   `gorm:"type:decimal(14,2);not null" json:"amount"`
	RecordDate LocalTime `gorm:"type:datetime;not null" json:"recordDate"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (InstallationCost) TableName() string {
	return "installation_costs"
}
