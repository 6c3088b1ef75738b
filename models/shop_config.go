package models

import "time"

// ShopConfig is the singleton row gating whether the storefront accepts new
// doll commission submissions. Created lazily on first read (defaulting to
// open), toggled by admin, never deleted. The open default lives in the
// service, not in a column default: a column default would make gorm skip
// the false zero value on insert and silently reopen the shop.
type ShopConfig struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	IsShopOpen bool      `gorm:"not null" json:"isShopOpen"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for the ShopConfig model
func (ShopConfig) TableName() string {
	return "shop_config"
}
