package services

import (
	"errors"

	"github.com/nocyshop/nocy-shop-api/models"
	"gorm.io/gorm"
)

// GetShopStatus reads the shop-open flag, lazily creating the singleton
// config row defaulting to open when it does not exist yet.
func GetShopStatus(db *gorm.DB) (bool, error) {
	var cfg models.ShopConfig
	err := db.First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg = models.ShopConfig{IsShopOpen: true}
		if err := db.Create(&cfg).Error; err != nil {
			return true, err
		}
		return true, nil
	}
	if err != nil {
		return true, err
	}
	return cfg.IsShopOpen, nil
}

// SetShopStatus updates the shop-open flag, creating the singleton row if
// it is missing.
func SetShopStatus(db *gorm.DB, open bool) error {
	var cfg models.ShopConfig
	err := db.First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&models.ShopConfig{IsShopOpen: open}).Error
	}
	if err != nil {
		return err
	}
	return db.Model(&cfg).Update("is_shop_open", open).Error
}
