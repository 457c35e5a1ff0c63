package db

import (
	"github.com/khaata-app/khaata-server/internal/models"
	"gorm.io/gorm"
)

// Seed inserts the default expense categories for every user that has none
// yet. Idempotent; safe to run on every boot when DB_SEED is set.
func Seed(db *gorm.DB) {
	baseCategories := []models.ExpenseCategory{
		{Name: "Rent", Color: "#e74c3c", Icon: "home"},
		{Name: "Electricity", Color: "#f1c40f", Icon: "zap"},
		{Name: "Transport", Color: "#3498db", Icon: "truck"},
		{Name: "Salaries", Color: "#9b59b6", Icon: "users"},
		{Name: "Supplies", Color: "#2ecc71", Icon: "package"},
		{Name: "Miscellaneous", Color: "#95a5a6", Icon: "tag"},
	}
	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return
	}
	for _, u := range users {
		var count int64
		db.Model(&models.ExpenseCategory{}).Where("user_id = ?", u.ID).Count(&count)
		if count > 0 {
			continue
		}
		for _, c := range baseCategories {
			c.UserID = u.ID
			db.Create(&c)
		}
	}
}
