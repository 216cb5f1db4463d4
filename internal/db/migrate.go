package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tecnicanomade/riego/internal/auth"
	"github.com/tecnicanomade/riego/internal/config"
	"github.com/tecnicanomade/riego/internal/models"
)

// Migrate applies the GORM auto-migrations for all entities.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.StockItem{},
		&models.ProjectMaterial{},
		&models.Invoice{},
	)
}

// Seed creates the default administrator account if it does not exist yet.
func Seed(conn *gorm.DB, admin config.AdminConfig) error {
	var existing models.User
	err := conn.Where("email = ?", admin.Email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("seed admin lookup: %w", err)
	}

	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("seed admin hash: %w", err)
	}
	user := models.User{
		Email:    admin.Email,
		Password: hash,
		Name:     admin.Name,
		Role:     models.RoleAdmin,
		Active:   true,
	}
	if err := conn.Create(&user).Error; err != nil {
		return fmt.Errorf("seed admin create: %w", err)
	}
	return nil
}
