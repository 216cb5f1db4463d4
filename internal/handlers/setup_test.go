package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tecnicanomade/riego/internal/auth"
	"github.com/tecnicanomade/riego/internal/models"
)

var testAuthCfg = auth.Config{Secret: "testsecret", TokenTTL: time.Hour}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Project{}, &models.StockItem{}, &models.ProjectMaterial{}, &models.Invoice{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB, email string, role models.Role) models.User {
	t.Helper()
	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := models.User{Email: email, Password: hash, Name: "Usuario " + email, Role: role, Active: true}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

// asUser attaches an authenticated identity to the request context, the way
// the auth middleware does for a valid bearer token.
func asUser(r *http.Request, user models.User) *http.Request {
	identity := auth.Identity{UserID: user.ID, Role: user.Role}
	return r.WithContext(auth.WithIdentity(r.Context(), identity))
}
