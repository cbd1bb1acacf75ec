package database

import (
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"golang.org/x/crypto/bcrypt"

	"violence-detection/cmd/config"
	"violence-detection/pkg/models"
)

var DB *gorm.DB

// Init opens the sqlite database at path and migrates every model.
func Init(path string) error {
	db, err := gorm.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	// sqlite allows a single writer; ":memory:" is also per connection.
	db.DB().SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Session{}, &models.Video{}, &models.Detection{}).Error; err != nil {
		db.Close()
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	DB = db
	return nil
}

// CreateUser stores a new account with a bcrypt hashed password.
func CreateUser(username, password, role string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if role == "" {
		role = "user"
	}

	user := models.User{
		Username: username,
		Password: string(hashed),
		Role:     role,
	}
	if err := DB.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", username, err)
	}
	return &user, nil
}

// Seed creates the configured accounts that are not present yet.
func Seed(users []config.SeedUser) error {
	for _, u := range users {
		var count int
		if err := DB.Model(&models.User{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
			return fmt.Errorf("lookup user %s: %w", u.Username, err)
		}
		if count > 0 {
			continue
		}
		if _, err := CreateUser(u.Username, u.Password, u.Role); err != nil {
			return err
		}
	}
	return nil
}

func FindUser(username string) (*models.User, error) {
	var user models.User
	if err := DB.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
