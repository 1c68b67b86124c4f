package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/foldsnap/foldsnapbackend/models"
	"github.com/foldsnap/foldsnapbackend/permissions"
)

// GormUserRepository handles database operations for User entities
type GormUserRepository struct {
	DB *gorm.DB
}

// NewUserRepository creates a new instance of GormUserRepository
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{DB: db}
}

// Create creates a new user record in the database
func (r *GormUserRepository) Create(user *models.User) error {
	if err := r.DB.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Username, err)
	}
	return nil
}

// GetByID retrieves a user by their ID
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by their username
func (r *GormUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by username %s: %w", username, err)
	}
	return &user, nil
}

// EnsureAdmin creates a bootstrap administrator with the manage-media
// permission when the users table is empty, so a fresh install is usable.
func (r *GormUserRepository) EnsureAdmin(username, password string) error {
	var count int64
	if err := r.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	admin := models.User{
		Username:    username,
		Permissions: []string{permissions.ManageMedia},
	}
	if err := admin.SetPassword(password); err != nil {
		return fmt.Errorf("failed to hash bootstrap admin password: %w", err)
	}
	return r.Create(&admin)
}
