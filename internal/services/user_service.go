package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"task-management-api/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PasswordHasher hashes and verifies credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (bool, error)
}

const (
	msgInvalidCredentials = "Invalid email or password."
	msgDeactivated        = "User account has been deactivated, contact the administrator"
)

// RegisterInput is the payload of UserService.Register.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	IsAdmin  bool
	Role     string
	Title    string
}

// ProfileInput lists the profile fields to change; empty values are kept.
type ProfileInput struct {
	Name  string
	Title string
	Role  string
}

// UserService manages accounts.
type UserService struct {
	db     *gorm.DB
	hasher PasswordHasher
}

func NewUserService(db *gorm.DB, hasher PasswordHasher) *UserService {
	return &UserService{db: db, hasher: hasher}
}

// Register creates an active account. The email must be unused.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if strings.TrimSpace(in.Name) == "" || email == "" || in.Password == "" {
		return nil, validationf("Name, email and password are required.")
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, wrapInternal(err, "check email")
	}
	if count > 0 {
		return nil, conflict("User already exists")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hash,
		IsAdmin:  in.IsAdmin,
		IsActive: true,
		Role:     in.Role,
		Title:    in.Title,
	}
	if err := db.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("User already exists")
		}
		return nil, wrapInternal(err, "create user")
	}
	log.WithField("user", user.ID).Info("user registered")
	return user, nil
}

// Authenticate checks credentials and returns the matching active user.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authFailure(msgInvalidCredentials)
		}
		return nil, wrapInternal(err, "load user")
	}
	if !user.IsActive {
		return nil, authFailure(msgDeactivated)
	}
	ok, err := s.hasher.Verify(user.Password, password)
	if err != nil {
		log.WithError(err).WithField("user", user.ID).Warn("password verification failed")
		return nil, authFailure(msgInvalidCredentials)
	}
	if !ok {
		return nil, authFailure(msgInvalidCredentials)
	}
	return &user, nil
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "User not found", "load user")
	}
	return &user, nil
}

// ListTeam returns every account, newest first.
func (s *UserService) ListTeam(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&users).Error; err != nil {
		return nil, wrapInternal(err, "list users")
	}
	return users, nil
}

// UpdateProfile changes name, title and role of a user.
func (s *UserService) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if v := strings.TrimSpace(in.Name); v != "" {
		updates["name"] = v
		user.Name = v
	}
	if v := strings.TrimSpace(in.Title); v != "" {
		updates["title"] = v
		user.Title = v
	}
	if v := strings.TrimSpace(in.Role); v != "" {
		updates["role"] = v
		user.Role = v
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, wrapInternal(err, "update user")
	}
	return user, nil
}

// ChangePassword stores a new hash for the user's password.
func (s *UserService) ChangePassword(ctx context.Context, id, password string) error {
	if password == "" {
		return validationf("Password is required.")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.updateColumn(ctx, id, "password", hash)
}

// SetActive activates or deactivates an account.
func (s *UserService) SetActive(ctx context.Context, id string, active bool) error {
	return s.updateColumn(ctx, id, "is_active", active)
}

// Delete removes an account together with its team and read memberships.
func (s *UserService) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound("User not found")
		}
		for _, stmt := range []string{
			"DELETE FROM task_team WHERE user_id = ?",
			"DELETE FROM subtask_team WHERE user_id = ?",
			"DELETE FROM notice_team WHERE user_id = ?",
			"DELETE FROM notice_reads WHERE user_id = ?",
		} {
			if err := tx.Exec(stmt, id).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return wrapInternal(err, "delete user")
}

func (s *UserService) updateColumn(ctx context.Context, id, column string, value any) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return wrapInternal(res.Error, "update user")
	}
	if res.RowsAffected == 0 {
		return notFound("User not found")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
