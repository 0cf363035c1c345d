package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/media"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MinPasswordLength is enforced on registration and password changes
const MinPasswordLength = 8

// Registration holds the fields of a sign-up request
type Registration struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// UserService manages accounts, credentials and avatars
type UserService interface {
	CreateUser(ctx context.Context, reg Registration) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]models.User, int64, error)
	// Authenticate checks an email / password pair
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	SetPassword(ctx context.Context, userID uint, current, next string) error
	SetAvatar(ctx context.Context, userID uint, image *media.Upload) (*models.User, error)
	DeleteAvatar(ctx context.Context, userID uint) error
	// SubscribedTo returns which of authorIDs the viewer follows
	SubscribedTo(ctx context.Context, viewerID uint, authorIDs []uint) (map[uint]bool, error)
}

type userService struct {
	db     *gorm.DB
	images media.Store
}

// NewUserService creates a new instance of UserService
func NewUserService(db *gorm.DB, images media.Store) UserService {
	return &userService{db: db, images: images}
}

func (s *userService) CreateUser(ctx context.Context, reg Registration) (*models.User, error) {
	if len(reg.Password) < MinPasswordLength {
		return nil, withMessage(ErrInvalidCredentials,
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	user := &models.User{
		Email:     strings.ToLower(strings.TrimSpace(reg.Email)),
		Username:  strings.TrimSpace(reg.Username),
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Password:  reg.Password,
		Role:      models.RoleUser,
	}

	db := s.db.WithContext(ctx)
	var existing models.User
	err := db.Where("email = ?", user.Email).Or("username = ?", user.Username).First(&existing).Error
	if err == nil {
		return nil, duplicateUserError(existing, user)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := user.HashPassword(); err != nil {
		return nil, err
	}
	if err := db.Create(user).Error; err != nil {
		// lost a race against a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, withMessage(ErrAlreadyExists, "a user with this email or username already exists")
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")
	return user, nil
}

func duplicateUserError(existing models.User, candidate *models.User) error {
	if existing.Email == candidate.Email {
		return withMessage(ErrAlreadyExists, "a user with this email already exists")
	}
	return withMessage(ErrAlreadyExists, "a user with this username already exists")
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, withMessage(ErrNotFound, "user not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := findUser(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userService) ListUsers(ctx context.Context, offset, limit int) ([]models.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	users := []models.User{}
	page := query.Order("id").Offset(offset)
	if limit > 0 {
		page = page.Limit(limit)
	}
	if err := page.Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) SetPassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(current) {
		return withMessage(ErrInvalidCredentials, "current password is incorrect")
	}
	if len(next) < MinPasswordLength {
		return withMessage(ErrInvalidCredentials,
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	user.Password = next
	if err := user.HashPassword(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.User{ID: user.ID}).Update("password", user.Password).Error
}

func (s *userService) SetAvatar(ctx context.Context, userID uint, image *media.Upload) (*models.User, error) {
	if image == nil {
		return nil, ErrInvalidImage
	}
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := s.images.Save(ctx, "avatars", image)
	if err != nil {
		return nil, fmt.Errorf("store avatar: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.User{ID: user.ID}).Update("avatar", key).Error; err != nil {
		s.discardAvatar(ctx, key)
		return nil, err
	}

	if user.Avatar != nil {
		s.discardAvatar(ctx, *user.Avatar)
	}
	user.Avatar = &key
	return user, nil
}

func (s *userService) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Avatar == nil {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&models.User{ID: user.ID}).Update("avatar", nil).Error; err != nil {
		return err
	}
	s.discardAvatar(ctx, *user.Avatar)
	return nil
}

func (s *userService) SubscribedTo(ctx context.Context, viewerID uint, authorIDs []uint) (map[uint]bool, error) {
	set, err := subscribedAuthors(s.db.WithContext(ctx), viewerID, authorIDs)
	if err != nil {
		return nil, err
	}
	flags := make(map[uint]bool, len(set))
	for id := range set {
		flags[id] = true
	}
	return flags, nil
}

func (s *userService) discardAvatar(ctx context.Context, key string) {
	if err := s.images.Delete(ctx, key); err != nil {
		logrus.WithError(err).WithField("image", key).Warn("Failed to delete avatar")
	}
}
