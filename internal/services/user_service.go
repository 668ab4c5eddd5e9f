package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HugoSiliveri/StageConnect-sub000/internal/models"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/utils"
)

type UserService struct {
	db    *gorm.DB
	store ObjectStore
}

type UpdateProfileRequest struct {
	Username    string                 `json:"username,omitempty" validate:"omitempty,username"`
	ProfileData map[string]interface{} `json:"profile_data,omitempty"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform,omitempty"`
}

func NewUserService(db *gorm.DB, store ObjectStore) *UserService {
	return &UserService{
		db:    db,
		store: store,
	}
}

func (s *UserService) GetUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if req.Username != "" && req.Username != user.Username {
		var count int64
		s.db.Model(&models.User{}).Where("username = ? AND id != ?", req.Username, userID).Count(&count)
		if count > 0 {
			return nil, errors.New("username already taken")
		}
		user.Username = req.Username
	}

	if req.ProfileData != nil {
		if user.ProfileData == nil {
			user.ProfileData = make(models.JSONB)
		}
		for k, v := range req.ProfileData {
			user.ProfileData[k] = v
		}
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// UploadCV stores the intern's CV under their own key and records its name in
// the profile. Re-uploading under the same name overwrites the stored file.
func (s *UserService) UploadCV(ctx context.Context, userID uuid.UUID, fileName string, content []byte) error {
	if err := ValidateDocument(fileName, int64(len(content))); err != nil {
		return err
	}

	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}

	if user.UserType != models.UserTypeIntern {
		return errors.New("only interns can upload a CV")
	}

	if err := s.store.Put(ctx, ObjectKey(userID, fileName), content, "application/pdf"); err != nil {
		return fmt.Errorf("failed to store CV: %w", err)
	}

	if user.ProfileData == nil {
		user.ProfileData = make(models.JSONB)
	}
	user.ProfileData["cv_name"] = fileName

	if err := s.db.Save(user).Error; err != nil {
		return fmt.Errorf("failed to record CV name: %w", err)
	}

	return nil
}

// FetchCV downloads a user's stored CV.
func (s *UserService) FetchCV(ctx context.Context, ownerID uuid.UUID, fileName string) ([]byte, error) {
	return s.store.Get(ctx, ObjectKey(ownerID, fileName))
}

// RegisterDevice stores a push token for the user; an already registered
// token is re-bound to the user, so reinstalls don't pile up duplicates.
func (s *UserService) RegisterDevice(userID uuid.UUID, req *RegisterDeviceRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	var existing models.DeviceToken
	err := s.db.Where("token = ?", req.Token).First(&existing).Error
	if err == nil {
		if existing.UserID == userID {
			return nil
		}
		existing.UserID = userID
		existing.Platform = req.Platform
		return s.db.Save(&existing).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("database error: %w", err)
	}

	device := &models.DeviceToken{
		UserID:   userID,
		Token:    req.Token,
		Platform: req.Platform,
	}
	if err := s.db.Create(device).Error; err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}

	return nil
}
