package forum

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "github.com/emilythestrangee/askme/backend/internal/errors"
	"github.com/emilythestrangee/askme/backend/internal/models"
)

type NewUser struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanumunicode"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Avatar   string `json:"avatar" validate:"max=255"`
}

// Register creates an account. Username and email must be unused.
func (s *Service) Register(ctx context.Context, in NewUser) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := s.validationError("invalid registration", in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.InternalError("failed to hash password", err)
	}

	user := models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
		Avatar:   in.Avatar,
	}

	var taken int64
	err = s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", in.Username, in.Email).
		Count(&taken).Error
	if err != nil {
		return nil, apperrors.InternalError("failed to check existing users", err)
	}
	if taken > 0 {
		return nil, apperrors.ConflictError("username or email already exists")
	}

	// The unique indexes still catch a registration racing this one.
	err = s.db.WithContext(ctx).Create(&user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperrors.ConflictError("username or email already exists")
	}
	if err != nil {
		return nil, apperrors.InternalError("failed to create user", err)
	}

	s.log.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return &user, nil
}

// Authenticate checks an email/password pair. Unknown emails and wrong
// passwords fail identically.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Take(&user).Error
	if isNotFound(err) {
		return nil, apperrors.UnauthenticatedError("invalid credentials")
	}
	if err != nil {
		return nil, apperrors.InternalError("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.UnauthenticatedError("invalid credentials")
	}
	return &user, nil
}

// GetUser loads an account including private fields.
func (s *Service) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Take(&user, id).Error
	if isNotFound(err) {
		return nil, apperrors.NotFoundError("user not found").WithContext("id", id)
	}
	if err != nil {
		return nil, apperrors.InternalError("failed to load user", err)
	}
	return &user, nil
}

// Profile returns the public view of a user with activity counters.
func (s *Service) Profile(ctx context.Context, id uint) (*models.UserProfile, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	profile := models.UserProfile{User: user.Public()}
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Question{}).Where("author_id = ?", id).Count(&profile.QuestionCount).Error; err != nil {
		return nil, apperrors.InternalError("failed to count questions", err)
	}
	if err := db.Model(&models.Answer{}).Where("author_id = ?", id).Count(&profile.AnswerCount).Error; err != nil {
		return nil, apperrors.InternalError("failed to count answers", err)
	}
	return &profile, nil
}

type ProfileUpdate struct {
	Bio    *string `json:"bio" validate:"omitempty,max=500"`
	Avatar *string `json:"avatar" validate:"omitempty,max=255"`
}

// UpdateProfile changes the bio and avatar of the requester's own account.
// Nil fields are left as they are.
func (s *Service) UpdateProfile(ctx context.Context, userID, requesterID uint, in ProfileUpdate) (*models.User, error) {
	if err := requireUser(requesterID, "update a profile"); err != nil {
		return nil, err
	}
	if userID != requesterID {
		return nil, apperrors.PermissionDenied("you can only update your own profile")
	}
	if err := s.validationError("invalid profile", in); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Bio != nil {
		updates["bio"] = strings.TrimSpace(*in.Bio)
	}
	if in.Avatar != nil {
		updates["avatar"] = strings.TrimSpace(*in.Avatar)
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return user, nil
	}

	updates["updated_at"] = s.clock.Now().UTC()
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.InternalError("failed to update profile", err)
	}
	return s.GetUser(ctx, userID)
}
