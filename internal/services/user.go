package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/edusloth/edusloth-backend/internal/logger"
	"github.com/edusloth/edusloth-backend/internal/repos"
	"github.com/edusloth/edusloth-backend/internal/types"
)

type UserUpdateInput struct {
	Email          *string
	Password       *string
	FullName       *string
	EducationLevel *string
	StudyInterests []string
}

type UserService interface {
	GetUser(ctx context.Context, userID string) (*types.User, error)
	UpdateUser(ctx context.Context, userID string, in UserUpdateInput) (*types.User, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
	}
}

func (us *userService) GetUser(ctx context.Context, userID string) (*types.User, error) {
	return us.userRepo.GetByID(ctx, userID)
}

func (us *userService) UpdateUser(ctx context.Context, userID string, in UserUpdateInput) (*types.User, error) {
	set := bson.M{}
	if in.Email != nil {
		set["email"] = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Password != nil && *in.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		set["hashed_password"] = string(hashed)
	}
	if in.FullName != nil {
		set["full_name"] = strings.TrimSpace(*in.FullName)
	}
	if in.EducationLevel != nil {
		set["education_level"] = *in.EducationLevel
	}
	if in.StudyInterests != nil {
		set["study_interests"] = in.StudyInterests
	}
	if len(set) == 0 {
		return us.userRepo.GetByID(ctx, userID)
	}
	return us.userRepo.Update(ctx, userID, set)
}
