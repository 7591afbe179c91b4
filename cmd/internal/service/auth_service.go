package service

import (
	"time"

	"clinicdesk/cmd/internal/domain/entity"
	"clinicdesk/cmd/internal/utils"
	"clinicdesk/cmd/internal/utils/apierror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type UserRepository interface {
	FindByID(id int) (*entity.User, error)
	FindByUsername(username string) (*entity.User, error)
	ExistsByUsernameOrEmail(username, email string) (bool, error)
	TakenByOther(id int, username, email string) (bool, error)
	Save(user *entity.User) error
	UpdatePassword(id int, hash string, changedAt time.Time) error
	UpdateProfile(id int, username, email string) (int64, error)
	Delete(id int) (int64, error)
}

type RegisterRequest struct {
	Username        string `json:"username" form:"username" validate:"required,max=80"`
	Email           string `json:"email" form:"email" validate:"required,max=254"`
	Password        string `json:"password" form:"password" validate:"required,max=64"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

var (
	errPasswordMismatch   = apierror.NewSimple(400, "Passwords do not match")
	errUserExists         = apierror.NewSimple(400, "Username or Email already exists.")
	errInvalidCredentials = apierror.NewSimple(401, "Invalid username or password.")
)

type DefaultAuthService struct {
	UserRepo UserRepository
	Validate *validator.Validate
}

func NewAuthService(userRepo UserRepository, validate *validator.Validate) *DefaultAuthService {
	return &DefaultAuthService{UserRepo: userRepo, Validate: validate}
}

// Register stores a new user with a one-way password hash. No email
// verification and no strength rule beyond the form being filled in.
func (a *DefaultAuthService) Register(req *RegisterRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	if err := a.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	if req.Password != req.ConfirmPassword {
		return errPasswordMismatch
	}

	taken, err := a.UserRepo.ExistsByUsernameOrEmail(req.Username, req.Email)
	if err != nil {
		log.Errorf("failed to check existing users for %s: %v", req.Username, err)
		return apierror.InternalServerError
	}
	if taken {
		return errUserExists
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		log.Errorf("failed to hash password for %s: %v", req.Username, err)
		return apierror.InternalServerError
	}

	user := &entity.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
	}
	if err := a.UserRepo.Save(user); err != nil {
		log.Errorf("failed to create user %s: %v", req.Username, err)
		return apierror.InternalServerError
	}
	return nil
}

// Login verifies the credentials and returns the matched user. Unknown
// username and wrong password fail with the same message.
func (a *DefaultAuthService) Login(req *LoginRequest) (*entity.User, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := a.Validate.Struct(req); err != nil {
		return nil, errInvalidCredentials
	}

	user, err := a.UserRepo.FindByUsername(req.Username)
	if err != nil {
		log.Errorf("failed to fetch user %s: %v", req.Username, err)
		return nil, apierror.InternalServerError
	}

	if user == nil || !utils.CheckPasswordHash(req.Password, user.Password) {
		return nil, errInvalidCredentials
	}
	return user, nil
}
