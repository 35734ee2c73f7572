package service

import (
	"context"
	"errors"

	"ali-plastic-pos/internal/model"
	"ali-plastic-pos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrSelfModification stops an owner from locking or deleting their own account.
var ErrSelfModification = errors.New("you cannot change your own access")

type UserService interface {
	ListUsers(ctx context.Context) ([]model.UserResponse, error)
	ToggleAuthorization(ctx context.Context, userID uuid.UUID, actor Actor) (*model.UserResponse, error)
	UpdateUserRole(ctx context.Context, userID uuid.UUID, roleID uint, actor Actor) (*model.UserResponse, error)
	DeleteUser(ctx context.Context, userID uuid.UUID, actor Actor) error
}

type userService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
}

func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository) UserService {
	return &userService{
		userRepo: userRepo,
		roleRepo: roleRepo,
	}
}

func (s *userService) findUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *userService) ListUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

// ToggleAuthorization flips the approval flag, granting or revoking shop access.
func (s *userService) ToggleAuthorization(ctx context.Context, userID uuid.UUID, actor Actor) (*model.UserResponse, error) {
	if userID.String() == actor.ID {
		return nil, ErrSelfModification
	}
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SetAuthorized(ctx, userID, !user.IsAuthorized, actor.auditID()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.IsAuthorized = !user.IsAuthorized
	resp := user.ToResponse()
	return &resp, nil
}

// UpdateUserRole moves the user to another role and resets their privileges to the role's set.
func (s *userService) UpdateUserRole(ctx context.Context, userID uuid.UUID, roleID uint, actor Actor) (*model.UserResponse, error) {
	if userID.String() == actor.ID {
		return nil, ErrSelfModification
	}
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	user.RoleID = &role.ID
	user.Role = role
	user.UpdatedBy = actor.auditID()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdatePrivileges(ctx, userID, role.Privileges); err != nil {
		return nil, err
	}

	updated, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := updated.ToResponse()
	return &resp, nil
}

func (s *userService) DeleteUser(ctx context.Context, userID uuid.UUID, actor Actor) error {
	if userID.String() == actor.ID {
		return ErrSelfModification
	}
	if _, err := s.findUser(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, userID)
}
