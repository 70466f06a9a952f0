package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/collapp/collapp-api/internal/dto"
	"github.com/collapp/collapp-api/internal/models"
	"github.com/collapp/collapp-api/internal/repository"
)

// ErrProtectedAccount indicates an operation on a demo account that is locked.
var ErrProtectedAccount = errors.New("operation not allowed on demo accounts")

// protectedEmails are the seeded demo accounts whose role and existence are
// locked.
var protectedEmails = map[string]struct{}{
	"admin@collapp.app":     {},
	"schoolrep@collapp.app": {},
	"student@collapp.app":   {},
}

// AdminService exposes platform administration operations.
type AdminService interface {
	DashboardStats(ctx context.Context) (dto.DashboardStatsResponse, error)
	ListUsers(ctx context.Context) ([]dto.UserSummaryResponse, error)
	UpdateUser(ctx context.Context, id uint, payload dto.UserUpdateRequest) (dto.UserSummaryResponse, error)
	DeleteUser(ctx context.Context, id uint) error
}

type adminService struct {
	users     repository.UserRepository
	colleges  repository.CollegeRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAdminService constructs an AdminService instance.
func NewAdminService(users repository.UserRepository, colleges repository.CollegeRepository, validate *validator.Validate, logger zerolog.Logger) AdminService {
	return &adminService{
		users:     users,
		colleges:  colleges,
		validator: validate,
		logger:    logger.With().Str("component", "admin_service").Logger(),
	}
}

func (s *adminService) DashboardStats(ctx context.Context) (dto.DashboardStatsResponse, error) {
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return dto.DashboardStatsResponse{}, err
	}

	totalStudents, err := s.users.CountByRole(ctx, models.RoleStudent)
	if err != nil {
		return dto.DashboardStatsResponse{}, err
	}

	totalReps, err := s.users.CountByRole(ctx, models.RoleSchoolRep)
	if err != nil {
		return dto.DashboardStatsResponse{}, err
	}

	totalColleges, err := s.colleges.Count(ctx)
	if err != nil {
		return dto.DashboardStatsResponse{}, err
	}

	return dto.DashboardStatsResponse{
		TotalUsers:      totalUsers,
		TotalStudents:   totalStudents,
		TotalSchoolReps: totalReps,
		TotalColleges:   totalColleges,
	}, nil
}

func (s *adminService) ListUsers(ctx context.Context) ([]dto.UserSummaryResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewUserSummaryResponseSlice(users), nil
}

func (s *adminService) UpdateUser(ctx context.Context, id uint, payload dto.UserUpdateRequest) (dto.UserSummaryResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserSummaryResponse{}, err
	}

	user, err := s.loadUser(ctx, id)
	if err != nil {
		return dto.UserSummaryResponse{}, err
	}

	if _, protected := protectedEmails[user.Email]; protected && payload.Role != user.Role {
		return dto.UserSummaryResponse{}, ErrProtectedAccount
	}

	user.FirstName = payload.FirstName
	user.LastName = payload.LastName
	user.Role = payload.Role

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserSummaryResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user updated")

	return dto.NewUserSummaryResponse(user), nil
}

func (s *adminService) DeleteUser(ctx context.Context, id uint) error {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return err
	}

	if _, protected := protectedEmails[user.Email]; protected {
		return ErrProtectedAccount
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.logger.Info().Uint("user_id", id).Msg("user deleted")

	return nil
}

func (s *adminService) loadUser(ctx context.Context, id uint) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
