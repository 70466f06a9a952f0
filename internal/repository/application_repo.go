package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/collapp/collapp-api/internal/models"
)

// ErrStaleApplication is returned when an update carries a version that no
// longer matches the stored row, signalling a concurrent write.
var ErrStaleApplication = errors.New("application version is stale")

// ApplicationFilter narrows application queries.
type ApplicationFilter struct {
	StudentID *uint
	CollegeID *uint
	Status    *string
}

// ApplicationRepository defines data operations for applications.
type ApplicationRepository interface {
	List(ctx context.Context, filter ApplicationFilter) ([]models.Application, error)
	GetByID(ctx context.Context, id uint) (models.Application, error)
	ExistsForStudentAndCollege(ctx context.Context, studentID, collegeID uint) (bool, error)
	Create(ctx context.Context, application *models.Application) error
	Update(ctx context.Context, application *models.Application) error
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository instantiates the repository.
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]models.Application, error) {
	query := r.db.WithContext(ctx).Model(&models.Application{})

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.CollegeID != nil {
		query = query.Where("college_id = ?", *filter.CollegeID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var applications []models.Application
	if err := query.Order("submitted_at DESC").Find(&applications).Error; err != nil {
		return nil, err
	}

	return applications, nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id uint) (models.Application, error) {
	var application models.Application
	if err := r.db.WithContext(ctx).First(&application, id).Error; err != nil {
		return models.Application{}, err
	}

	return application, nil
}

func (r *applicationRepository) ExistsForStudentAndCollege(ctx context.Context, studentID, collegeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("student_id = ?", studentID).
		Where("college_id = ?", collegeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *applicationRepository) Create(ctx context.Context, application *models.Application) error {
	if application.Version == 0 {
		application.Version = 1
	}
	return r.db.WithContext(ctx).Create(application).Error
}

// Update persists the application guarded by its version: the write only
// lands when the stored version still matches the one the caller read.
func (r *applicationRepository) Update(ctx context.Context, application *models.Application) error {
	readVersion := application.Version

	result := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ?", application.ID).
		Where("version = ?", readVersion).
		Updates(map[string]interface{}{
			"status":        application.Status,
			"documents":     application.Documents,
			"final_message": application.FinalMessage,
			"final_program": application.FinalProgram,
			"decision_date": application.DecisionDate,
			"version":       readVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Application{}).
			Where("id = ?", application.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrStaleApplication
	}

	application.Version = readVersion + 1
	return nil
}
