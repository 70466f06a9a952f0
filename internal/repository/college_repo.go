package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/collapp/collapp-api/internal/models"
)

// CollegeFilter narrows college queries.
type CollegeFilter struct {
	PublishedOnly bool
}

// CollegeRepository defines data operations for colleges.
type CollegeRepository interface {
	List(ctx context.Context, filter CollegeFilter) ([]models.College, error)
	GetByID(ctx context.Context, id uint) (models.College, error)
	GetByRepUserID(ctx context.Context, repUserID uint) (models.College, error)
	Create(ctx context.Context, college *models.College) error
	Update(ctx context.Context, college *models.College) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type collegeRepository struct {
	db *gorm.DB
}

// NewCollegeRepository instantiates the repository.
func NewCollegeRepository(db *gorm.DB) CollegeRepository {
	return &collegeRepository{db: db}
}

func (r *collegeRepository) List(ctx context.Context, filter CollegeFilter) ([]models.College, error) {
	query := r.db.WithContext(ctx).Model(&models.College{})

	if filter.PublishedOnly {
		query = query.Where("is_published = ?", true)
	}

	var colleges []models.College
	if err := query.Order("name ASC").Find(&colleges).Error; err != nil {
		return nil, err
	}

	return colleges, nil
}

func (r *collegeRepository) GetByID(ctx context.Context, id uint) (models.College, error) {
	var college models.College
	if err := r.db.WithContext(ctx).First(&college, id).Error; err != nil {
		return models.College{}, err
	}

	return college, nil
}

func (r *collegeRepository) GetByRepUserID(ctx context.Context, repUserID uint) (models.College, error) {
	var college models.College
	if err := r.db.WithContext(ctx).
		Where("rep_user_id = ?", repUserID).
		First(&college).Error; err != nil {
		return models.College{}, err
	}

	return college, nil
}

func (r *collegeRepository) Create(ctx context.Context, college *models.College) error {
	return r.db.WithContext(ctx).Create(college).Error
}

func (r *collegeRepository) Update(ctx context.Context, college *models.College) error {
	return r.db.WithContext(ctx).Save(college).Error
}

func (r *collegeRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.College{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *collegeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.College{}).Count(&count).Error
	return count, err
}
