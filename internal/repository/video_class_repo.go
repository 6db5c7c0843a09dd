package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/kelas-go-api/internal/models"
)

// VideoClassRepository defines data operations for scheduled video classes.
type VideoClassRepository interface {
	ListByClassroom(ctx context.Context, classroomID uint) ([]models.VideoClass, error)
	ListByClassrooms(ctx context.Context, classroomIDs []uint) ([]models.VideoClass, error)
	ListBetween(ctx context.Context, classroomIDs []uint, from, to time.Time) ([]models.VideoClass, error)
	GetByID(ctx context.Context, id uint) (models.VideoClass, error)
	Create(ctx context.Context, class *models.VideoClass) error
	Update(ctx context.Context, class *models.VideoClass) error
}

type videoClassRepository struct {
	db *gorm.DB
}

// NewVideoClassRepository instantiates the repository.
func NewVideoClassRepository(db *gorm.DB) VideoClassRepository {
	return &videoClassRepository{db: db}
}

func (r *videoClassRepository) ListByClassroom(ctx context.Context, classroomID uint) ([]models.VideoClass, error) {
	var classes []models.VideoClass
	if err := r.db.WithContext(ctx).
		Where("classroom_id = ?", classroomID).
		Order("scheduled_start DESC").
		Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *videoClassRepository) ListByClassrooms(ctx context.Context, classroomIDs []uint) ([]models.VideoClass, error) {
	if len(classroomIDs) == 0 {
		return []models.VideoClass{}, nil
	}

	var classes []models.VideoClass
	if err := r.db.WithContext(ctx).
		Where("classroom_id IN ?", classroomIDs).
		Order("scheduled_start DESC").
		Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *videoClassRepository) ListBetween(ctx context.Context, classroomIDs []uint, from, to time.Time) ([]models.VideoClass, error) {
	if len(classroomIDs) == 0 {
		return []models.VideoClass{}, nil
	}

	var classes []models.VideoClass
	if err := r.db.WithContext(ctx).
		Where("classroom_id IN ?", classroomIDs).
		Where("scheduled_start >= ? AND scheduled_start < ?", from, to).
		Order("scheduled_start ASC").
		Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *videoClassRepository) GetByID(ctx context.Context, id uint) (models.VideoClass, error) {
	var class models.VideoClass
	if err := r.db.WithContext(ctx).First(&class, id).Error; err != nil {
		return models.VideoClass{}, err
	}
	return class, nil
}

func (r *videoClassRepository) Create(ctx context.Context, class *models.VideoClass) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *videoClassRepository) Update(ctx context.Context, class *models.VideoClass) error {
	return r.db.WithContext(ctx).Save(class).Error
}
