package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/kelas-go-api/internal/models"
)

// DPPRepository defines data operations for daily practice problems. The
// embedded submission list is saved atomically with the parent row.
type DPPRepository interface {
	List(ctx context.Context, classroomID uint, publishedOnly bool) ([]models.DPP, error)
	ListByClassrooms(ctx context.Context, classroomIDs []uint) ([]models.DPP, error)
	GetByID(ctx context.Context, id uint) (models.DPP, error)
	Create(ctx context.Context, dpp *models.DPP) error
	Update(ctx context.Context, dpp *models.DPP) error
	Delete(ctx context.Context, id uint) error
}

type dppRepository struct {
	db *gorm.DB
}

// NewDPPRepository instantiates the repository.
func NewDPPRepository(db *gorm.DB) DPPRepository {
	return &dppRepository{db: db}
}

func (r *dppRepository) List(ctx context.Context, classroomID uint, publishedOnly bool) ([]models.DPP, error) {
	query := r.db.WithContext(ctx).Where("classroom_id = ?", classroomID)
	if publishedOnly {
		query = query.Where("published = ?", true)
	}

	var dpps []models.DPP
	if err := query.Order("scheduled_for DESC").Find(&dpps).Error; err != nil {
		return nil, err
	}
	return dpps, nil
}

func (r *dppRepository) ListByClassrooms(ctx context.Context, classroomIDs []uint) ([]models.DPP, error) {
	if len(classroomIDs) == 0 {
		return []models.DPP{}, nil
	}

	var dpps []models.DPP
	if err := r.db.WithContext(ctx).
		Where("classroom_id IN ?", classroomIDs).
		Order("scheduled_for DESC").
		Find(&dpps).Error; err != nil {
		return nil, err
	}
	return dpps, nil
}

func (r *dppRepository) GetByID(ctx context.Context, id uint) (models.DPP, error) {
	var dpp models.DPP
	if err := r.db.WithContext(ctx).First(&dpp, id).Error; err != nil {
		return models.DPP{}, err
	}
	return dpp, nil
}

func (r *dppRepository) Create(ctx context.Context, dpp *models.DPP) error {
	return r.db.WithContext(ctx).Create(dpp).Error
}

func (r *dppRepository) Update(ctx context.Context, dpp *models.DPP) error {
	return r.db.WithContext(ctx).Save(dpp).Error
}

func (r *dppRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.DPP{}, id).Error
}
