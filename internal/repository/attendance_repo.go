package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/kelas-go-api/internal/models"
)

// AttendanceRepository defines data operations for attendance records.
type AttendanceRepository interface {
	GetByClassAndStudent(ctx context.Context, videoClassID, studentID uint) (models.Attendance, error)
	ListByClass(ctx context.Context, videoClassID uint) ([]models.Attendance, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Attendance, error)
	ListByClasses(ctx context.Context, videoClassIDs []uint) ([]models.Attendance, error)
	Create(ctx context.Context, record *models.Attendance) error
	Update(ctx context.Context, record *models.Attendance) error
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository instantiates the repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) GetByClassAndStudent(ctx context.Context, videoClassID, studentID uint) (models.Attendance, error) {
	var record models.Attendance
	if err := r.db.WithContext(ctx).
		Where("video_class_id = ?", videoClassID).
		Where("student_id = ?", studentID).
		First(&record).Error; err != nil {
		return models.Attendance{}, err
	}
	return record, nil
}

func (r *attendanceRepository) ListByClass(ctx context.Context, videoClassID uint) ([]models.Attendance, error) {
	var records []models.Attendance
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Where("video_class_id = ?", videoClassID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Attendance, error) {
	var records []models.Attendance
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRepository) ListByClasses(ctx context.Context, videoClassIDs []uint) ([]models.Attendance, error) {
	if len(videoClassIDs) == 0 {
		return []models.Attendance{}, nil
	}

	var records []models.Attendance
	if err := r.db.WithContext(ctx).
		Where("video_class_id IN ?", videoClassIDs).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRepository) Create(ctx context.Context, record *models.Attendance) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *attendanceRepository) Update(ctx context.Context, record *models.Attendance) error {
	return r.db.WithContext(ctx).Save(record).Error
}
