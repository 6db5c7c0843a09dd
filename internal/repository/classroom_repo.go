package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/kelas-go-api/internal/models"
)

// ClassroomRepository defines data operations for classrooms and memberships.
type ClassroomRepository interface {
	Create(ctx context.Context, classroom *models.Classroom) error
	GetByID(ctx context.Context, id uint) (models.Classroom, error)
	GetByCode(ctx context.Context, code string) (models.Classroom, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Classroom, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Classroom, error)
	Update(ctx context.Context, classroom *models.Classroom) error
	AddMember(ctx context.Context, member *models.ClassroomMember) error
	GetMember(ctx context.Context, classroomID, studentID uint) (models.ClassroomMember, error)
	ListMembers(ctx context.Context, classroomID uint) ([]models.ClassroomMember, error)
	RemoveMember(ctx context.Context, classroomID, studentID uint) error
}

type classroomRepository struct {
	db *gorm.DB
}

// NewClassroomRepository instantiates the repository.
func NewClassroomRepository(db *gorm.DB) ClassroomRepository {
	return &classroomRepository{db: db}
}

func (r *classroomRepository) Create(ctx context.Context, classroom *models.Classroom) error {
	return r.db.WithContext(ctx).Create(classroom).Error
}

func (r *classroomRepository) GetByID(ctx context.Context, id uint) (models.Classroom, error) {
	var classroom models.Classroom
	if err := r.db.WithContext(ctx).
		Preload("Members").
		Preload("Members.Student").
		First(&classroom, id).Error; err != nil {
		return models.Classroom{}, err
	}
	return classroom, nil
}

func (r *classroomRepository) GetByCode(ctx context.Context, code string) (models.Classroom, error) {
	var classroom models.Classroom
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&classroom).Error; err != nil {
		return models.Classroom{}, err
	}
	return classroom, nil
}

func (r *classroomRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Classroom, error) {
	var classrooms []models.Classroom
	if err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&classrooms).Error; err != nil {
		return nil, err
	}
	return classrooms, nil
}

func (r *classroomRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Classroom, error) {
	var classrooms []models.Classroom
	if err := r.db.WithContext(ctx).
		Joins("JOIN classroom_members ON classroom_members.classroom_id = classrooms.id").
		Where("classroom_members.student_id = ?", studentID).
		Order("classrooms.created_at DESC").
		Find(&classrooms).Error; err != nil {
		return nil, err
	}
	return classrooms, nil
}

func (r *classroomRepository) Update(ctx context.Context, classroom *models.Classroom) error {
	return r.db.WithContext(ctx).Save(classroom).Error
}

func (r *classroomRepository) AddMember(ctx context.Context, member *models.ClassroomMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *classroomRepository) GetMember(ctx context.Context, classroomID, studentID uint) (models.ClassroomMember, error) {
	var member models.ClassroomMember
	if err := r.db.WithContext(ctx).
		Where("classroom_id = ?", classroomID).
		Where("student_id = ?", studentID).
		First(&member).Error; err != nil {
		return models.ClassroomMember{}, err
	}
	return member, nil
}

func (r *classroomRepository) ListMembers(ctx context.Context, classroomID uint) ([]models.ClassroomMember, error) {
	var members []models.ClassroomMember
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Where("classroom_id = ?", classroomID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *classroomRepository) RemoveMember(ctx context.Context, classroomID, studentID uint) error {
	return r.db.WithContext(ctx).
		Where("classroom_id = ?", classroomID).
		Where("student_id = ?", studentID).
		Delete(&models.ClassroomMember{}).Error
}
