package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/kelas-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Classroom{}, &models.ClassroomMember{}))
	return db
}

func TestClassroomRepositoryLookupByCode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClassroomRepository(db)

	classroom := models.Classroom{Name: "Algebra", TeacherID: 1, Code: "ALGEBRA1"}
	require.NoError(t, repo.Create(context.Background(), &classroom))

	found, err := repo.GetByCode(context.Background(), "ALGEBRA1")
	require.NoError(t, err)
	require.Equal(t, classroom.ID, found.ID)

	_, err = repo.GetByCode(context.Background(), "NOPE")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestClassroomRepositoryRejectsDuplicateCode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClassroomRepository(db)

	first := models.Classroom{Name: "Algebra", TeacherID: 1, Code: "ALGEBRA1"}
	require.NoError(t, repo.Create(context.Background(), &first))

	second := models.Classroom{Name: "Geometry", TeacherID: 1, Code: "ALGEBRA1"}
	err := repo.Create(context.Background(), &second)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestClassroomRepositoryRejectsDuplicateMembership(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClassroomRepository(db)

	classroom := models.Classroom{Name: "Algebra", TeacherID: 1, Code: "ALGEBRA1"}
	require.NoError(t, repo.Create(context.Background(), &classroom))

	member := models.ClassroomMember{ClassroomID: classroom.ID, StudentID: 2, Level: models.LevelBeginner, JoinedAt: time.Now()}
	require.NoError(t, repo.AddMember(context.Background(), &member))

	again := models.ClassroomMember{ClassroomID: classroom.ID, StudentID: 2, Level: models.LevelBeginner, JoinedAt: time.Now()}
	err := repo.AddMember(context.Background(), &again)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestClassroomRepositoryListByStudent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClassroomRepository(db)

	algebra := models.Classroom{Name: "Algebra", TeacherID: 1, Code: "ALGEBRA1"}
	geometry := models.Classroom{Name: "Geometry", TeacherID: 1, Code: "GEOMETRY"}
	require.NoError(t, repo.Create(context.Background(), &algebra))
	require.NoError(t, repo.Create(context.Background(), &geometry))

	require.NoError(t, repo.AddMember(context.Background(), &models.ClassroomMember{
		ClassroomID: algebra.ID, StudentID: 2, Level: models.LevelBeginner, JoinedAt: time.Now(),
	}))

	enrolled, err := repo.ListByStudent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, enrolled, 1)
	require.Equal(t, algebra.ID, enrolled[0].ID)

	none, err := repo.ListByStudent(context.Background(), 3)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestClassroomRepositoryRemoveMember(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClassroomRepository(db)

	classroom := models.Classroom{Name: "Algebra", TeacherID: 1, Code: "ALGEBRA1"}
	require.NoError(t, repo.Create(context.Background(), &classroom))
	require.NoError(t, repo.AddMember(context.Background(), &models.ClassroomMember{
		ClassroomID: classroom.ID, StudentID: 2, Level: models.LevelBeginner, JoinedAt: time.Now(),
	}))

	require.NoError(t, repo.RemoveMember(context.Background(), classroom.ID, 2))

	_, err := repo.GetMember(context.Background(), classroom.ID, 2)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
