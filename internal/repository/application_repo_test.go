package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/collapp/collapp-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Application{}))
	return db
}

func newTestApplication(studentID, collegeID uint) *models.Application {
	app := &models.Application{
		StudentID:          studentID,
		CollegeID:          collegeID,
		CollegeName:        "Mapima Institute",
		StudentName:        "Ana Reyes",
		StudentEmail:       "ana@example.com",
		Status:             models.ApplicationStatusUnderReview,
		FirstChoiceProgram: "BS Computer Science",
		SubmittedAt:        time.Now().UTC(),
	}
	app.SetDocumentList([]models.SubmittedDocument{
		{ID: "high_school_transcript", Label: "High School Transcript", FileURL: "https://cdn.example.com/t.pdf", Status: models.DocumentStatusPending},
	})
	return app
}

func TestApplicationRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	first := newTestApplication(1, 10)
	first.SubmittedAt = time.Now().Add(-2 * time.Hour)
	second := newTestApplication(2, 10)
	second.Status = models.ApplicationStatusAccepted
	third := newTestApplication(1, 20)

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, third))

	collegeID := uint(10)
	apps, err := repo.List(ctx, ApplicationFilter{CollegeID: &collegeID})
	require.NoError(t, err)
	require.Len(t, apps, 2)
	require.True(t, apps[0].SubmittedAt.After(apps[1].SubmittedAt), "expected newest submission first")

	accepted := models.ApplicationStatusAccepted
	apps, err = repo.List(ctx, ApplicationFilter{CollegeID: &collegeID, Status: &accepted})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	require.Equal(t, uint(2), apps[0].StudentID)

	exists, err := repo.ExistsForStudentAndCollege(ctx, 1, 20)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.ExistsForStudentAndCollege(ctx, 2, 20)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestApplicationRepositoryUpdateRejectsStaleVersion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	app := newTestApplication(1, 10)
	require.NoError(t, repo.Create(ctx, app))
	require.Equal(t, uint(1), app.Version)

	fresh, err := repo.GetByID(ctx, app.ID)
	require.NoError(t, err)

	stale, err := repo.GetByID(ctx, app.ID)
	require.NoError(t, err)

	fresh.FinalMessage = "first writer"
	require.NoError(t, repo.Update(ctx, &fresh))
	require.Equal(t, uint(2), fresh.Version)

	stale.FinalMessage = "second writer"
	err = repo.Update(ctx, &stale)
	require.ErrorIs(t, err, ErrStaleApplication)

	stored, err := repo.GetByID(ctx, app.ID)
	require.NoError(t, err)
	require.Equal(t, "first writer", stored.FinalMessage)
	require.Equal(t, uint(2), stored.Version)
}

func TestApplicationRepositoryUpdateMissingRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepository(db)

	missing := newTestApplication(1, 10)
	missing.ID = 999
	missing.Version = 1

	err := repo.Update(context.Background(), missing)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
