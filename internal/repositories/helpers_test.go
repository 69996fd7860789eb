package repositories

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bnbBack/internal/database"
	"bnbBack/internal/migrations"
	"bnbBack/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Up(ctx, db, migrations.SQLite))
	return db
}

func createTestUser(t *testing.T, db *sql.DB, email string) models.User {
	t.Helper()
	repo := &UserRepository{DB: db}
	user := models.User{Firstname: "Jane", Lastname: "Doe", Email: email, Hash: "x"}
	user.PreSave()
	user, err := repo.CreateUser(context.Background(), user)
	require.NoError(t, err)
	return user
}

func createTestAd(t *testing.T, db *sql.DB, author models.User, title string) *models.Ad {
	t.Helper()
	repo := &AdRepository{DB: db}
	ad := &models.Ad{
		Title:        title,
		Price:        40,
		Introduction: strings.Repeat("i", 100),
		Content:      "content",
		CoverImage:   "http://img/cover.jpg",
		AuthorID:     author.ID,
	}
	ad.PreSave()
	require.NoError(t, repo.CreateAd(context.Background(), ad))
	return ad
}

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

var testNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
