package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bnbBack/internal/database"
	"bnbBack/internal/migrations"
	"bnbBack/internal/models"
	"bnbBack/internal/repositories"
)

var fixedNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Up(ctx, db, migrations.SQLite))
	return db
}

func seedUser(t *testing.T, db *sql.DB, email string) models.User {
	t.Helper()
	user := models.User{Firstname: "Test", Lastname: strings.Split(email, "@")[0], Email: email, Hash: "x"}
	user.PreSave()
	user, err := (&repositories.UserRepository{DB: db}).CreateUser(context.Background(), user)
	require.NoError(t, err)
	return user
}

func validAdRequest(title string) models.AdRequest {
	return models.AdRequest{
		Title:        title,
		Price:        50,
		Introduction: strings.Repeat("Lovely place. ", 10),
		Content:      "Everything you need.",
		CoverImage:   "http://img/cover.jpg",
	}
}

func seedAd(t *testing.T, db *sql.DB, author models.User, title string) *models.Ad {
	t.Helper()
	svc := &AdService{AdRepo: &repositories.AdRepository{DB: db}}
	ad, err := svc.CreateAd(context.Background(), author.ID, validAdRequest(title))
	require.NoError(t, err)
	return ad
}

// memoryCache is a map backed cache.Cache that records invalidations.
type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memoryCache) Set(_ context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

func itoa(i int) string { return strconv.Itoa(i) }

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}
