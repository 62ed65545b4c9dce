package database_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"

	"github.com/librescript/backend/internal/apperr"
	"github.com/librescript/backend/internal/config"
	"github.com/librescript/backend/internal/database"
	"github.com/librescript/backend/internal/models"
	"github.com/librescript/backend/internal/services"
)

func startPostgres(t *testing.T) database.Service {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("librescript"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	t.Cleanup(func() {
		if ctr != nil {
			require.NoError(t, ctr.Terminate(context.Background()))
		}
	})
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	svc, err := database.New(config.Config{DatabaseURL: dsn, LogLevel: "error"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestPostgresConcurrentVotesKeepCountersConsistent(t *testing.T) {
	svc := startPostgres(t)
	db := svc.GetDB()
	ctx := context.Background()

	owner := models.User{Username: "owner", Email: "owner@x.io", Password: "h"}
	require.NoError(t, db.Create(&owner).Error)
	post := models.Post{Title: "race", UserID: owner.ID}
	require.NoError(t, db.Omit("User").Create(&post).Error)

	const voters = 20
	ids := make([]int, voters)
	for i := range ids {
		u := models.User{Username: fmt.Sprintf("v%d", i), Email: fmt.Sprintf("v%d@x.io", i), Password: "h"}
		require.NoError(t, db.Create(&u).Error)
		ids[i] = u.ID
	}

	posts := services.NewPostService(db, nil)
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(up bool, userID int) {
			defer wg.Done()
			_, err := posts.Vote(ctx, userID, post.ID, up)
			assert.NoError(t, err)
		}(i%3 != 0, id)
	}
	wg.Wait()

	// The same voter twice in parallel must yield exactly one row.
	var dupErrs int
	var mu sync.Mutex
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := posts.Vote(ctx, owner.ID, post.ID, true); apperr.Is(err, apperr.Duplicate) {
				mu.Lock()
				dupErrs++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, dupErrs)

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	var up, down int64
	db.Model(&models.PostVote{}).Where("post_id = ? AND is_upvote = ?", post.ID, true).Count(&up)
	db.Model(&models.PostVote{}).Where("post_id = ? AND is_upvote = ?", post.ID, false).Count(&down)

	assert.Equal(t, int(up), stored.Upvotes)
	assert.Equal(t, int(down), stored.Downvotes)
	assert.Equal(t, int64(voters+1), up+down)
}

func TestPostgresHealth(t *testing.T) {
	svc := startPostgres(t)
	assert.Equal(t, "up", svc.Health()["status"])
}
