package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpetrov/screencast/internal/models"
)

func TestVideoRepository_InsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewVideoRepository(db)
	owner := seedUser(t, db, "user-1", "Ada")

	video := testVideo("vid-1", owner.ID, "Quarterly Review", models.VisibilityPublic)
	duration := 93
	video.Duration = &duration
	require.NoError(t, repo.Insert(ctx, video))

	record, err := repo.GetByID(ctx, "vid-1")
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, "Quarterly Review", record.Video.Title)
	assert.Equal(t, models.VisibilityPublic, record.Video.Visibility)
	assert.Equal(t, int64(0), record.Video.Views)
	require.NotNil(t, record.Video.Duration)
	assert.Equal(t, 93, *record.Video.Duration)
	require.NotNil(t, record.User)
	assert.Equal(t, "Ada", record.User.Name)
}

func TestVideoRepository_GetByID_Absent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVideoRepository(db)

	record, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestVideoRepository_ListVisibility(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewVideoRepository(db)
	owner := seedUser(t, db, "owner", "Owner")
	other := seedUser(t, db, "other", "Other")

	require.NoError(t, repo.Insert(ctx, testVideo("pub", owner.ID, "Public demo", models.VisibilityPublic)))
	require.NoError(t, repo.Insert(ctx, testVideo("priv", owner.ID, "Private demo", models.VisibilityPrivate)))

	// anonymous caller sees only public
	records, err := repo.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "pub", records[0].Video.VideoID)

	// a different caller sees only public
	records, err = repo.List(ctx, ListQuery{CallerID: other.ID})
	require.NoError(t, err)
	require.Len(t, records, 1)

	// the owner also sees their private video
	records, err = repo.List(ctx, ListQuery{CallerID: owner.ID})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestVideoRepository_ListByOwnerScoping(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewVideoRepository(db)
	owner := seedUser(t, db, "owner", "Owner")
	stranger := seedUser(t, db, "stranger", "Stranger")

	require.NoError(t, repo.Insert(ctx, testVideo("pub", owner.ID, "Public demo", models.VisibilityPublic)))
	require.NoError(t, repo.Insert(ctx, testVideo("priv", owner.ID, "Private demo", models.VisibilityPrivate)))
	require.NoError(t, repo.Insert(ctx, testVideo("unrelated", stranger.ID, "Other channel", models.VisibilityPublic)))

	records, err := repo.List(ctx, ListQuery{OwnerID: owner.ID, CallerID: stranger.ID})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "pub", records[0].Video.VideoID)

	records, err = repo.List(ctx, ListQuery{OwnerID: owner.ID, CallerID: owner.ID})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestVideoRepository_SearchCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewVideoRepository(db)
	owner := seedUser(t, db, "owner", "Owner")

	require.NoError(t, repo.Insert(ctx, testVideo("q", owner.ID, "Quarterly Review", models.VisibilityPublic)))
	require.NoError(t, repo.Insert(ctx, testVideo("s", owner.ID, "Standup notes", models.VisibilityPublic)))

	for _, query := range []string{"quarter", "REVIEW", "rterly"} {
		records, err := repo.List(ctx, ListQuery{Search: query})
		require.NoError(t, err)
		require.Len(t, records, 1, "query %q", query)
		assert.Equal(t, "q", records[0].Video.VideoID)
	}
}

func TestVideoRepository_SortAndPagination(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewVideoRepository(db)
	owner := seedUser(t, db, "owner", "Owner")

	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"a", "b", "c"} {
		v := testVideo(id, owner.ID, "Video "+id, models.VisibilityPublic)
		v.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		v.UpdatedAt = v.CreatedAt
		require.NoError(t, repo.Insert(ctx, v))
	}
	for i := 0; i < 5; i++ {
		_, err := repo.IncrementViews(ctx, "b", time.Now().UTC())
		require.NoError(t, err)
	}

	records, err := repo.List(ctx, ListQuery{Sort: models.SortMostRecent})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "c", records[0].Video.VideoID)

	records, err = repo.List(ctx, ListQuery{Sort: models.SortMostViewed})
	require.NoError(t, err)
	assert.Equal(t, "b", records[0].Video.VideoID)

	records, err = repo.List(ctx, ListQuery{Sort: models.SortOldestFirst, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "c", records[0].Video.VideoID)

	total, err := repo.Count(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestVideoRepository_IncrementViews(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewVideoRepository(db)
	owner := seedUser(t, db, "owner", "Owner")
	require.NoError(t, repo.Insert(ctx, testVideo("vid", owner.ID, "Demo", models.VisibilityPublic)))

	for i := 0; i < 4; i++ {
		ok, err := repo.IncrementViews(ctx, "vid", time.Now().UTC())
		require.NoError(t, err)
		assert.True(t, ok)
	}

	record, err := repo.GetByID(ctx, "vid")
	require.NoError(t, err)
	assert.Equal(t, int64(4), record.Video.Views)

	ok, err := repo.IncrementViews(ctx, "missing", time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVideoRepository_SetVisibilityPreservesIdentityFields(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewVideoRepository(db)
	owner := seedUser(t, db, "owner", "Owner")

	video := testVideo("vid", owner.ID, "Demo", models.VisibilityPublic)
	require.NoError(t, repo.Insert(ctx, video))

	before, err := repo.GetByID(ctx, "vid")
	require.NoError(t, err)

	ok, err := repo.SetVisibility(ctx, "vid", models.VisibilityPrivate, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	after, err := repo.GetByID(ctx, "vid")
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityPrivate, after.Video.Visibility)
	assert.Equal(t, before.Video.VideoID, after.Video.VideoID)
	assert.Equal(t, before.Video.UserID, after.Video.UserID)
	assert.Equal(t, before.Video.CreatedAt, after.Video.CreatedAt)
	assert.True(t, after.Video.UpdatedAt.After(before.Video.UpdatedAt))
}

func TestVideoRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewVideoRepository(db)
	owner := seedUser(t, db, "owner", "Owner")
	require.NoError(t, repo.Insert(ctx, testVideo("vid", owner.ID, "Demo", models.VisibilityPublic)))

	ok, err := repo.Delete(ctx, "vid")
	require.NoError(t, err)
	assert.True(t, ok)

	record, err := repo.GetByID(ctx, "vid")
	require.NoError(t, err)
	assert.Nil(t, record)

	ok, err = repo.Delete(ctx, "vid")
	require.NoError(t, err)
	assert.False(t, ok)
}
