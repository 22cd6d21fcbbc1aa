package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/casecraft/casecraft_server/internal/model"
	"github.com/casecraft/casecraft_server/internal/testutil"
)

func TestCaseStudyRepository_ClaimVideoJob(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewCaseStudyRepository(db)

	user := testutil.TestUser(t, db)
	caseStudy := testutil.TestCaseStudy(t, db, user.ID)

	claimed, err := repo.ClaimVideoJob(caseStudy.ID, "video-1", time.Now())
	require.NoError(t, err)
	assert.True(t, claimed)

	// 槽位已占用，第二次占位必须失败
	claimed, err = repo.ClaimVideoJob(caseStudy.ID, "video-2", time.Now())
	require.NoError(t, err)
	assert.False(t, claimed)

	stored, err := repo.GetByID(caseStudy.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.VideoID)
	assert.Equal(t, "video-1", *stored.VideoID)
	assert.Equal(t, model.MediaStatusProcessing, stored.VideoStatus)
}

func TestCaseStudyRepository_ClaimJobs_IndependentSlots(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewCaseStudyRepository(db)

	user := testutil.TestUser(t, db)
	caseStudy := testutil.TestCaseStudy(t, db, user.ID)
	now := time.Now()

	claimed, err := repo.ClaimVideoJob(caseStudy.ID, "video-1", now)
	require.NoError(t, err)
	require.True(t, claimed)

	claimed, err = repo.ClaimNewsflashVideoJob(caseStudy.ID, "news-1", now)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.ClaimStoryboardJob(caseStudy.ID, "sb-1", now)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.ClaimPodcastJob(caseStudy.ID, "pod-1", now)
	require.NoError(t, err)
	assert.True(t, claimed)

	stored, err := repo.GetByID(caseStudy.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MediaStatusStoryboardProcessing, stored.PictoryVideoStatus)
	assert.Equal(t, model.MediaStatusProcessing, stored.PodcastStatus)
}

func TestCaseStudyRepository_ClaimRenderJob(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewCaseStudyRepository(db)

	user := testutil.TestUser(t, db)
	caseStudy := testutil.TestCaseStudy(t, db, user.ID,
		testutil.WithStoryboardJob("sb-1", model.MediaStatusStoryboardProcessing))

	claimed, err := repo.ClaimRenderJob(caseStudy.ID, "render-1")
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.ClaimRenderJob(caseStudy.ID, "render-2")
	require.NoError(t, err)
	assert.False(t, claimed)

	stored, err := repo.GetByID(caseStudy.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PictoryRenderID)
	assert.Equal(t, "render-1", *stored.PictoryRenderID)
	assert.Equal(t, model.MediaStatusRendering, stored.PictoryVideoStatus)
}

func TestCaseStudyRepository_GetByVideoID_BothColumns(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewCaseStudyRepository(db)

	user := testutil.TestUser(t, db)
	regular := testutil.TestCaseStudy(t, db, user.ID,
		testutil.WithVideoJob("video-1", model.MediaStatusProcessing))
	newsflash := testutil.TestCaseStudy(t, db, user.ID,
		testutil.WithNewsflashJob("news-1", model.MediaStatusProcessing))

	found, isNewsflash, err := repo.GetByVideoID("video-1")
	require.NoError(t, err)
	assert.False(t, isNewsflash)
	assert.Equal(t, regular.ID, found.ID)

	found, isNewsflash, err = repo.GetByVideoID("news-1")
	require.NoError(t, err)
	assert.True(t, isNewsflash)
	assert.Equal(t, newsflash.ID, found.ID)

	_, _, err = repo.GetByVideoID("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCaseStudyRepository_GetByStoryboardID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewCaseStudyRepository(db)

	user := testutil.TestUser(t, db)
	caseStudy := testutil.TestCaseStudy(t, db, user.ID,
		testutil.WithStoryboardJob("sb-1", model.MediaStatusStoryboardProcessing))

	found, err := repo.GetByStoryboardID("sb-1")
	require.NoError(t, err)
	assert.Equal(t, caseStudy.ID, found.ID)

	_, err = repo.GetByStoryboardID("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCaseStudyRepository_GetByPodcastJobID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewCaseStudyRepository(db)

	user := testutil.TestUser(t, db)
	caseStudy := testutil.TestCaseStudy(t, db, user.ID,
		testutil.WithPodcastJob("pod-1", model.MediaStatusProcessing))

	found, err := repo.GetByPodcastJobID("pod-1")
	require.NoError(t, err)
	assert.Equal(t, caseStudy.ID, found.ID)
}

func TestCaseStudyRepository_ResetPodcast(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewCaseStudyRepository(db)

	user := testutil.TestUser(t, db)
	caseStudy := testutil.TestCaseStudy(t, db, user.ID,
		testutil.WithPodcastJob("pod-1", model.MediaStatusFailed))

	require.NoError(t, repo.ResetPodcast(caseStudy.ID))

	stored, err := repo.GetByID(caseStudy.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.PodcastJobID)
	assert.Nil(t, stored.PodcastCreatedAt)
	assert.Empty(t, stored.PodcastStatus)
	assert.Empty(t, stored.PodcastURL)

	// 重置后可以重新占位
	claimed, err := repo.ClaimPodcastJob(caseStudy.ID, "pod-2", time.Now())
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestCaseStudyRepository_UpdateFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewCaseStudyRepository(db)

	user := testutil.TestUser(t, db)
	caseStudy := testutil.TestCaseStudy(t, db, user.ID,
		testutil.WithVideoJob("video-1", model.MediaStatusProcessing))

	err := repo.UpdateFields(caseStudy.ID, map[string]interface{}{
		"video_status": model.MediaStatusCompleted,
		"video_url":    "https://cdn.example.com/v.mp4",
	})
	require.NoError(t, err)

	stored, err := repo.GetByID(caseStudy.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MediaStatusCompleted, stored.VideoStatus)
	assert.Equal(t, "https://cdn.example.com/v.mp4", stored.VideoURL)
}

func TestCaseStudyRepository_ListByUserID_Paginated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewCaseStudyRepository(db)

	user := testutil.TestUser(t, db)
	for i := 0; i < 5; i++ {
		testutil.TestCaseStudy(t, db, user.ID)
	}

	items, total, err := repo.ListByUserID(user.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, items, 2)

	items, _, err = repo.ListByUserID(user.ID, 3, 2)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
