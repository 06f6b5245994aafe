package refresh

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"tubecast/internal/db"
	"tubecast/internal/models"
	"tubecast/internal/youtube"
)

type fakeVideoService struct {
	videos      map[string][]youtube.Video
	listErr     map[string]error
	failExtract map[string]bool

	metadataCalls int
	extracted     []string
}

func (f *fakeVideoService) ListRecentVideos(ctx context.Context, channelID string, max int) ([]youtube.Video, error) {
	if err := f.listErr[channelID]; err != nil {
		return nil, err
	}
	return f.videos[channelID], nil
}

func (f *fakeVideoService) FetchMetadata(ctx context.Context, videoID string) (*youtube.Metadata, error) {
	f.metadataCalls++
	return &youtube.Metadata{Title: "Title " + videoID, DurationSeconds: 60}, nil
}

func (f *fakeVideoService) ExtractAudio(ctx context.Context, videoID, destPath string) (int64, error) {
	if f.failExtract[videoID] {
		return 0, errors.New("extraction failed")
	}
	f.extracted = append(f.extracted, videoID)
	return 1024, nil
}

func setupMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	originalDB := db.DB
	db.DB = sqlx.NewDb(mockDb, "sqlmock")
	t.Cleanup(func() {
		db.DB = originalDB
		mockDb.Close()
	})
	return mock
}

func episodeColumns() []string {
	return []string{"id", "channel_id", "youtube_video_id", "title", "audio_uuid", "audio_path"}
}

func testChannel() *models.Channel {
	return &models.Channel{ID: 1, YoutubeChannelID: "UCtest", Name: "Test Channel", AuthType: models.AuthTypeNone}
}

func expectNewEpisode(mock sqlmock.Sqlmock, id int, videoID, uuid string) {
	mock.ExpectQuery(`SELECT \* FROM episodes WHERE youtube_video_id = \$1`).
		WithArgs(videoID).
		WillReturnRows(sqlmock.NewRows(episodeColumns()))
	mock.ExpectQuery(`INSERT INTO episodes`).
		WillReturnRows(sqlmock.NewRows(episodeColumns()).AddRow(id, 1, videoID, "Title "+videoID, uuid, nil))
}

func expectMarkDownloaded(mock sqlmock.Sqlmock, id int, uuid string) {
	mock.ExpectExec(`UPDATE episodes`).
		WithArgs(uuid+".mp3", int64(1024), id).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestRefreshChannelSkipsDownloadedEpisodes(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM episodes WHERE youtube_video_id = \$1`).
		WithArgs("video1").
		WillReturnRows(sqlmock.NewRows(episodeColumns()).AddRow(1, 1, "video1", "Title video1", "uuid-1", "uuid-1.mp3"))

	svc := &fakeVideoService{
		videos: map[string][]youtube.Video{"UCtest": {{ID: "video1", Title: "Video 1"}}},
	}
	engine := NewEngine(svc, t.TempDir(), 10)

	err := engine.RefreshChannel(context.Background(), testChannel())
	assert.NoError(t, err)

	// A satisfied episode costs nothing beyond the listing call.
	assert.Zero(t, svc.metadataCalls)
	assert.Empty(t, svc.extracted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshChannelPartialFailureIsolation(t *testing.T) {
	mock := setupMockDB(t)

	expectNewEpisode(mock, 1, "video1", "uuid-1")
	expectMarkDownloaded(mock, 1, "uuid-1")

	// video2's extraction fails; the episode stays pending.
	expectNewEpisode(mock, 2, "video2", "uuid-2")

	expectNewEpisode(mock, 3, "video3", "uuid-3")
	expectMarkDownloaded(mock, 3, "uuid-3")

	svc := &fakeVideoService{
		videos: map[string][]youtube.Video{"UCtest": {
			{ID: "video1"}, {ID: "video2"}, {ID: "video3"},
		}},
		failExtract: map[string]bool{"video2": true},
	}
	engine := NewEngine(svc, t.TempDir(), 10)

	err := engine.RefreshChannel(context.Background(), testChannel())
	assert.NoError(t, err)

	assert.Equal(t, []string{"video1", "video3"}, svc.extracted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshChannelListingFailure(t *testing.T) {
	setupMockDB(t) // no queries expected

	svc := &fakeVideoService{
		listErr: map[string]error{"UCtest": errors.New("listing failed")},
	}
	engine := NewEngine(svc, t.TempDir(), 10)

	err := engine.RefreshChannel(context.Background(), testChannel())
	assert.Error(t, err)
	assert.Zero(t, svc.metadataCalls)
}

type blockingListService struct {
	fakeVideoService
	listCalls int32
	started   chan struct{}
	release   chan struct{}
}

func (b *blockingListService) ListRecentVideos(ctx context.Context, channelID string, max int) ([]youtube.Video, error) {
	if atomic.AddInt32(&b.listCalls, 1) == 1 {
		close(b.started)
	}
	<-b.release
	return nil, nil
}

func TestRefreshChannelSingleFlight(t *testing.T) {
	setupMockDB(t) // no videos, no queries

	svc := &blockingListService{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	engine := NewEngine(svc, t.TempDir(), 10)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, engine.RefreshChannel(context.Background(), testChannel()))
	}()

	<-svc.started
	go func() {
		defer wg.Done()
		assert.NoError(t, engine.RefreshChannel(context.Background(), testChannel()))
	}()

	// Let the second caller reach the guard while the first is in flight,
	// then let the refresh finish.
	time.Sleep(50 * time.Millisecond)
	close(svc.release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&svc.listCalls), "concurrent refreshes of one channel must share a single run")
}

func TestRefreshAllContinuesPastFailedChannel(t *testing.T) {
	mock := setupMockDB(t)

	channelRows := sqlmock.NewRows([]string{"id", "youtube_channel_id", "name", "url", "auth_type", "created_at"}).
		AddRow(1, "UCbroken", "Broken", "https://example.com", "none", time.Now()).
		AddRow(2, "UCgood", "Good", "https://example.com", "none", time.Now())
	mock.ExpectQuery(`SELECT \* FROM channels ORDER BY created_at DESC`).
		WillReturnRows(channelRows)

	expectNewEpisode(mock, 1, "video1", "uuid-1")
	expectMarkDownloaded(mock, 1, "uuid-1")

	svc := &fakeVideoService{
		videos:  map[string][]youtube.Video{"UCgood": {{ID: "video1"}}},
		listErr: map[string]error{"UCbroken": errors.New("listing failed")},
	}
	engine := NewEngine(svc, t.TempDir(), 10)

	err := engine.RefreshAll(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, []string{"video1"}, svc.extracted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
