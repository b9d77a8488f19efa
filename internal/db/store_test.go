package db

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
	"github.com/Nixie-Tech-LLC/marquee/internal/schedule"
)

var (
	displayCols  = []string{"id", "name", "device_id", "device_token", "layout_id", "playlist_id", "paired", "created_at", "updated_at"}
	scheduleCols = []string{"id", "name", "start_time", "end_time", "repeat_days", "start_date", "end_date", "priority", "is_active", "playlist_id", "layout_id", "orientation", "created_at", "updated_at"}
	itemCols     = []string{"id", "section_id", "media_id", "sort_order", "duration", "loop", "orientation", "resize_mode", "rotation", "m_id", "m_name", "m_type", "m_url", "m_duration", "m_width", "m_height", "m_updated_at"}
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return sqlx.NewDb(conn, "sqlmock"), mock
}

func TestGetDisplayByToken(t *testing.T) {
	conn, mock := newMock(t)
	store := NewStore(conn)
	now := time.Now()

	mock.ExpectQuery(`FROM displays WHERE device_token = \$1 AND paired = TRUE`).
		WithArgs("tok-1").
		WillReturnRows(sqlmock.NewRows(displayCols).
			AddRow(4, "Lobby", "lobby-tv", "tok-1", nil, 9, true, now, now))

	d, err := store.GetDisplayByToken(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, 4, d.ID)
	assert.Equal(t, "lobby-tv", *d.DeviceID)
	assert.Nil(t, d.LayoutID)
	require.NotNil(t, d.PlaylistID)
	assert.Equal(t, 9, *d.PlaylistID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDisplayByTokenNotFound(t *testing.T) {
	conn, mock := newMock(t)
	store := NewStore(conn)

	mock.ExpectQuery(`FROM displays WHERE device_token`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(displayCols))

	_, err := store.GetDisplayByToken(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveSchedulesForDisplay(t *testing.T) {
	conn, mock := newMock(t)
	store := NewStore(conn)
	now := time.Now()
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE sd.display_id = $1 AND sc.is_active = TRUE ORDER BY sc.id")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows(scheduleCols).
			AddRow(1, "mornings", "09:00", "12:00", "{monday,tuesday}", nil, end, 5, true, 2, nil, "PORTRAIT", now, now).
			AddRow(2, "always", "00:00", "23:59", "{}", nil, nil, 0, true, nil, 7, nil, now, now))

	out, err := store.ListActiveSchedulesForDisplay(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, []string{"monday", "tuesday"}, []string(out[0].RepeatDays))
	require.NotNil(t, out[0].EndDate)
	assert.True(t, end.Equal(*out[0].EndDate))
	assert.Equal(t, 2, *out[0].PlaylistID)
	assert.Equal(t, "PORTRAIT", *out[0].Orientation)

	assert.Empty(t, out[1].RepeatDays)
	assert.Nil(t, out[1].PlaylistID)
	assert.Equal(t, 7, *out[1].LayoutID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleTimeColumnsScanAsClock(t *testing.T) {
	conn, mock := newMock(t)
	store := NewStore(conn)
	now := time.Now()

	// lib/pq decodes TIME as a time.Time on day zero
	start := time.Date(0, 1, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(0, 1, 1, 17, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM schedules sc`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows(scheduleCols).
			AddRow(1, "office hours", start, end, "{monday}", nil, nil, 10, true, 2, nil, nil, now, now))

	out, err := store.ListActiveSchedulesForDisplay(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, model.ClockTime("09:00"), out[0].StartTime)
	assert.Equal(t, model.ClockTime("17:00"), out[0].EndTime)

	monday := schedule.Normalize(time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, schedule.ReasonEligible, schedule.Evaluate(out[0], monday))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSchedulesForDisplayEmptyIsNotNil(t *testing.T) {
	conn, mock := newMock(t)
	store := NewStore(conn)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY sc.priority DESC, sc.id")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows(scheduleCols))

	out, err := store.ListSchedulesForDisplay(context.Background(), 4)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestGetPlaylistByIDWithDanglingMedia(t *testing.T) {
	conn, mock := newMock(t)
	store := NewStore(conn)
	now := time.Now()

	mock.ExpectQuery(`FROM playlists WHERE id = \$1`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "updated_at"}).AddRow(3, "P3", now))
	mock.ExpectQuery(`FROM playlist_items pi LEFT JOIN media m`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(10, 0, 5, 0, 15, false, nil, "FILL", nil, 5, "intro", "video", "/uploads/intro.mp4", 30, 1920, 1080, now).
			AddRow(11, 0, 6, 1, nil, true, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil))

	p, err := store.GetPlaylistByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "P3", p.Name)
	require.Len(t, p.Items, 2)

	first := p.Items[0]
	require.NotNil(t, first.Media)
	assert.Equal(t, "/uploads/intro.mp4", first.Media.URL)
	assert.Equal(t, 30, *first.Media.Duration)
	assert.Equal(t, 15, *first.Duration)
	assert.Equal(t, "FILL", *first.ResizeMode)

	second := p.Items[1]
	assert.Nil(t, second.Media)
	assert.Equal(t, 6, *second.MediaID)
	assert.True(t, second.Loop)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPlaylistByIDNotFound(t *testing.T) {
	conn, mock := newMock(t)
	store := NewStore(conn)

	mock.ExpectQuery(`FROM playlists`).WithArgs(99).WillReturnError(sql.ErrNoRows)

	_, err := store.GetPlaylistByID(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLayoutByIDBucketsItemsBySection(t *testing.T) {
	conn, mock := newMock(t)
	store := NewStore(conn)
	now := time.Now()

	mock.ExpectQuery(`FROM layouts WHERE id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "width", "height", "orientation", "updated_at"}).
			AddRow(7, "split", 1920, 1080, "LANDSCAPE", now))
	mock.ExpectQuery(`FROM layout_sections WHERE layout_id = \$1 ORDER BY sort_order, id`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "layout_id", "name", "x", "y", "width", "height", "loop", "frequency", "sort_order"}).
			AddRow(20, 7, "left", 0.0, 0.0, 50.0, 100.0, true, nil, 0).
			AddRow(21, 7, "right", 50.0, 0.0, 50.0, 100.0, false, 3, 1).
			AddRow(22, 7, "ticker", 0.0, 90.0, 100.0, 10.0, true, nil, 2))
	mock.ExpectQuery(`FROM section_items si JOIN layout_sections ls`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(30, 20, 5, 0, nil, false, nil, nil, nil, 5, "a", "image", "/uploads/a.png", nil, nil, nil, now).
			AddRow(31, 20, 6, 1, nil, false, nil, nil, 90, 6, "b", "image", "/uploads/b.png", nil, nil, nil, now).
			AddRow(32, 21, 5, 0, 20, false, nil, nil, nil, 5, "a", "image", "/uploads/a.png", nil, nil, nil, now))

	l, err := store.GetLayoutByID(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, l.Sections, 3)

	assert.Equal(t, "left", l.Sections[0].Name)
	require.Len(t, l.Sections[0].Items, 2)
	assert.Equal(t, 90, *l.Sections[0].Items[1].Rotation)

	require.Len(t, l.Sections[1].Items, 1)
	assert.Equal(t, 3, *l.Sections[1].Frequency)
	assert.Equal(t, 50.0, l.Sections[1].X)

	assert.Empty(t, l.Sections[2].Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestViewCommitsOnSuccess(t *testing.T) {
	conn, mock := newMock(t)
	store := NewStore(conn)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM displays WHERE device_token = \$1`).
		WithArgs("tok-1").
		WillReturnRows(sqlmock.NewRows(displayCols).AddRow(1, "D1", nil, "tok-1", nil, nil, true, now, now))
	mock.ExpectCommit()

	err := store.View(context.Background(), func(r Reader) error {
		d, err := r.GetDisplayByToken(context.Background(), "tok-1")
		if err != nil {
			return err
		}
		assert.Equal(t, "D1", d.Name)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestViewRollsBackOnError(t *testing.T) {
	conn, mock := newMock(t)
	store := NewStore(conn)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := store.View(context.Background(), func(Reader) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestViewBeginFailure(t *testing.T) {
	conn, mock := newMock(t)
	store := NewStore(conn)

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	called := false
	err := store.View(context.Background(), func(Reader) error { called = true; return nil })
	assert.Error(t, err)
	assert.False(t, called)
}

func TestRunMigrationsAppliesUpFilesInOrder(t *testing.T) {
	conn, mock := newMock(t)
	dir := t.TempDir()

	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	write("0002_second.up.sql", "CREATE TABLE second (id INT);")
	write("0001_first.up.sql", "CREATE TABLE first (id INT);")
	write("0001_first.down.sql", "DROP TABLE first;")
	write("0003_empty.up.sql", "")

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE first")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE second")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, RunMigrations(conn, dir))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsStopsOnFailure(t *testing.T) {
	conn, mock := newMock(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0001_bad.up.sql"), []byte("CREATE TABLE"), 0o600))

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("syntax error"))

	err := RunMigrations(conn, dir)
	assert.ErrorContains(t, err, "0001_bad.up.sql")
}

func TestPingNilConnection(t *testing.T) {
	assert.Error(t, Ping(context.Background(), nil))
}
