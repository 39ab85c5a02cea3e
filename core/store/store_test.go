package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"asset-importer/core/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Connect(database.Config{
		Driver: database.DriverSQLite,
		Name:   fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	})
	require.NoError(t, err)
	s := New(db)
	require.NoError(t, s.Migrate())
	return s
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func ptr[T any](v T) *T { return &v }

func TestCreateOrFetch(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	a, created, err := s.CreateOrFetch(ctx, &Asset{Name: "WebServer01", NameKey: "webserver01", Owner: "Security Team"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, a.ID)

	b, created, err := s.CreateOrFetch(ctx, &Asset{Name: "WEBSERVER01", NameKey: "webserver01", Owner: "Someone Else"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, "Security Team", b.Owner)
	assert.Equal(t, "WebServer01", b.Name)

	var count int64
	require.NoError(t, s.DB().Model(&Asset{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestFind(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	missing, err := s.FindByKey(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, _, err = s.CreateOrFetch(ctx, &Asset{Name: "db01", NameKey: "db01", IP: ptr("10.0.0.5")})
	require.NoError(t, err)

	byKey, err := s.FindByKey(ctx, "db01")
	require.NoError(t, err)
	require.NotNil(t, byKey)

	byIP, err := s.FindByIP(ctx, "10.0.0.5")
	require.NoError(t, err)
	require.NotNil(t, byIP)
	assert.Equal(t, byKey.ID, byIP.ID)

	none, err := s.FindByIP(ctx, "10.0.0.6")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSave_OnlyMergeColumns(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	a, _, err := s.CreateOrFetch(ctx, &Asset{Name: "laptop7", NameKey: "laptop7", Owner: "Jane Doe", Type: "Laptop"})
	require.NoError(t, err)

	a.Owner = "changed in memory"
	a.IP = ptr("192.168.1.7")
	a.Groups = "QA"
	require.NoError(t, s.Save(ctx, a))

	got, err := s.GetAsset(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Owner)
	assert.Equal(t, "192.168.1.7", *got.IP)
	assert.Equal(t, "QA", got.Groups)

	assert.Error(t, s.Save(ctx, &Asset{}))
}

func TestTouchLastSeen(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	var ids []uint
	for i := range 3 {
		a, _, err := s.CreateOrFetch(ctx, &Asset{Name: fmt.Sprint("h", i), NameKey: fmt.Sprint("h", i)})
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}
	before, err := s.GetAsset(ctx, ids[0])
	require.NoError(t, err)

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.TouchLastSeen(ctx, ids[:2], at))
	require.NoError(t, s.TouchLastSeen(ctx, nil, at))

	first, err := s.GetAsset(ctx, ids[0])
	require.NoError(t, err)
	require.NotNil(t, first.LastSeen)
	assert.True(t, at.Equal(*first.LastSeen))
	assert.True(t, before.UpdatedAt.Equal(first.UpdatedAt))

	third, err := s.GetAsset(ctx, ids[2])
	require.NoError(t, err)
	assert.Nil(t, third.LastSeen)
}

func TestObservations_AppendAndCascade(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	a, _, err := s.CreateOrFetch(ctx, &Asset{Name: "web", NameKey: "web"})
	require.NoError(t, err)
	other, _, err := s.CreateOrFetch(ctx, &Asset{Name: "other", NameKey: "other"})
	require.NoError(t, err)

	now := time.Now().UTC()
	for range 2 {
		// identical events are kept as separate rows
		require.NoError(t, s.AddObservation(ctx, &Observation{
			AssetID: a.ID, Source: "spreadsheet", Kind: KindVulnerability,
			VulnerabilityID: ptr("CVE-2024-0001"), ObservedAt: now,
		}))
	}
	require.NoError(t, s.AddObservation(ctx, &Observation{AssetID: other.ID, Source: "scan", Kind: KindPort, Port: ptr(22), ObservedAt: now}))

	obs, err := s.ListObservations(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, obs, 2)

	// deleting one observation leaves the asset alone
	require.NoError(t, s.DeleteObservation(ctx, obs[0].ID))
	still, err := s.GetAsset(ctx, a.ID)
	require.NoError(t, err)
	assert.NotNil(t, still)

	require.NoError(t, s.DeleteAsset(ctx, a.ID))
	gone, err := s.GetAsset(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	obs, err = s.ListObservations(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, obs)

	otherObs, err := s.ListObservations(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, otherObs, 1)

	assert.ErrorIs(t, s.DeleteAsset(ctx, a.ID), gorm.ErrRecordNotFound)
}

func TestForeignKeyCascade(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	a, _, err := s.CreateOrFetch(ctx, &Asset{Name: "fk", NameKey: "fk"})
	require.NoError(t, err)
	require.NoError(t, s.AddObservation(ctx, &Observation{AssetID: a.ID, Source: "scan", Kind: KindPort, Port: ptr(80), ObservedAt: time.Now()}))

	// bypass DeleteAsset so only the constraint removes the child rows
	require.NoError(t, s.DB().Exec("DELETE FROM assets WHERE id = ?", a.ID).Error)

	var count int64
	require.NoError(t, s.DB().Model(&Observation{}).Where("asset_id = ?", a.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFindByKey_ErrorIsWrapped(t *testing.T) {
	db, mock := setupMockDB(t)
	s := New(db)

	mock.ExpectQuery("SELECT \\* FROM `assets` WHERE name_key = \\?").
		WithArgs("web", 1).
		WillReturnError(errors.New("driver: bad connection"))

	a, err := s.FindByKey(context.Background(), "web")
	assert.Nil(t, a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `find asset "web"`)
	assert.True(t, database.IsSystemic(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
