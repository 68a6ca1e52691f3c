package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/numberdesk/internal/record"
)

func TestLatestSnapshotEmpty(t *testing.T) {
	s := createTestStore(t)

	_, err := s.LatestSnapshot(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, Snapshot{Seq: 4, FetchedAt: testTime, Records: testRecords()}))

	snap, err := s.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), snap.Seq)
	assert.True(t, testTime.Equal(snap.FetchedAt))
	assert.Equal(t, testRecords(), snap.Records)
}

func TestSaveSnapshotReplacesPrevious(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, Snapshot{Seq: 1, FetchedAt: testTime, Records: testRecords()}))

	shorter := []record.Record{{MSISDN: "1", CallCenterStatus: record.StatusOpen}}
	require.NoError(t, s.SaveSnapshot(ctx, Snapshot{Seq: 2, FetchedAt: testTime, Records: shorter}))

	snap, err := s.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.Seq)
	assert.Equal(t, shorter, snap.Records)
}

func TestSaveEmptySnapshot(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, Snapshot{Seq: 1, FetchedAt: testTime}))

	snap, err := s.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.NotNil(t, snap.Records)
	assert.Empty(t, snap.Records)
}

func TestSaveSnapshotRejectsInvalidStatusAtomically(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, Snapshot{Seq: 1, FetchedAt: testTime, Records: testRecords()}))

	bad := append(testRecords(), record.Record{CallCenterStatus: "Closed"})
	require.Error(t, s.SaveSnapshot(ctx, Snapshot{Seq: 2, FetchedAt: testTime, Records: bad}))

	snap, err := s.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Seq)
	assert.Equal(t, testRecords(), snap.Records)
}
