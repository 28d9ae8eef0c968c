package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"workstream/pkg/models"
)

type fakePersister struct {
	snap  *models.Snapshot
	found bool
	saves int
}

func (f *fakePersister) Load() (*models.Snapshot, bool, error) { return f.snap, f.found, nil }

func (f *fakePersister) Save(s *models.Snapshot) error {
	f.saves++
	f.snap = s
	return nil
}

func TestOpenSeedsEmptySnapshot(t *testing.T) {
	st, err := Open(&fakePersister{})
	require.NoError(t, err)

	err = st.View(func(snap *models.Snapshot) error {
		require.Empty(t, snap.Users)
		require.Len(t, snap.Workspace.ChannelsExist, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestOpenUsesPersistedSnapshot(t *testing.T) {
	seed := models.NewSnapshot()
	seed.MessageCounter = 7
	st, err := Open(&fakePersister{snap: seed, found: true})
	require.NoError(t, err)

	err = st.View(func(snap *models.Snapshot) error {
		require.Equal(t, 7, snap.MessageCounter)
		return nil
	})
	require.NoError(t, err)
}

func TestUpdatePersistsOnSuccess(t *testing.T) {
	p := &fakePersister{}
	st, err := Open(p)
	require.NoError(t, err)

	require.NoError(t, st.Update(func(snap *models.Snapshot) error {
		snap.MessageCounter = 3
		return nil
	}))
	require.Equal(t, 1, p.saves)
	require.Equal(t, 3, p.snap.MessageCounter)

	boom := errors.New("validation failed")
	require.ErrorIs(t, st.Update(func(snap *models.Snapshot) error { return boom }), boom)
	require.Equal(t, 1, p.saves)
}

func TestResetReplacesSnapshot(t *testing.T) {
	p := &fakePersister{}
	st, err := Open(p)
	require.NoError(t, err)

	require.NoError(t, st.Update(func(snap *models.Snapshot) error {
		snap.MessageCounter = 9
		return nil
	}))
	require.NoError(t, st.Reset(models.NewSnapshot()))
	err = st.View(func(snap *models.Snapshot) error {
		require.Zero(t, snap.MessageCounter)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, p.saves)
}
