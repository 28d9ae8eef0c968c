package engine

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDMCreateNameAndMembers(t *testing.T) {
	e := newTestEngine(t)
	users := register(t, e, 3)
	creator := users[0]

	res, err := e.DMCreate(creator.UserID, []int{users[1].UserID, users[2].UserID})
	require.NoError(t, err)

	var handles []string
	for _, u := range users {
		p, perr := e.UserProfile(u.UserID, u.UserID)
		require.NoError(t, perr)
		handles = append(handles, p.Handle)
	}
	sort.Strings(handles)
	require.Equal(t, strings.Join(handles, ", "), res.Name)

	det, err := e.DMDetails(users[1].UserID, res.DMID)
	require.NoError(t, err)
	require.Len(t, det.Members, 3)

	// duplicates and unknown users are rejected
	_, err = e.DMCreate(creator.UserID, []int{users[1].UserID, users[1].UserID})
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.DMCreate(creator.UserID, []int{99})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDMLeaveDownToEmpty(t *testing.T) {
	e := newTestEngine(t)
	users := register(t, e, 2)

	res, err := e.DMCreate(users[0].UserID, []int{users[1].UserID})
	require.NoError(t, err)

	require.NoError(t, e.DMLeave(users[1].UserID, res.DMID))
	require.NoError(t, e.DMLeave(users[0].UserID, res.DMID))

	// the empty DM still exists; nobody can read it any more
	_, err = e.DMDetails(users[0].UserID, res.DMID)
	require.ErrorIs(t, err, ErrAccessDenied)
}

func TestDMRemoveKeepsLaterIDsStable(t *testing.T) {
	e := newTestEngine(t)
	users := register(t, e, 2)
	creator := users[0]

	first, err := e.DMCreate(creator.UserID, []int{users[1].UserID})
	require.NoError(t, err)
	second, err := e.DMCreate(creator.UserID, nil)
	require.NoError(t, err)
	require.Equal(t, first.DMID+1, second.DMID)

	// only the creator removes
	require.ErrorIs(t, e.DMRemove(users[1].UserID, first.DMID), ErrAccessDenied)
	require.NoError(t, e.DMRemove(creator.UserID, first.DMID))

	// the removed slot is dead, the later DM keeps its id
	_, err = e.DMDetails(creator.UserID, first.DMID)
	require.ErrorIs(t, err, ErrInvalidInput)
	det, err := e.DMDetails(creator.UserID, second.DMID)
	require.NoError(t, err)
	require.Len(t, det.Members, 1)

	lists, err := e.DMList(creator.UserID)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	require.Equal(t, second.DMID, lists[0].DMID)
}

func TestDMRemoveInvalidatesMessages(t *testing.T) {
	e := newTestEngine(t)
	users := register(t, e, 2)
	creator := users[0]

	res, err := e.DMCreate(creator.UserID, []int{users[1].UserID})
	require.NoError(t, err)
	id, err := e.SendDM(creator.UserID, res.DMID, "doomed")
	require.NoError(t, err)

	require.NoError(t, e.DMRemove(creator.UserID, res.DMID))
	require.ErrorIs(t, e.Edit(creator.UserID, id, "ghost"), ErrInvalidInput)
}

func TestDMMessagesPagination(t *testing.T) {
	e := newTestEngine(t)
	users := register(t, e, 2)

	res, err := e.DMCreate(users[0].UserID, []int{users[1].UserID})
	require.NoError(t, err)
	_, err = e.SendDM(users[0].UserID, res.DMID, "one")
	require.NoError(t, err)
	_, err = e.SendDM(users[1].UserID, res.DMID, "two")
	require.NoError(t, err)

	page, err := e.DMMessages(users[0].UserID, res.DMID, 0)
	require.NoError(t, err)
	require.Equal(t, -1, page.End)
	require.Len(t, page.Messages, 2)
	require.Equal(t, "two", page.Messages[0].Message)

	_, err = e.DMMessages(users[0].UserID, res.DMID, 5)
	require.ErrorIs(t, err, ErrInvalidInput)
}
