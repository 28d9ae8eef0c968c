package engine

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"workstream/pkg/scheduler"
	"workstream/pkg/state"
)

// setupChannel registers n users, creates one public channel owned by user 0
// and joins everyone else to it.
func setupChannel(t *testing.T, e *Engine, n int) ([]AuthResult, int) {
	t.Helper()
	users := register(t, e, n)
	chID, err := e.ChannelCreate(users[0].UserID, "general", true)
	require.NoError(t, err)
	for _, u := range users[1:] {
		require.NoError(t, e.ChannelJoin(u.UserID, chID))
	}
	return users, chID
}

func TestSendAndIDs(t *testing.T) {
	e := newTestEngine(t)
	users, chID := setupChannel(t, e, 2)

	id1, err := e.Send(users[0].UserID, chID, "hello")
	require.NoError(t, err)
	id2, err := e.Send(users[1].UserID, chID, "world")
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)

	dm, err := e.DMCreate(users[0].UserID, []int{users[1].UserID})
	require.NoError(t, err)
	id3, err := e.SendDM(users[0].UserID, dm.DMID, "dm message")
	require.NoError(t, err)

	// channel and DM messages draw from one id space
	require.NotEqual(t, id1, id3)
	require.NotEqual(t, id2, id3)

	page, err := e.ChannelMessages(users[0].UserID, chID, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	// index 0 is the most recent
	require.Equal(t, "world", page.Messages[0].Message)
	require.Equal(t, users[1].UserID, page.Messages[0].UserID)
	require.Equal(t, "hello", page.Messages[1].Message)
}

func TestSendValidation(t *testing.T) {
	e := newTestEngine(t)
	users, chID := setupChannel(t, e, 1)
	outsider := register(t, e, 2)[1]

	_, err := e.Send(users[0].UserID, chID, "")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.Send(users[0].UserID, chID, strings.Repeat("a", 1001))
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.Send(users[0].UserID, 99, "hi")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.Send(outsider.UserID, chID, "hi")
	require.ErrorIs(t, err, ErrAccessDenied)
}

func TestEdit(t *testing.T) {
	e := newTestEngine(t)
	users, chID := setupChannel(t, e, 2)
	author := users[1].UserID

	id, err := e.Send(author, chID, "draft")
	require.NoError(t, err)

	// the author and owners may edit; other members may not
	require.ErrorIs(t, e.Edit(users[0].UserID+99, id, "x"), ErrInvalidInput)
	require.NoError(t, e.Edit(author, id, "final"))
	require.NoError(t, e.Edit(users[0].UserID, id, "owner edit"))

	// edit accepts at most 100 characters even though send allows 1000
	require.ErrorIs(t, e.Edit(author, id, strings.Repeat("a", 101)), ErrInvalidInput)

	page, err := e.ChannelMessages(author, chID, 0)
	require.NoError(t, err)
	require.Equal(t, "owner edit", page.Messages[0].Message)

	// empty body deletes; a second edit on the same id then fails
	require.NoError(t, e.Edit(author, id, ""))
	require.ErrorIs(t, e.Edit(author, id, "ghost"), ErrInvalidInput)

	page, err = e.ChannelMessages(author, chID, 0)
	require.NoError(t, err)
	require.Empty(t, page.Messages)
}

func TestEditDeniedForPlainMember(t *testing.T) {
	e := newTestEngine(t)
	users, chID := setupChannel(t, e, 2)

	id, err := e.Send(users[0].UserID, chID, "owner message")
	require.NoError(t, err)
	require.ErrorIs(t, e.Edit(users[1].UserID, id, "hijack"), ErrAccessDenied)
	require.ErrorIs(t, e.Remove(users[1].UserID, id), ErrAccessDenied)
}

func TestRemoveTwiceFails(t *testing.T) {
	e := newTestEngine(t)
	users, chID := setupChannel(t, e, 1)

	id, err := e.Send(users[0].UserID, chID, "to delete")
	require.NoError(t, err)
	require.NoError(t, e.Remove(users[0].UserID, id))
	require.ErrorIs(t, e.Remove(users[0].UserID, id), ErrInvalidInput)
}

func TestPinUnpinToggles(t *testing.T) {
	e := newTestEngine(t)
	users, chID := setupChannel(t, e, 2)
	member := users[1].UserID

	id, err := e.Send(member, chID, "pin me")
	require.NoError(t, err)

	// authorship is not enough for pinning
	require.ErrorIs(t, e.Pin(member, id), ErrAccessDenied)

	require.ErrorIs(t, e.Unpin(users[0].UserID, id), ErrInvalidInput)
	require.NoError(t, e.Pin(users[0].UserID, id))
	require.ErrorIs(t, e.Pin(users[0].UserID, id), ErrInvalidInput)

	page, err := e.ChannelMessages(member, chID, 0)
	require.NoError(t, err)
	require.True(t, page.Messages[0].IsPinned)

	require.NoError(t, e.Unpin(users[0].UserID, id))
	require.ErrorIs(t, e.Unpin(users[0].UserID, id), ErrInvalidInput)
}

func TestReactUniqueness(t *testing.T) {
	e := newTestEngine(t)
	users, chID := setupChannel(t, e, 2)

	id, err := e.Send(users[0].UserID, chID, "react to me")
	require.NoError(t, err)

	require.ErrorIs(t, e.React(users[1].UserID, id, 2), ErrInvalidInput)
	require.NoError(t, e.React(users[1].UserID, id, 1))
	require.ErrorIs(t, e.React(users[1].UserID, id, 1), ErrInvalidInput)

	page, err := e.ChannelMessages(users[1].UserID, chID, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages[0].Reacts, 1)
	require.Equal(t, []int{users[1].UserID}, page.Messages[0].Reacts[0].UserIDs)
	require.True(t, page.Messages[0].Reacts[0].IsThisUserReacted)

	// viewer who has not reacted sees the flag clear
	page, err = e.ChannelMessages(users[0].UserID, chID, 0)
	require.NoError(t, err)
	require.False(t, page.Messages[0].Reacts[0].IsThisUserReacted)

	require.NoError(t, e.Unreact(users[1].UserID, id, 1))
	require.ErrorIs(t, e.Unreact(users[1].UserID, id, 1), ErrInvalidInput)
}

func TestShare(t *testing.T) {
	e := newTestEngine(t)
	users, chX := setupChannel(t, e, 2)
	a := users[0].UserID

	chY, err := e.ChannelCreate(a, "second", true)
	require.NoError(t, err)

	og, err := e.Send(a, chX, "hello")
	require.NoError(t, err)

	shared, err := e.Share(a, og, "world", chY, -1)
	require.NoError(t, err)
	require.NotEqual(t, og, shared)

	page, err := e.ChannelMessages(a, chY, 0)
	require.NoError(t, err)
	require.Equal(t, "hello world", page.Messages[0].Message)

	// empty extra text still joins with a space
	_, err = e.Share(a, og, "", chY, -1)
	require.NoError(t, err)
	page, err = e.ChannelMessages(a, chY, 0)
	require.NoError(t, err)
	require.Equal(t, "hello ", page.Messages[0].Message)

	// exactly one target must be given
	_, err = e.Share(a, og, "x", -1, -1)
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.Share(a, og, "x", chY, 0)
	require.ErrorIs(t, err, ErrInvalidInput)

	// sharer must belong to the target container
	dm, err := e.DMCreate(users[1].UserID, nil)
	require.NoError(t, err)
	_, err = e.Share(a, og, "x", -1, dm.DMID)
	require.ErrorIs(t, err, ErrAccessDenied)
}

func TestPaginationWindows(t *testing.T) {
	e := newTestEngine(t)
	users, chID := setupChannel(t, e, 1)
	uid := users[0].UserID

	for i := 0; i < 125; i++ {
		_, err := e.Send(uid, chID, fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}

	page, err := e.ChannelMessages(uid, chID, 0)
	require.NoError(t, err)
	require.Equal(t, 50, page.End)
	require.Len(t, page.Messages, 50)
	require.Equal(t, "msg 124", page.Messages[0].Message)

	page, err = e.ChannelMessages(uid, chID, 50)
	require.NoError(t, err)
	require.Equal(t, 100, page.End)
	require.Len(t, page.Messages, 50)

	page, err = e.ChannelMessages(uid, chID, 100)
	require.NoError(t, err)
	require.Equal(t, -1, page.End)
	require.Len(t, page.Messages, 25)
	require.Equal(t, "msg 0", page.Messages[24].Message)

	// start == count gives an empty final page
	page, err = e.ChannelMessages(uid, chID, 125)
	require.NoError(t, err)
	require.Equal(t, -1, page.End)
	require.Empty(t, page.Messages)

	_, err = e.ChannelMessages(uid, chID, 126)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSendLater(t *testing.T) {
	e := newTestEngine(t)
	users, chID := setupChannel(t, e, 1)
	uid := users[0].UserID

	_, err := e.SendLater(uid, chID, "too late", time.Now().UTC().Unix()-10)
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.SendLater(uid, chID, "", time.Now().UTC().Unix())
	require.ErrorIs(t, err, ErrInvalidInput)

	id, err := e.SendLater(uid, chID, "deferred", time.Now().UTC().Unix())
	require.NoError(t, err)

	// delivery is asynchronous even for a zero delay
	require.Eventually(t, func() bool {
		page, perr := e.ChannelMessages(uid, chID, 0)
		return perr == nil && len(page.Messages) == 1 && page.Messages[0].MessageID == id
	}, 2*time.Second, 10*time.Millisecond)

	// ids keep advancing past the reserved one
	next, err := e.Send(uid, chID, "after")
	require.NoError(t, err)
	require.Greater(t, next, id)
}

func TestSendLaterUndeliveredIsUnlocatable(t *testing.T) {
	e := newTestEngine(t)
	users, chID := setupChannel(t, e, 1)
	uid := users[0].UserID

	id, err := e.SendLater(uid, chID, "future", time.Now().UTC().Unix()+3600)
	require.NoError(t, err)

	// the id exists but the message is not addressable until delivery
	require.ErrorIs(t, e.Edit(uid, id, "early"), ErrInvalidInput)
	require.ErrorIs(t, e.Pin(uid, id), ErrInvalidInput)
}

func TestLengthBoundsCountCharacters(t *testing.T) {
	e := newTestEngine(t)
	users, chID := setupChannel(t, e, 1)
	uid := users[0].UserID

	// 600 characters, 1200 bytes: within the 1000-character send bound
	id, err := e.Send(uid, chID, strings.Repeat("é", 600))
	require.NoError(t, err)

	_, err = e.Send(uid, chID, strings.Repeat("é", 1000))
	require.NoError(t, err)
	_, err = e.Send(uid, chID, strings.Repeat("é", 1001))
	require.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, e.Edit(uid, id, strings.Repeat("ñ", 100)))
	require.ErrorIs(t, e.Edit(uid, id, strings.Repeat("ñ", 101)), ErrInvalidInput)

	_, err = e.Search(uid, strings.Repeat("é", 1000))
	require.NoError(t, err)
	_, err = e.Search(uid, strings.Repeat("é", 1001))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSharePersistsOnce(t *testing.T) {
	p := &memPersister{}
	st, err := state.Open(p)
	require.NoError(t, err)
	sched := scheduler.New()
	t.Cleanup(sched.Stop)
	e := New(st, sched, "test-secret", nil)

	users, chID := setupChannel(t, e, 1)
	dm, err := e.DMCreate(users[0].UserID, nil)
	require.NoError(t, err)
	id, err := e.Send(users[0].UserID, chID, "hello")
	require.NoError(t, err)

	before := p.saves
	_, err = e.Share(users[0].UserID, id, "fwd", -1, dm.DMID)
	require.NoError(t, err)
	require.Equal(t, before+1, p.saves)

	// a share that fails target validation persists nothing
	before = p.saves
	_, err = e.Share(users[0].UserID, id, "fwd", -1, 99)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Equal(t, before, p.saves)
}
