package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChannelCreateValidation(t *testing.T) {
	e := newTestEngine(t)
	u := register(t, e, 1)[0]

	_, err := e.ChannelCreate(u.UserID, "", true)
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.ChannelCreate(u.UserID, strings.Repeat("x", 21), true)
	require.ErrorIs(t, err, ErrInvalidInput)

	chID, err := e.ChannelCreate(u.UserID, "general", true)
	require.NoError(t, err)
	require.Equal(t, 0, chID)

	_, err = e.ChannelCreate(u.UserID, "general", false)
	require.ErrorIs(t, err, ErrInvalidInput)

	det, err := e.ChannelDetails(u.UserID, chID)
	require.NoError(t, err)
	require.Equal(t, "general", det.Name)
	require.Len(t, det.OwnerMembers, 1)
	require.Len(t, det.AllMembers, 1)
}

func TestChannelJoinRules(t *testing.T) {
	e := newTestEngine(t)
	users := register(t, e, 3)
	owner, member, globalOwner := users[1], users[2], users[0]

	pub, err := e.ChannelCreate(owner.UserID, "public", true)
	require.NoError(t, err)
	priv, err := e.ChannelCreate(owner.UserID, "private", false)
	require.NoError(t, err)

	require.NoError(t, e.ChannelJoin(member.UserID, pub))
	require.ErrorIs(t, e.ChannelJoin(member.UserID, pub), ErrInvalidInput)

	require.ErrorIs(t, e.ChannelJoin(member.UserID, priv), ErrAccessDenied)
	// the first registered user is the global owner and may join private
	// channels
	require.NoError(t, e.ChannelJoin(globalOwner.UserID, priv))

	require.ErrorIs(t, e.ChannelJoin(member.UserID, 42), ErrInvalidInput)
}

func TestChannelListings(t *testing.T) {
	e := newTestEngine(t)
	users := register(t, e, 2)

	chA, err := e.ChannelCreate(users[0].UserID, "alpha", true)
	require.NoError(t, err)
	_, err = e.ChannelCreate(users[1].UserID, "beta", false)
	require.NoError(t, err)

	mine, err := e.ChannelList(users[0].UserID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, chA, mine[0].ChannelID)

	all, err := e.ChannelListAll(users[0].UserID)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestChannelInviteAndLeave(t *testing.T) {
	e := newTestEngine(t)
	users := register(t, e, 3)
	owner, invitee, outsider := users[0], users[1], users[2]

	chID, err := e.ChannelCreate(owner.UserID, "team", false)
	require.NoError(t, err)

	require.ErrorIs(t, e.ChannelInvite(outsider.UserID, chID, invitee.UserID), ErrAccessDenied)
	require.NoError(t, e.ChannelInvite(owner.UserID, chID, invitee.UserID))
	require.ErrorIs(t, e.ChannelInvite(owner.UserID, chID, invitee.UserID), ErrInvalidInput)

	det, err := e.ChannelDetails(invitee.UserID, chID)
	require.NoError(t, err)
	require.Len(t, det.AllMembers, 2)

	require.NoError(t, e.ChannelLeave(invitee.UserID, chID))
	require.ErrorIs(t, e.ChannelLeave(invitee.UserID, chID), ErrAccessDenied)

	// leaving drops ownership too
	require.NoError(t, e.ChannelLeave(owner.UserID, chID))
	_, err = e.ChannelDetails(owner.UserID, chID)
	require.ErrorIs(t, err, ErrAccessDenied)
}

func TestChannelOwnerManagement(t *testing.T) {
	e := newTestEngine(t)
	users := register(t, e, 3)
	owner, member := users[1], users[2]

	chID, err := e.ChannelCreate(owner.UserID, "team", true)
	require.NoError(t, err)
	require.NoError(t, e.ChannelJoin(member.UserID, chID))

	// a plain member cannot promote
	require.ErrorIs(t, e.ChannelAddOwner(member.UserID, chID, member.UserID), ErrAccessDenied)
	// target must be a member
	require.ErrorIs(t, e.ChannelAddOwner(owner.UserID, chID, users[0].UserID), ErrInvalidInput)

	require.NoError(t, e.ChannelAddOwner(owner.UserID, chID, member.UserID))
	require.ErrorIs(t, e.ChannelAddOwner(owner.UserID, chID, member.UserID), ErrInvalidInput)

	require.NoError(t, e.ChannelRemoveOwner(member.UserID, chID, owner.UserID))
	// the last owner cannot be demoted
	require.ErrorIs(t, e.ChannelRemoveOwner(member.UserID, chID, member.UserID), ErrInvalidInput)
}
