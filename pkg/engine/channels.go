package engine

import (
	"go.uber.org/zap"

	"workstream/pkg/logger"
	"workstream/pkg/models"
)

// ChannelSummary is one entry in a channel listing.
type ChannelSummary struct {
	ChannelID int    `json:"channel_id"`
	Name      string `json:"name"`
}

// ChannelDetails is the full membership view of one channel.
type ChannelDetails struct {
	Name         string    `json:"name"`
	Public       bool      `json:"is_public"`
	OwnerMembers []Profile `json:"owner_members"`
	AllMembers   []Profile `json:"all_members"`
}

// ChannelCreate makes a channel with the creator as sole owner and member.
// Names are 1 to 20 characters and unique across the workspace.
func (e *Engine) ChannelCreate(uid int, name string, public bool) (int, error) {
	var chID int
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if n := runeLen(name); n < 1 || n > 20 {
			return invalidf("channel name length %d", n)
		}
		for ci := range snap.Channels {
			if snap.Channels[ci].Name == name {
				return invalidf("channel name %q taken", name)
			}
		}
		chID = len(snap.Channels)
		snap.Channels = append(snap.Channels, models.Channel{
			Name:     name,
			Public:   public,
			Owners:   []int{uid},
			Members:  []int{uid},
			Messages: []models.Message{},
		})
		ts := e.now()
		statChannelCreated(snap, ts)
		statChannelJoin(snap, uid, ts)
		logger.Log.Info("channel_created", zap.Int("channel_id", chID), zap.String("name", name))
		return nil
	})
	countOp("channel_create", err)
	return chID, err
}

// ChannelList lists channels the acting user belongs to.
func (e *Engine) ChannelList(uid int) ([]ChannelSummary, error) {
	var out []ChannelSummary
	err := e.st.View(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		out = []ChannelSummary{}
		for ci := range snap.Channels {
			if contains(snap.Channels[ci].Members, uid) {
				out = append(out, ChannelSummary{ChannelID: ci, Name: snap.Channels[ci].Name})
			}
		}
		return nil
	})
	countOp("channels_list", err)
	return out, err
}

// ChannelListAll lists every channel, public or private.
func (e *Engine) ChannelListAll(uid int) ([]ChannelSummary, error) {
	var out []ChannelSummary
	err := e.st.View(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		out = make([]ChannelSummary, 0, len(snap.Channels))
		for ci := range snap.Channels {
			out = append(out, ChannelSummary{ChannelID: ci, Name: snap.Channels[ci].Name})
		}
		return nil
	})
	countOp("channels_listall", err)
	return out, err
}

// ChannelDetails returns membership details; the caller must be a member.
func (e *Engine) ChannelDetails(uid, chID int) (ChannelDetails, error) {
	var out ChannelDetails
	err := e.st.View(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if !validChannel(snap, chID) {
			return invalidf("channel %d", chID)
		}
		ch := &snap.Channels[chID]
		if !contains(ch.Members, uid) {
			return deniedf("user %d not in channel %d", uid, chID)
		}
		out = ChannelDetails{Name: ch.Name, Public: ch.Public}
		for _, id := range ch.Owners {
			out.OwnerMembers = append(out.OwnerMembers, profileOf(snap, id))
		}
		for _, id := range ch.Members {
			out.AllMembers = append(out.AllMembers, profileOf(snap, id))
		}
		return nil
	})
	countOp("channel_details", err)
	return out, err
}

// ChannelJoin adds the acting user to a channel. Private channels admit only
// global owners.
func (e *Engine) ChannelJoin(uid, chID int) error {
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if !validChannel(snap, chID) {
			return invalidf("channel %d", chID)
		}
		ch := &snap.Channels[chID]
		if contains(ch.Members, uid) {
			return invalidf("user %d already in channel %d", uid, chID)
		}
		if !ch.Public && !isGlobalOwner(snap, uid) {
			return deniedf("channel %d is private", chID)
		}
		ch.Members = append(ch.Members, uid)
		statChannelJoin(snap, uid, e.now())
		return nil
	})
	countOp("channel_join", err)
	return err
}

// ChannelInvite adds another user to a channel the inviter belongs to and
// notifies the invitee.
func (e *Engine) ChannelInvite(uid, chID, invitee int) error {
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if !validChannel(snap, chID) {
			return invalidf("channel %d", chID)
		}
		if !validUser(snap, invitee) {
			return invalidf("user %d", invitee)
		}
		ch := &snap.Channels[chID]
		if !contains(ch.Members, uid) {
			return deniedf("user %d not in channel %d", uid, chID)
		}
		if contains(ch.Members, invitee) {
			return invalidf("user %d already in channel %d", invitee, chID)
		}
		ch.Members = append(ch.Members, invitee)
		statChannelJoin(snap, invitee, e.now())
		notifyInvite(snap, uid, location{kind: kindChannel, container: chID}, invitee)
		return nil
	})
	countOp("channel_invite", err)
	return err
}

// ChannelLeave removes the acting user from members and, if present, owners.
func (e *Engine) ChannelLeave(uid, chID int) error {
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if !validChannel(snap, chID) {
			return invalidf("channel %d", chID)
		}
		ch := &snap.Channels[chID]
		if !contains(ch.Members, uid) {
			return deniedf("user %d not in channel %d", uid, chID)
		}
		ch.Members = removeID(ch.Members, uid)
		ch.Owners = removeID(ch.Owners, uid)
		statChannelLeave(snap, uid, e.now())
		return nil
	})
	countOp("channel_leave", err)
	return err
}

// ChannelAddOwner promotes a member to owner. Channel owners and global
// owners may promote.
func (e *Engine) ChannelAddOwner(uid, chID, target int) error {
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if !validChannel(snap, chID) {
			return invalidf("channel %d", chID)
		}
		if !validUser(snap, target) {
			return invalidf("user %d", target)
		}
		ch := &snap.Channels[chID]
		if !contains(ch.Owners, uid) && !isGlobalOwner(snap, uid) {
			return deniedf("user %d cannot manage owners of channel %d", uid, chID)
		}
		if !contains(ch.Members, target) {
			return invalidf("user %d not in channel %d", target, chID)
		}
		if contains(ch.Owners, target) {
			return invalidf("user %d already owns channel %d", target, chID)
		}
		ch.Owners = append(ch.Owners, target)
		return nil
	})
	countOp("channel_addowner", err)
	return err
}

// ChannelRemoveOwner demotes an owner. The last owner cannot be demoted.
func (e *Engine) ChannelRemoveOwner(uid, chID, target int) error {
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if !validChannel(snap, chID) {
			return invalidf("channel %d", chID)
		}
		if !validUser(snap, target) {
			return invalidf("user %d", target)
		}
		ch := &snap.Channels[chID]
		if !contains(ch.Owners, uid) && !isGlobalOwner(snap, uid) {
			return deniedf("user %d cannot manage owners of channel %d", uid, chID)
		}
		if !contains(ch.Owners, target) {
			return invalidf("user %d does not own channel %d", target, chID)
		}
		if len(ch.Owners) == 1 {
			return invalidf("channel %d has a single owner", chID)
		}
		ch.Owners = removeID(ch.Owners, target)
		return nil
	})
	countOp("channel_removeowner", err)
	return err
}

// ChannelMessages returns one pagination window; the caller must be a
// member.
func (e *Engine) ChannelMessages(uid, chID, start int) (MessagePage, error) {
	var out MessagePage
	err := e.st.View(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if !validChannel(snap, chID) {
			return invalidf("channel %d", chID)
		}
		ch := &snap.Channels[chID]
		if !contains(ch.Members, uid) {
			return deniedf("user %d not in channel %d", uid, chID)
		}
		page, perr := paginate(snap, uid, ch.Messages, start)
		if perr != nil {
			return perr
		}
		out = page
		return nil
	})
	countOp("channel_messages", err)
	return out, err
}
