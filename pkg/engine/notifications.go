package engine

import (
	"fmt"
	"strings"

	"workstream/pkg/models"
)

// Notification templates are literal format contracts. The tag body preview
// is exactly the first 20 characters of the message.

const tagPreviewLen = 20

func notifLoc(loc location) (chID, dmID int) {
	if loc.kind == kindChannel {
		return loc.container, -1
	}
	return -1, loc.container
}

func appendNotification(snap *models.Snapshot, uid int, n models.Notification) {
	snap.Users[uid].Notifications = append(snap.Users[uid].Notifications, n)
}

// notifyTag fires at most one tag notification: the first container member,
// in member-iteration order, whose handle appears in the text.
func notifyTag(snap *models.Snapshot, sender int, loc location, text string) {
	for _, uid := range containerMembers(snap, loc) {
		if !validUser(snap, uid) {
			continue
		}
		handle := snap.Users[uid].Handle
		if handle == "" || !strings.Contains(text, handle) {
			continue
		}
		preview := text
		if r := []rune(preview); len(r) > tagPreviewLen {
			preview = string(r[:tagPreviewLen])
		}
		chID, dmID := notifLoc(loc)
		appendNotification(snap, uid, models.Notification{
			ChannelID: chID,
			DMID:      dmID,
			Message:   fmt.Sprintf("%s tagged you in %s: %s", snap.Users[sender].Handle, containerName(snap, loc), preview),
		})
		return
	}
}

func notifyReact(snap *models.Snapshot, reactor int, loc location, author int) {
	if !validUser(snap, author) || !contains(containerMembers(snap, loc), author) {
		return
	}
	chID, dmID := notifLoc(loc)
	appendNotification(snap, author, models.Notification{
		ChannelID: chID,
		DMID:      dmID,
		Message:   fmt.Sprintf("%s reacted to your message in %s", snap.Users[reactor].Handle, containerName(snap, loc)),
	})
}

func notifyInvite(snap *models.Snapshot, inviter int, loc location, invitee int) {
	chID, dmID := notifLoc(loc)
	appendNotification(snap, invitee, models.Notification{
		ChannelID: chID,
		DMID:      dmID,
		Message:   fmt.Sprintf("%s added you to %s", snap.Users[inviter].Handle, containerName(snap, loc)),
	})
}

// Notifications returns the acting user's 20 most recent notifications,
// most recent first. Reading does not mutate the inbox.
func (e *Engine) Notifications(uid int) ([]models.Notification, error) {
	var out []models.Notification
	err := e.st.View(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		inbox := snap.Users[uid].Notifications
		n := len(inbox)
		limit := 20
		if n < limit {
			limit = n
		}
		out = make([]models.Notification, 0, limit)
		for i := n - 1; i >= n-limit; i-- {
			out = append(out, inbox[i])
		}
		return nil
	})
	countOp("notifications_get", err)
	return out, err
}
