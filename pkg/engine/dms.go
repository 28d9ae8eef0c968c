package engine

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"workstream/pkg/logger"
	"workstream/pkg/models"
)

// DMSummary is one entry in a DM listing.
type DMSummary struct {
	DMID int    `json:"dm_id"`
	Name string `json:"name"`
}

// DMDetails is the membership view of one DM.
type DMDetails struct {
	Name    string    `json:"name"`
	Members []Profile `json:"members"`
}

// DMCreateResult is returned by DMCreate.
type DMCreateResult struct {
	DMID int    `json:"dm_id"`
	Name string `json:"dm_name"`
}

// DMCreate opens a DM between the creator and the invited users. The name is
// the sorted member handles joined with ", "; every invitee is notified.
func (e *Engine) DMCreate(uid int, invitees []int) (DMCreateResult, error) {
	var out DMCreateResult
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		seen := map[int]bool{uid: true}
		members := []int{uid}
		for _, id := range invitees {
			if !validUser(snap, id) {
				return invalidf("user %d", id)
			}
			if seen[id] {
				return invalidf("duplicate member %d", id)
			}
			seen[id] = true
			members = append(members, id)
		}

		handles := make([]string, 0, len(members))
		for _, id := range members {
			handles = append(handles, snap.Users[id].Handle)
		}
		sort.Strings(handles)
		name := strings.Join(handles, ", ")

		dmID := len(snap.DMs)
		snap.DMs = append(snap.DMs, models.DirectMessage{
			Name:     name,
			Members:  members,
			OwnerID:  uid,
			Messages: []models.Message{},
		})

		ts := e.now()
		statDMCreated(snap, ts)
		for _, id := range members {
			statDMJoin(snap, id, ts)
		}
		loc := location{kind: kindDM, container: dmID}
		for _, id := range invitees {
			notifyInvite(snap, uid, loc, id)
		}
		out = DMCreateResult{DMID: dmID, Name: name}
		logger.Log.Info("dm_created", zap.Int("dm_id", dmID), zap.Int("members", len(members)))
		return nil
	})
	countOp("dm_create", err)
	return out, err
}

// DMList lists DMs the acting user belongs to.
func (e *Engine) DMList(uid int) ([]DMSummary, error) {
	var out []DMSummary
	err := e.st.View(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		out = []DMSummary{}
		for di := range snap.DMs {
			if snap.DMs[di].Removed {
				continue
			}
			if contains(snap.DMs[di].Members, uid) {
				out = append(out, DMSummary{DMID: di, Name: snap.DMs[di].Name})
			}
		}
		return nil
	})
	countOp("dm_list", err)
	return out, err
}

// DMDetails returns the DM's name and members; the caller must be a member.
func (e *Engine) DMDetails(uid, dmID int) (DMDetails, error) {
	var out DMDetails
	err := e.st.View(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if !validDM(snap, dmID) {
			return invalidf("dm %d", dmID)
		}
		dm := &snap.DMs[dmID]
		if !contains(dm.Members, uid) {
			return deniedf("user %d not in dm %d", uid, dmID)
		}
		out = DMDetails{Name: dm.Name}
		for _, id := range dm.Members {
			out.Members = append(out.Members, profileOf(snap, id))
		}
		return nil
	})
	countOp("dm_details", err)
	return out, err
}

// DMLeave removes the acting user from a DM. A DM may be left down to zero
// members and still exists.
func (e *Engine) DMLeave(uid, dmID int) error {
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if !validDM(snap, dmID) {
			return invalidf("dm %d", dmID)
		}
		dm := &snap.DMs[dmID]
		if !contains(dm.Members, uid) {
			return deniedf("user %d not in dm %d", uid, dmID)
		}
		dm.Members = removeID(dm.Members, uid)
		statDMLeave(snap, uid, e.now())
		return nil
	})
	countOp("dm_leave", err)
	return err
}

// DMRemove tombstones a DM. Only the original creator may remove it; the
// slot stays so later DM ids keep their positions.
func (e *Engine) DMRemove(uid, dmID int) error {
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if !validDM(snap, dmID) {
			return invalidf("dm %d", dmID)
		}
		dm := &snap.DMs[dmID]
		if dm.OwnerID != uid {
			return deniedf("user %d did not create dm %d", uid, dmID)
		}
		ts := e.now()
		for _, id := range dm.Members {
			if validUser(snap, id) {
				statDMLeave(snap, id, ts)
			}
		}
		for _, msg := range dm.Messages {
			e.loc.drop(msg.ID)
			bump(&snap.Workspace.MessagesExist, -1, ts)
		}
		dm.Members = []int{}
		dm.Messages = []models.Message{}
		dm.Removed = true
		statDMRemoved(snap, ts)
		logger.Log.Info("dm_removed", zap.Int("dm_id", dmID))
		return nil
	})
	countOp("dm_remove", err)
	return err
}

// DMMessages returns one pagination window; the caller must be a member.
func (e *Engine) DMMessages(uid, dmID, start int) (MessagePage, error) {
	var out MessagePage
	err := e.st.View(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if !validDM(snap, dmID) {
			return invalidf("dm %d", dmID)
		}
		dm := &snap.DMs[dmID]
		if !contains(dm.Members, uid) {
			return deniedf("user %d not in dm %d", uid, dmID)
		}
		page, perr := paginate(snap, uid, dm.Messages, start)
		if perr != nil {
			return perr
		}
		out = page
		return nil
	})
	countOp("dm_messages", err)
	return out, err
}
