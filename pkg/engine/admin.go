package engine

import (
	"go.uber.org/zap"

	"workstream/pkg/logger"
	"workstream/pkg/models"
)

const removedUserText = "Removed user"

// AdminUserRemove tombstones a user: their slot keeps a readable profile
// under the tombstone name, their messages are rewritten in place, their
// memberships and sessions are purged, and their email and handle become
// reusable.
func (e *Engine) AdminUserRemove(uid, target int) error {
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if !isGlobalOwner(snap, uid) {
			return deniedf("user %d is not a global owner", uid)
		}
		if !validUser(snap, target) {
			return invalidf("user %d", target)
		}
		if isGlobalOwner(snap, target) && countGlobalOwners(snap) == 1 {
			return invalidf("user %d is the only global owner", target)
		}

		for ci := range snap.Channels {
			ch := &snap.Channels[ci]
			if contains(ch.Members, target) {
				ch.Members = removeID(ch.Members, target)
				ch.Owners = removeID(ch.Owners, target)
			}
			for mi := range ch.Messages {
				if ch.Messages[mi].AuthorID == target {
					ch.Messages[mi].Text = removedUserText
				}
			}
		}
		for di := range snap.DMs {
			dm := &snap.DMs[di]
			if dm.Removed {
				continue
			}
			dm.Members = removeID(dm.Members, target)
			for mi := range dm.Messages {
				if dm.Messages[mi].AuthorID == target {
					dm.Messages[mi].Text = removedUserText
				}
			}
		}

		u := &snap.Users[target]
		u.Permission = nil
		u.FirstName = "Removed"
		u.LastName = "user"
		u.Email = ""
		u.Handle = ""
		u.Sessions = []int64{}
		u.ResetCode = ""
		recomputeUtilization(snap)
		logger.Log.Info("user_removed", zap.Int("user_id", target))
		return nil
	})
	countOp("admin_user_remove", err)
	return err
}

// AdminPermissionChange sets a user's global permission. Only global owners
// may change permissions and the last global owner cannot be demoted.
func (e *Engine) AdminPermissionChange(uid, target, permission int) error {
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if !isGlobalOwner(snap, uid) {
			return deniedf("user %d is not a global owner", uid)
		}
		if !validUser(snap, target) {
			return invalidf("user %d", target)
		}
		if permission != models.PermGlobalOwner && permission != models.PermMember {
			return invalidf("permission %d", permission)
		}
		if permission == models.PermMember && isGlobalOwner(snap, target) && countGlobalOwners(snap) == 1 {
			return invalidf("user %d is the only global owner", target)
		}
		p := permission
		snap.Users[target].Permission = &p
		logger.Log.Info("permission_changed", zap.Int("user_id", target), zap.Int("permission", permission))
		return nil
	})
	countOp("admin_permission_change", err)
	return err
}

// Clear resets the workspace to an empty snapshot.
func (e *Engine) Clear() error {
	err := e.st.Reset(models.NewSnapshot())
	if err == nil {
		_ = e.st.View(func(snap *models.Snapshot) error {
			e.loc.rebuild(snap)
			return nil
		})
		logger.Log.Info("workspace_cleared")
	}
	countOp("clear", err)
	return err
}

func countGlobalOwners(snap *models.Snapshot) int {
	n := 0
	for i := range snap.Users {
		if isGlobalOwner(snap, i) {
			n++
		}
	}
	return n
}
