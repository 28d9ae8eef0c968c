package engine

import (
	"unicode/utf8"

	"workstream/pkg/models"
)

// Pure predicates over a snapshot. Ids are positional; tombstoned slots fail
// validity but stay addressable for profile reads.

// runeLen counts characters, not bytes. Every length bound in the engine is
// a character bound.
func runeLen(s string) int { return utf8.RuneCountInString(s) }

func validUser(snap *models.Snapshot, id int) bool {
	return id >= 0 && id < len(snap.Users) && !snap.Users[id].Removed()
}

func validChannel(snap *models.Snapshot, id int) bool {
	return id >= 0 && id < len(snap.Channels)
}

func validDM(snap *models.Snapshot, id int) bool {
	return id >= 0 && id < len(snap.DMs) && !snap.DMs[id].Removed
}

func isGlobalOwner(snap *models.Snapshot, uid int) bool {
	if uid < 0 || uid >= len(snap.Users) {
		return false
	}
	p := snap.Users[uid].Permission
	return p != nil && *p == models.PermGlobalOwner
}

func contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []int, id int) []int {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// containerMembers returns the membership list the locator's container uses
// for react and tag checks.
func containerMembers(snap *models.Snapshot, loc location) []int {
	if loc.kind == kindChannel {
		return snap.Channels[loc.container].Members
	}
	return snap.DMs[loc.container].Members
}

func containerName(snap *models.Snapshot, loc location) string {
	if loc.kind == kindChannel {
		return snap.Channels[loc.container].Name
	}
	return snap.DMs[loc.container].Name
}

// ownerAuthority reports whether uid holds owner power over the container:
// channel explicit owner, a global owner who is a channel member, or the DM
// creator.
func ownerAuthority(snap *models.Snapshot, loc location, uid int) bool {
	if loc.kind == kindChannel {
		ch := &snap.Channels[loc.container]
		if contains(ch.Owners, uid) {
			return true
		}
		return isGlobalOwner(snap, uid) && contains(ch.Members, uid)
	}
	return snap.DMs[loc.container].OwnerID == uid
}
