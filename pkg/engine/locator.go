package engine

import "workstream/pkg/models"

type containerKind int

const (
	kindChannel containerKind = iota
	kindDM
)

// location names the container holding a message. The position inside the
// container's list is not cached because splices shift it; find scans the
// one container instead of the whole workspace.
type location struct {
	kind      containerKind
	container int
}

// locator is the id to container index. Scheduled message ids are absent
// until delivery, so locating an undelivered sendlater id reports not found.
type locator struct {
	m map[int]location
}

func newLocator() *locator {
	return &locator{m: map[int]location{}}
}

func (l *locator) rebuild(snap *models.Snapshot) {
	l.m = make(map[int]location, len(l.m))
	for ci := range snap.Channels {
		for _, msg := range snap.Channels[ci].Messages {
			l.m[msg.ID] = location{kind: kindChannel, container: ci}
		}
	}
	for di := range snap.DMs {
		if snap.DMs[di].Removed {
			continue
		}
		for _, msg := range snap.DMs[di].Messages {
			l.m[msg.ID] = location{kind: kindDM, container: di}
		}
	}
}

func (l *locator) add(id int, loc location) { l.m[id] = loc }

func (l *locator) drop(id int) { delete(l.m, id) }

// find resolves a message id to its container and current position.
func (l *locator) find(snap *models.Snapshot, id int) (location, int, bool) {
	loc, ok := l.m[id]
	if !ok {
		return location{}, 0, false
	}
	for pos, msg := range *l.messagesOf(snap, loc) {
		if msg.ID == id {
			return loc, pos, true
		}
	}
	// index said present but the container disagrees; treat as missing
	delete(l.m, id)
	return location{}, 0, false
}

func (l *locator) messagesOf(snap *models.Snapshot, loc location) *[]models.Message {
	if loc.kind == kindChannel {
		return &snap.Channels[loc.container].Messages
	}
	return &snap.DMs[loc.container].Messages
}
