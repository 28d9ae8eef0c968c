package engine

import "workstream/pkg/models"

// Every membership or message event appends one cumulative point to the
// affected user series and, for existence changes, to the workspace series.
// Rates are point-in-time values recomputed after each event.

func bump(series *[]models.StatPoint, delta int, ts int64) {
	last := 0
	if n := len(*series); n > 0 {
		last = (*series)[n-1].Count
	}
	*series = append(*series, models.StatPoint{Count: last + delta, Timestamp: ts})
}

func seriesLast(series []models.StatPoint) int {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1].Count
}

func recomputeInvolvement(snap *models.Snapshot, uid int) {
	st := &snap.Users[uid].Stats
	num := seriesLast(st.ChannelsJoined) + seriesLast(st.DMsJoined) + seriesLast(st.MessagesSent)
	den := seriesLast(snap.Workspace.ChannelsExist) + seriesLast(snap.Workspace.DMsExist) + seriesLast(snap.Workspace.MessagesExist)
	if den == 0 {
		st.InvolvementRate = 0
		return
	}
	rate := float64(num) / float64(den)
	if rate > 1 {
		rate = 1
	}
	st.InvolvementRate = rate
}

func recomputeUtilization(snap *models.Snapshot) {
	registered, involved := 0, 0
	for uid := range snap.Users {
		if snap.Users[uid].Removed() {
			continue
		}
		registered++
		if userInvolved(snap, uid) {
			involved++
		}
	}
	if registered == 0 {
		snap.Workspace.UtilizationRate = 0
		return
	}
	snap.Workspace.UtilizationRate = float64(involved) / float64(registered)
}

func userInvolved(snap *models.Snapshot, uid int) bool {
	for ci := range snap.Channels {
		if contains(snap.Channels[ci].Members, uid) {
			return true
		}
	}
	for di := range snap.DMs {
		if !snap.DMs[di].Removed && contains(snap.DMs[di].Members, uid) {
			return true
		}
	}
	return false
}

// Event helpers. Each records the user-side point, recomputes involvement,
// and leaves workspace-series changes to the caller when they apply.

func statChannelJoin(snap *models.Snapshot, uid int, ts int64) {
	bump(&snap.Users[uid].Stats.ChannelsJoined, 1, ts)
	recomputeInvolvement(snap, uid)
	recomputeUtilization(snap)
}

func statChannelLeave(snap *models.Snapshot, uid int, ts int64) {
	bump(&snap.Users[uid].Stats.ChannelsJoined, -1, ts)
	recomputeInvolvement(snap, uid)
	recomputeUtilization(snap)
}

func statDMJoin(snap *models.Snapshot, uid int, ts int64) {
	bump(&snap.Users[uid].Stats.DMsJoined, 1, ts)
	recomputeInvolvement(snap, uid)
	recomputeUtilization(snap)
}

func statDMLeave(snap *models.Snapshot, uid int, ts int64) {
	bump(&snap.Users[uid].Stats.DMsJoined, -1, ts)
	recomputeInvolvement(snap, uid)
	recomputeUtilization(snap)
}

func statMessageSent(snap *models.Snapshot, uid int, ts int64) {
	bump(&snap.Users[uid].Stats.MessagesSent, 1, ts)
	bump(&snap.Workspace.MessagesExist, 1, ts)
	recomputeInvolvement(snap, uid)
	recomputeUtilization(snap)
}

func statMessageRemoved(snap *models.Snapshot, ts int64) {
	bump(&snap.Workspace.MessagesExist, -1, ts)
	recomputeUtilization(snap)
}

func statChannelCreated(snap *models.Snapshot, ts int64) {
	bump(&snap.Workspace.ChannelsExist, 1, ts)
	recomputeUtilization(snap)
}

func statDMCreated(snap *models.Snapshot, ts int64) {
	bump(&snap.Workspace.DMsExist, 1, ts)
	recomputeUtilization(snap)
}

func statDMRemoved(snap *models.Snapshot, ts int64) {
	bump(&snap.Workspace.DMsExist, -1, ts)
	recomputeUtilization(snap)
}

// UserStatsResult is the per-user stats readout.
type UserStatsResult struct {
	ChannelsJoined  []models.StatPoint `json:"channels_joined"`
	DMsJoined       []models.StatPoint `json:"dms_joined"`
	MessagesSent    []models.StatPoint `json:"messages_sent"`
	InvolvementRate float64            `json:"involvement_rate"`
}

// WorkspaceStatsResult is the workspace-wide stats readout.
type WorkspaceStatsResult struct {
	ChannelsExist   []models.StatPoint `json:"channels_exist"`
	DMsExist        []models.StatPoint `json:"dms_exist"`
	MessagesExist   []models.StatPoint `json:"messages_exist"`
	UtilizationRate float64            `json:"utilization_rate"`
}

// UserStats returns the acting user's involvement series.
func (e *Engine) UserStats(uid int) (UserStatsResult, error) {
	var out UserStatsResult
	err := e.st.View(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		st := snap.Users[uid].Stats
		out = UserStatsResult{
			ChannelsJoined:  append([]models.StatPoint(nil), st.ChannelsJoined...),
			DMsJoined:       append([]models.StatPoint(nil), st.DMsJoined...),
			MessagesSent:    append([]models.StatPoint(nil), st.MessagesSent...),
			InvolvementRate: st.InvolvementRate,
		}
		return nil
	})
	countOp("user_stats", err)
	return out, err
}

// WorkspaceStats returns the workspace existence series.
func (e *Engine) WorkspaceStats() (WorkspaceStatsResult, error) {
	var out WorkspaceStatsResult
	err := e.st.View(func(snap *models.Snapshot) error {
		ws := snap.Workspace
		out = WorkspaceStatsResult{
			ChannelsExist:   append([]models.StatPoint(nil), ws.ChannelsExist...),
			DMsExist:        append([]models.StatPoint(nil), ws.DMsExist...),
			MessagesExist:   append([]models.StatPoint(nil), ws.MessagesExist...),
			UtilizationRate: ws.UtilizationRate,
		}
		return nil
	})
	countOp("workspace_stats", err)
	return out, err
}
