package engine

import (
	"strings"

	"workstream/pkg/models"
)

// Search returns every message containing the query substring from
// containers the acting user belongs to, channels first, container order
// then message order.
func (e *Engine) Search(uid int, query string) ([]MessageView, error) {
	var out []MessageView
	err := e.st.View(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if n := runeLen(query); n < 1 || n > searchMaxLen {
			return invalidf("query length %d", n)
		}
		out = []MessageView{}
		for ci := range snap.Channels {
			if !contains(snap.Channels[ci].Members, uid) {
				continue
			}
			for mi := range snap.Channels[ci].Messages {
				if strings.Contains(snap.Channels[ci].Messages[mi].Text, query) {
					out = append(out, viewMessage(&snap.Channels[ci].Messages[mi], uid))
				}
			}
		}
		for di := range snap.DMs {
			if snap.DMs[di].Removed || !contains(snap.DMs[di].Members, uid) {
				continue
			}
			for mi := range snap.DMs[di].Messages {
				if strings.Contains(snap.DMs[di].Messages[mi].Text, query) {
					out = append(out, viewMessage(&snap.DMs[di].Messages[mi], uid))
				}
			}
		}
		return nil
	})
	countOp("search", err)
	return out, err
}
