package engine

import (
	"time"

	"go.uber.org/zap"

	"workstream/pkg/logger"
	"workstream/pkg/models"
)

const (
	sendMaxLen = 1000
	// Edits are capped far below sends. The bound is deliberate and kept.
	editMaxLen    = 100
	pageWindow    = 50
	searchMaxLen  = 1000
	shareExtraMax = 1000
)

// ReactView groups a message's reactions by react id for the read path.
type ReactView struct {
	ReactID           int   `json:"react_id"`
	UserIDs           []int `json:"u_ids"`
	IsThisUserReacted bool  `json:"is_this_user_reacted"`
}

// MessageView is the read model of one message.
type MessageView struct {
	MessageID   int         `json:"message_id"`
	UserID      int         `json:"u_id"`
	Message     string      `json:"message"`
	TimeCreated int64       `json:"time_created"`
	Reacts      []ReactView `json:"reacts"`
	IsPinned    bool        `json:"is_pinned"`
}

// MessagePage is one pagination window, index 0 most recent. End is the next
// window's start, or -1 when the page reaches the oldest message.
type MessagePage struct {
	Messages []MessageView `json:"messages"`
	Start    int           `json:"start"`
	End      int           `json:"end"`
}

// MessageIDResult is returned by every operation that allocates an id.
type MessageIDResult struct {
	MessageID int `json:"message_id"`
}

func viewMessage(msg *models.Message, viewer int) MessageView {
	v := MessageView{
		MessageID:   msg.ID,
		UserID:      msg.AuthorID,
		Message:     msg.Text,
		TimeCreated: msg.CreatedAt,
		Reacts:      []ReactView{},
		IsPinned:    msg.Pinned,
	}
	if len(msg.Reacts) > 0 {
		rv := ReactView{ReactID: models.ReactThumbsUp, UserIDs: []int{}}
		for _, r := range msg.Reacts {
			rv.UserIDs = append(rv.UserIDs, r.UserID)
			if r.UserID == viewer {
				rv.IsThisUserReacted = true
			}
		}
		v.Reacts = append(v.Reacts, rv)
	}
	return v
}

func paginate(snap *models.Snapshot, viewer int, msgs []models.Message, start int) (MessagePage, error) {
	total := len(msgs)
	if start < 0 || start > total {
		return MessagePage{}, invalidf("start %d out of range (%d messages)", start, total)
	}
	end := start + pageWindow
	if end >= total {
		end = -1
	}
	page := MessagePage{Messages: []MessageView{}, Start: start, End: end}
	for i := 0; i < pageWindow; i++ {
		pos := total - 1 - start - i
		if pos < 0 {
			break
		}
		page.Messages = append(page.Messages, viewMessage(&msgs[pos], viewer))
	}
	return page, nil
}

// deliver appends a message to its container, indexes it, records stats and
// optionally runs tag detection. It is the single append path shared by
// send, senddm, share, scheduled fires and the standup flush.
func (e *Engine) deliver(snap *models.Snapshot, loc location, msg models.Message, withTags bool) {
	list := e.loc.messagesOf(snap, loc)
	*list = append(*list, msg)
	e.loc.add(msg.ID, loc)
	if validUser(snap, msg.AuthorID) {
		statMessageSent(snap, msg.AuthorID, msg.CreatedAt)
	} else {
		bump(&snap.Workspace.MessagesExist, 1, msg.CreatedAt)
		recomputeUtilization(snap)
	}
	if withTags {
		notifyTag(snap, msg.AuthorID, loc, msg.Text)
	}
}

// sendInto runs the full send path against an already-locked snapshot:
// validation, id allocation and delivery. Share reuses it so a forward stays
// inside one critical section.
func (e *Engine) sendInto(snap *models.Snapshot, uid int, loc location, text string) (int, error) {
	if !validUser(snap, uid) {
		return 0, invalidf("user %d", uid)
	}
	if loc.kind == kindChannel && !validChannel(snap, loc.container) {
		return 0, invalidf("channel %d", loc.container)
	}
	if loc.kind == kindDM && !validDM(snap, loc.container) {
		return 0, invalidf("dm %d", loc.container)
	}
	if !contains(containerMembers(snap, loc), uid) {
		return 0, deniedf("user %d not a member", uid)
	}
	if n := runeLen(text); n < 1 || n > sendMaxLen {
		return 0, invalidf("message length %d", n)
	}
	snap.MessageCounter++
	msgID := snap.MessageCounter
	e.deliver(snap, loc, models.Message{
		ID:        msgID,
		AuthorID:  uid,
		Text:      text,
		CreatedAt: e.now(),
		Reacts:    []models.Reaction{},
	}, true)
	return msgID, nil
}

func (e *Engine) sendTo(uid int, loc location, text string) (int, error) {
	var msgID int
	err := e.st.Update(func(snap *models.Snapshot) error {
		id, err := e.sendInto(snap, uid, loc, text)
		if err != nil {
			return err
		}
		msgID = id
		return nil
	})
	return msgID, err
}

// Send posts a message to a channel the acting user belongs to.
func (e *Engine) Send(uid, chID int, text string) (int, error) {
	id, err := e.sendTo(uid, location{kind: kindChannel, container: chID}, text)
	countOp("message_send", err)
	return id, err
}

// SendDM posts a message to a DM the acting user belongs to.
func (e *Engine) SendDM(uid, dmID int, text string) (int, error) {
	id, err := e.sendTo(uid, location{kind: kindDM, container: dmID}, text)
	countOp("message_senddm", err)
	return id, err
}

// canAlter reports whether uid may edit or remove the message: the author,
// or a holder of owner authority over the container.
func canAlter(snap *models.Snapshot, loc location, uid, author int) bool {
	return uid == author || ownerAuthority(snap, loc, uid)
}

// Edit replaces a message body, or deletes the message when the body is
// empty. Bodies above the edit cap are rejected even though send accepts
// them.
func (e *Engine) Edit(uid, msgID int, text string) error {
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if n := runeLen(text); n > editMaxLen {
			return invalidf("edit length %d", n)
		}
		loc, pos, ok := e.loc.find(snap, msgID)
		if !ok {
			return invalidf("message %d", msgID)
		}
		list := e.loc.messagesOf(snap, loc)
		if !canAlter(snap, loc, uid, (*list)[pos].AuthorID) {
			return deniedf("user %d cannot edit message %d", uid, msgID)
		}
		if text == "" {
			*list = append((*list)[:pos], (*list)[pos+1:]...)
			e.loc.drop(msgID)
			return nil
		}
		(*list)[pos].Text = text
		notifyTag(snap, uid, loc, text)
		return nil
	})
	countOp("message_edit", err)
	return err
}

// Remove deletes a message outright.
func (e *Engine) Remove(uid, msgID int) error {
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		loc, pos, ok := e.loc.find(snap, msgID)
		if !ok {
			return invalidf("message %d", msgID)
		}
		list := e.loc.messagesOf(snap, loc)
		if !canAlter(snap, loc, uid, (*list)[pos].AuthorID) {
			return deniedf("user %d cannot remove message %d", uid, msgID)
		}
		*list = append((*list)[:pos], (*list)[pos+1:]...)
		e.loc.drop(msgID)
		statMessageRemoved(snap, e.now())
		return nil
	})
	countOp("message_remove", err)
	return err
}

func (e *Engine) setPinned(uid, msgID int, pinned bool) error {
	return e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		loc, pos, ok := e.loc.find(snap, msgID)
		if !ok {
			return invalidf("message %d", msgID)
		}
		if !contains(containerMembers(snap, loc), uid) {
			return deniedf("user %d not a member", uid)
		}
		if !ownerAuthority(snap, loc, uid) {
			return deniedf("user %d lacks owner authority", uid)
		}
		list := e.loc.messagesOf(snap, loc)
		if (*list)[pos].Pinned == pinned {
			return invalidf("message %d pin state unchanged", msgID)
		}
		(*list)[pos].Pinned = pinned
		return nil
	})
}

// Pin marks a message pinned. Authorship alone is not enough; owner
// authority over the container is required.
func (e *Engine) Pin(uid, msgID int) error {
	err := e.setPinned(uid, msgID, true)
	countOp("message_pin", err)
	return err
}

// Unpin clears a message's pinned flag under the same authority rule as Pin.
func (e *Engine) Unpin(uid, msgID int) error {
	err := e.setPinned(uid, msgID, false)
	countOp("message_unpin", err)
	return err
}

// React adds a reaction. Each user reacts at most once per message and only
// react id 1 exists.
func (e *Engine) React(uid, msgID, reactID int) error {
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if reactID != models.ReactThumbsUp {
			return invalidf("react id %d", reactID)
		}
		loc, pos, ok := e.loc.find(snap, msgID)
		if !ok {
			return invalidf("message %d", msgID)
		}
		if !contains(containerMembers(snap, loc), uid) {
			return deniedf("user %d not a member", uid)
		}
		list := e.loc.messagesOf(snap, loc)
		msg := &(*list)[pos]
		for _, r := range msg.Reacts {
			if r.UserID == uid {
				return invalidf("user %d already reacted to message %d", uid, msgID)
			}
		}
		msg.Reacts = append(msg.Reacts, models.Reaction{UserID: uid, ReactID: reactID})
		notifyReact(snap, uid, loc, msg.AuthorID)
		return nil
	})
	countOp("message_react", err)
	return err
}

// Unreact removes the acting user's reaction from a message.
func (e *Engine) Unreact(uid, msgID, reactID int) error {
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if reactID != models.ReactThumbsUp {
			return invalidf("react id %d", reactID)
		}
		loc, pos, ok := e.loc.find(snap, msgID)
		if !ok {
			return invalidf("message %d", msgID)
		}
		if !contains(containerMembers(snap, loc), uid) {
			return deniedf("user %d not a member", uid)
		}
		list := e.loc.messagesOf(snap, loc)
		msg := &(*list)[pos]
		for i, r := range msg.Reacts {
			if r.UserID == uid {
				msg.Reacts = append(msg.Reacts[:i], msg.Reacts[i+1:]...)
				return nil
			}
		}
		return invalidf("user %d has no reaction on message %d", uid, msgID)
	})
	countOp("message_unreact", err)
	return err
}

// Share forwards a message into another container the acting user belongs
// to. The shared body is the original text and the extra text joined by a
// single space, even when the extra text is empty.
func (e *Engine) Share(uid, ogMsgID int, extra string, chID, dmID int) (int, error) {
	var target location
	switch {
	case chID == -1 && dmID != -1:
		target = location{kind: kindDM, container: dmID}
	case dmID == -1 && chID != -1:
		target = location{kind: kindChannel, container: chID}
	default:
		err := invalidf("exactly one share target required")
		countOp("message_share", err)
		return 0, err
	}

	var msgID int
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if n := runeLen(extra); n > shareExtraMax {
			return invalidf("extra text length %d", n)
		}
		loc, pos, ok := e.loc.find(snap, ogMsgID)
		if !ok {
			return invalidf("message %d", ogMsgID)
		}
		if !contains(containerMembers(snap, loc), uid) {
			return deniedf("user %d not in source container", uid)
		}
		body := (*e.loc.messagesOf(snap, loc))[pos].Text + " " + extra
		// The forward inherits the send path's validation and side effects
		// against the target container, inside the same critical section.
		id, err := e.sendInto(snap, uid, target, body)
		if err != nil {
			return err
		}
		msgID = id
		return nil
	})
	countOp("message_share", err)
	return msgID, err
}

func (e *Engine) sendLaterTo(uid int, loc location, text string, sendAt int64) (int, error) {
	var msgID int
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if loc.kind == kindChannel && !validChannel(snap, loc.container) {
			return invalidf("channel %d", loc.container)
		}
		if loc.kind == kindDM && !validDM(snap, loc.container) {
			return invalidf("dm %d", loc.container)
		}
		if !contains(containerMembers(snap, loc), uid) {
			return deniedf("user %d not a member", uid)
		}
		if n := runeLen(text); n < 1 || n > sendMaxLen {
			return invalidf("message length %d", n)
		}
		if sendAt < e.now() {
			return invalidf("send time in the past")
		}
		// The id is allocated now so callers can reference it before
		// delivery; the locator learns it only when the fire lands.
		snap.MessageCounter++
		msgID = snap.MessageCounter
		return nil
	})
	if err != nil {
		return 0, err
	}

	delay := time.Duration(sendAt-e.now()) * time.Second
	e.sched.After(delay, func() {
		ferr := e.st.Update(func(snap *models.Snapshot) error {
			// Validated at schedule time. The container may have been
			// removed since; dropping the delivery is the only check.
			if loc.kind == kindChannel && !validChannel(snap, loc.container) {
				return nil
			}
			if loc.kind == kindDM && !validDM(snap, loc.container) {
				return nil
			}
			e.deliver(snap, loc, models.Message{
				ID:        msgID,
				AuthorID:  uid,
				Text:      text,
				CreatedAt: sendAt,
				Reacts:    []models.Reaction{},
			}, true)
			return nil
		})
		if ferr != nil {
			logger.Log.Error("scheduled_send_failed", zap.Int("message_id", msgID), zap.Error(ferr))
		}
	})
	return msgID, nil
}

// SendLater schedules a channel send. Membership and body are validated now;
// the message lands at sendAt even if the sender has since left.
func (e *Engine) SendLater(uid, chID int, text string, sendAt int64) (int, error) {
	id, err := e.sendLaterTo(uid, location{kind: kindChannel, container: chID}, text, sendAt)
	countOp("message_sendlater", err)
	return id, err
}

// SendLaterDM schedules a DM send under the same contract as SendLater.
func (e *Engine) SendLaterDM(uid, dmID int, text string, sendAt int64) (int, error) {
	id, err := e.sendLaterTo(uid, location{kind: kindDM, container: dmID}, text, sendAt)
	countOp("message_sendlaterdm", err)
	return id, err
}
