package engine

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"workstream/pkg/logger"
	"workstream/pkg/models"
)

// StandupStartResult is returned by StandupStart.
type StandupStartResult struct {
	TimeFinish int64 `json:"time_finish"`
}

// StandupActiveResult is returned by StandupActive. TimeFinish is nil while
// no standup runs.
type StandupActiveResult struct {
	Active     bool   `json:"is_active"`
	TimeFinish *int64 `json:"time_finish"`
}

// StandupStart opens a standup period on a channel. One standup per channel
// at a time; the flush is scheduled for the finish time.
func (e *Engine) StandupStart(uid, chID int, length int64) (StandupStartResult, error) {
	var out StandupStartResult
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if !validChannel(snap, chID) {
			return invalidf("channel %d", chID)
		}
		if length < 0 {
			return invalidf("standup length %d", length)
		}
		ch := &snap.Channels[chID]
		if !contains(ch.Members, uid) {
			return deniedf("user %d not in channel %d", uid, chID)
		}
		if ch.Standup.FinishAt != nil {
			return invalidf("standup already active in channel %d", chID)
		}
		finish := e.now() + length
		ch.Standup = models.Standup{FinishAt: &finish, StarterID: uid, Lines: []string{}}
		out = StandupStartResult{TimeFinish: finish}
		logger.Log.Info("standup_started", zap.Int("channel_id", chID), zap.Int64("finish", finish))
		return nil
	})
	if err == nil {
		e.sched.After(time.Duration(length)*time.Second, func() { e.standupFlush(chID) })
	}
	countOp("standup_start", err)
	return out, err
}

// StandupActive reports whether a standup is running and when it finishes.
func (e *Engine) StandupActive(uid, chID int) (StandupActiveResult, error) {
	var out StandupActiveResult
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
		if ch.Standup.FinishAt != nil {
			finish := *ch.Standup.FinishAt
			out = StandupActiveResult{Active: true, TimeFinish: &finish}
		}
		return nil
	})
	countOp("standup_active", err)
	return out, err
}

// StandupSend buffers one line into the active standup.
func (e *Engine) StandupSend(uid, chID int, message string) error {
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if !validChannel(snap, chID) {
			return invalidf("channel %d", chID)
		}
		if n := runeLen(message); n < 1 || n > sendMaxLen {
			return invalidf("standup message length %d", n)
		}
		ch := &snap.Channels[chID]
		if !contains(ch.Members, uid) {
			return deniedf("user %d not in channel %d", uid, chID)
		}
		if ch.Standup.FinishAt == nil {
			return invalidf("no active standup in channel %d", chID)
		}
		ch.Standup.Lines = append(ch.Standup.Lines, fmt.Sprintf("%s: %s", snap.Users[uid].Handle, message))
		return nil
	})
	countOp("standup_send", err)
	return err
}

// standupFlush posts the buffered lines as one newline-joined message
// authored by the starter, then clears the standup state. An empty buffer
// appends nothing. The packaged message does not run tag detection.
func (e *Engine) standupFlush(chID int) {
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validChannel(snap, chID) {
			return nil
		}
		ch := &snap.Channels[chID]
		if ch.Standup.FinishAt == nil {
			return nil
		}
		lines := ch.Standup.Lines
		starter := ch.Standup.StarterID
		finish := *ch.Standup.FinishAt
		ch.Standup = models.Standup{}
		if len(lines) == 0 {
			return nil
		}
		snap.MessageCounter++
		e.deliver(snap, location{kind: kindChannel, container: chID}, models.Message{
			ID:        snap.MessageCounter,
			AuthorID:  starter,
			Text:      strings.Join(lines, "\n"),
			CreatedAt: finish,
			Reacts:    []models.Reaction{},
		}, false)
		return nil
	})
	if err != nil {
		logger.Log.Error("standup_flush_failed", zap.Int("channel_id", chID), zap.Error(err))
	}
}
