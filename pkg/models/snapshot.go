package models

// Permission levels. The first registered user becomes the global owner.
const (
	PermGlobalOwner = 1
	PermMember      = 2
)

// ReactThumbsUp is the only react id the frontend understands today.
const ReactThumbsUp = 1

// Snapshot is the whole workspace state. It is owned by a single state.Store
// and persisted as one blob; partial updates do not exist.
type Snapshot struct {
	SessionCounter int64 `json:"session_counter"`
	// MessageCounter is global: channel and DM messages share one id space.
	MessageCounter int             `json:"message_counter"`
	Users          []User          `json:"users"`
	Channels       []Channel       `json:"channels"`
	DMs            []DirectMessage `json:"dms"`
	Workspace      WorkspaceStats  `json:"workspace_stats"`
}

// NewSnapshot returns an empty workspace with the stat series seeded at zero.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Users:    []User{},
		Channels: []Channel{},
		DMs:      []DirectMessage{},
		Workspace: WorkspaceStats{
			ChannelsExist: []StatPoint{{}},
			DMsExist:      []StatPoint{{}},
			MessagesExist: []StatPoint{{}},
		},
	}
}

// User identity is the index into Snapshot.Users. Slots are never reused;
// removed users are tombstoned in place (Permission == nil).
type User struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password"`
	FirstName    string `json:"name_first"`
	LastName     string `json:"name_last"`
	// Handle is unique among live users, alphanumeric, at most 20 chars.
	Handle        string         `json:"handle_str"`
	Permission    *int           `json:"permission_id"`
	Sessions      []int64        `json:"sessions"`
	ResetCode     string         `json:"reset_code"`
	Stats         UserStats      `json:"stats"`
	Notifications []Notification `json:"notifications"`
	ImageURL      string         `json:"image_url"`
}

// Removed reports whether the user slot is a tombstone.
func (u *User) Removed() bool { return u.Permission == nil }

// Channel identity is the index into Snapshot.Channels. Channels cannot be
// removed, so the index is stable forever.
type Channel struct {
	Name     string    `json:"name"`
	Public   bool      `json:"is_public"`
	Owners   []int     `json:"owner_members"`
	Members  []int     `json:"all_members"`
	Messages []Message `json:"messages"`
	Standup  Standup   `json:"standup"`
}

// Standup is the per-channel standup sub-state. FinishAt is nil while no
// standup is active. StarterID authors the flushed summary message.
type Standup struct {
	FinishAt  *int64   `json:"time_finish"`
	StarterID int      `json:"starter"`
	Lines     []string `json:"messages"`
}

// DirectMessage identity is the index into Snapshot.DMs. Removal tombstones
// the slot so DM ids stay stable like channel ids.
type DirectMessage struct {
	Name     string    `json:"name"`
	Members  []int     `json:"members"`
	OwnerID  int       `json:"owner"`
	Messages []Message `json:"messages"`
	Removed  bool      `json:"removed,omitempty"`
}

// Message ids are drawn from Snapshot.MessageCounter and are globally unique
// across channels and DMs. The position inside a container's message list
// shifts when earlier messages are spliced out; the id never changes.
type Message struct {
	ID        int        `json:"message_id"`
	AuthorID  int        `json:"u_id"`
	Text      string     `json:"message"`
	CreatedAt int64      `json:"time_created"`
	Reacts    []Reaction `json:"reacts"`
	Pinned    bool       `json:"is_pinned"`
}

// Reaction entries keep insertion order; at most one per user per message.
type Reaction struct {
	UserID  int `json:"u_id"`
	ReactID int `json:"react_id"`
}

// Notification is one inbox entry. Exactly one of ChannelID/DMID is >= 0,
// the other is -1.
type Notification struct {
	ChannelID int    `json:"channel_id"`
	DMID      int    `json:"dm_id"`
	Message   string `json:"notification_message"`
}

// StatPoint is one cumulative sample in a time series.
type StatPoint struct {
	Count     int   `json:"count"`
	Timestamp int64 `json:"time_stamp"`
}

// UserStats tracks a user's involvement series. Each series starts with a
// zero point at registration.
type UserStats struct {
	ChannelsJoined  []StatPoint `json:"channels_joined"`
	DMsJoined       []StatPoint `json:"dms_joined"`
	MessagesSent    []StatPoint `json:"messages_sent"`
	InvolvementRate float64     `json:"involvement_rate"`
}

// NewUserStats seeds every series with a zero point.
func NewUserStats() UserStats {
	return UserStats{
		ChannelsJoined: []StatPoint{{}},
		DMsJoined:      []StatPoint{{}},
		MessagesSent:   []StatPoint{{}},
	}
}

// WorkspaceStats tracks workspace-wide existence series plus the utilization
// rate snapshot.
type WorkspaceStats struct {
	ChannelsExist   []StatPoint `json:"channels_exist"`
	DMsExist        []StatPoint `json:"dms_exist"`
	MessagesExist   []StatPoint `json:"messages_exist"`
	UtilizationRate float64     `json:"utilization_rate"`
}
