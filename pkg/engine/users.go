package engine

import (
	"unicode"

	"workstream/pkg/models"
)

// Profile is the public view of a user. Removed users keep a readable
// profile under the tombstone name.
type Profile struct {
	UserID    int    `json:"u_id"`
	Email     string `json:"email"`
	NameFirst string `json:"name_first"`
	NameLast  string `json:"name_last"`
	Handle    string `json:"handle_str"`
	ImageURL  string `json:"profile_img_url,omitempty"`
}

func profileOf(snap *models.Snapshot, uid int) Profile {
	u := &snap.Users[uid]
	return Profile{
		UserID:    uid,
		Email:     u.Email,
		NameFirst: u.FirstName,
		NameLast:  u.LastName,
		Handle:    u.Handle,
		ImageURL:  u.ImageURL,
	}
}

// UsersAll lists every non-removed user.
func (e *Engine) UsersAll(uid int) ([]Profile, error) {
	var out []Profile
	err := e.st.View(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		out = []Profile{}
		for id := range snap.Users {
			if snap.Users[id].Removed() {
				continue
			}
			out = append(out, profileOf(snap, id))
		}
		return nil
	})
	countOp("users_all", err)
	return out, err
}

// UserProfile returns one profile. Removed users are readable here, unlike
// everywhere else.
func (e *Engine) UserProfile(uid, target int) (Profile, error) {
	var out Profile
	err := e.st.View(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if target < 0 || target >= len(snap.Users) {
			return invalidf("user %d", target)
		}
		out = profileOf(snap, target)
		return nil
	})
	countOp("user_profile", err)
	return out, err
}

// SetName updates the acting user's first and last name.
func (e *Engine) SetName(uid int, nameFirst, nameLast string) error {
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if n := runeLen(nameFirst); n < 1 || n > 50 {
			return invalidf("first name length %d", n)
		}
		if n := runeLen(nameLast); n < 1 || n > 50 {
			return invalidf("last name length %d", n)
		}
		snap.Users[uid].FirstName = nameFirst
		snap.Users[uid].LastName = nameLast
		return nil
	})
	countOp("user_setname", err)
	return err
}

// SetEmail updates the acting user's email; the new address must be valid
// and unused among live users.
func (e *Engine) SetEmail(uid int, email string) error {
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if !emailRe.MatchString(email) {
			return invalidf("email %q", email)
		}
		for id := range snap.Users {
			if id != uid && !snap.Users[id].Removed() && snap.Users[id].Email == email {
				return invalidf("email %q already registered", email)
			}
		}
		snap.Users[uid].Email = email
		return nil
	})
	countOp("user_setemail", err)
	return err
}

// SetHandle updates the acting user's handle: 3 to 20 alphanumeric
// characters, unique among live users.
func (e *Engine) SetHandle(uid int, handle string) error {
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) {
			return invalidf("user %d", uid)
		}
		if n := runeLen(handle); n < 3 || n > 20 {
			return invalidf("handle length %d", n)
		}
		for _, r := range handle {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return invalidf("handle %q not alphanumeric", handle)
			}
		}
		for id := range snap.Users {
			if id != uid && !snap.Users[id].Removed() && snap.Users[id].Handle == handle {
				return invalidf("handle %q taken", handle)
			}
		}
		snap.Users[uid].Handle = handle
		return nil
	})
	countOp("user_sethandle", err)
	return err
}
