package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"workstream/pkg/logger"
	"workstream/pkg/models"
)

var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// AuthResult is returned by Register and Login.
type AuthResult struct {
	UserID int    `json:"auth_user_id"`
	Token  string `json:"token"`
}

// Register creates a user, generates a unique handle and opens a session.
// The first registered user becomes the global owner.
func (e *Engine) Register(email, password, nameFirst, nameLast string) (AuthResult, error) {
	var out AuthResult
	err := e.st.Update(func(snap *models.Snapshot) error {
		if !emailRe.MatchString(email) {
			return invalidf("email %q", email)
		}
		if runeLen(password) < 6 {
			return invalidf("password too short")
		}
		if n := runeLen(nameFirst); n < 1 || n > 50 {
			return invalidf("first name length %d", n)
		}
		if n := runeLen(nameLast); n < 1 || n > 50 {
			return invalidf("last name length %d", n)
		}
		for i := range snap.Users {
			if !snap.Users[i].Removed() && snap.Users[i].Email == email {
				return invalidf("email %q already registered", email)
			}
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		perm := models.PermMember
		if len(snap.Users) == 0 {
			perm = models.PermGlobalOwner
		}
		u := models.User{
			Email:        email,
			PasswordHash: string(hash),
			FirstName:    nameFirst,
			LastName:     nameLast,
			Handle:       makeHandle(snap, nameFirst, nameLast),
			Permission:   &perm,
			Sessions:     []int64{},
			Stats:        models.NewUserStats(),
		}
		uid := len(snap.Users)
		snap.Users = append(snap.Users, u)
		recomputeUtilization(snap)

		session := e.openSession(snap, uid)
		out = AuthResult{UserID: uid, Token: e.signToken(uid, session)}
		logger.Log.Info("user_registered", zap.Int("user_id", uid), zap.String("handle", u.Handle))
		return nil
	})
	countOp("auth_register", err)
	return out, err
}

// makeHandle lowercases the alphanumeric characters of the concatenated
// names, trims to 20, then appends a numeric suffix until unique. The suffix
// may push the handle past 20 characters.
func makeHandle(snap *models.Snapshot, nameFirst, nameLast string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(nameFirst + nameLast) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if r := []rune(base); len(r) > 20 {
		base = string(r[:20])
	}
	handle := base
	for suffix := 0; handleTaken(snap, handle); suffix++ {
		handle = base + strconv.Itoa(suffix)
	}
	return handle
}

func handleTaken(snap *models.Snapshot, handle string) bool {
	for i := range snap.Users {
		if !snap.Users[i].Removed() && snap.Users[i].Handle == handle {
			return true
		}
	}
	return false
}

// Login opens a new session for an existing user.
func (e *Engine) Login(email, password string) (AuthResult, error) {
	var out AuthResult
	err := e.st.Update(func(snap *models.Snapshot) error {
		for uid := range snap.Users {
			if snap.Users[uid].Removed() || snap.Users[uid].Email != email {
				continue
			}
			if bcrypt.CompareHashAndPassword([]byte(snap.Users[uid].PasswordHash), []byte(password)) != nil {
				return invalidf("wrong password")
			}
			session := e.openSession(snap, uid)
			out = AuthResult{UserID: uid, Token: e.signToken(uid, session)}
			logger.Log.Info("user_login", zap.Int("user_id", uid))
			return nil
		}
		return invalidf("email %q not registered", email)
	})
	countOp("auth_login", err)
	return out, err
}

// Logout invalidates the session the token carries.
func (e *Engine) Logout(token string) error {
	uid, session, err := e.parseToken(token)
	if err != nil {
		return err
	}
	err = e.st.Update(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) || !containsSession(snap.Users[uid].Sessions, session) {
			return ErrBadToken
		}
		snap.Users[uid].Sessions = removeSession(snap.Users[uid].Sessions, session)
		return nil
	})
	countOp("auth_logout", err)
	return err
}

// PasswordResetRequest issues a single-use reset code, mails it, and
// invalidates every session of that user. Unknown emails succeed silently so
// the endpoint does not leak which addresses are registered.
func (e *Engine) PasswordResetRequest(email string) error {
	var to, code string
	err := e.st.Update(func(snap *models.Snapshot) error {
		for uid := range snap.Users {
			if snap.Users[uid].Removed() || snap.Users[uid].Email != email {
				continue
			}
			code = uuid.NewString()
			snap.Users[uid].ResetCode = code
			snap.Users[uid].Sessions = []int64{}
			to = email
			return nil
		}
		return nil
	})
	if err == nil && to != "" {
		if merr := e.mailer.Send(to, "Workstream password reset", "Your reset code: "+code); merr != nil {
			logger.Log.Warn("reset_mail_failed", zap.Error(merr))
		}
	}
	countOp("auth_reset_request", err)
	return err
}

// PasswordReset consumes a reset code and stores the new password hash.
func (e *Engine) PasswordReset(code, newPassword string) error {
	err := e.st.Update(func(snap *models.Snapshot) error {
		if runeLen(newPassword) < 6 {
			return invalidf("password too short")
		}
		if code == "" {
			return invalidf("empty reset code")
		}
		for uid := range snap.Users {
			if snap.Users[uid].Removed() || snap.Users[uid].ResetCode != code {
				continue
			}
			hash, herr := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
			if herr != nil {
				return fmt.Errorf("hash password: %w", herr)
			}
			snap.Users[uid].PasswordHash = string(hash)
			snap.Users[uid].ResetCode = ""
			logger.Log.Info("password_reset", zap.Int("user_id", uid))
			return nil
		}
		return invalidf("reset code not recognized")
	})
	countOp("auth_reset", err)
	return err
}

// ResolveToken maps a token to the acting user id. A token is valid only
// while its session id is present in the user's session list.
func (e *Engine) ResolveToken(token string) (int, error) {
	uid, session, err := e.parseToken(token)
	if err != nil {
		return 0, err
	}
	err = e.st.View(func(snap *models.Snapshot) error {
		if !validUser(snap, uid) || !containsSession(snap.Users[uid].Sessions, session) {
			return ErrBadToken
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return uid, nil
}

func (e *Engine) openSession(snap *models.Snapshot, uid int) int64 {
	snap.SessionCounter++
	session := snap.SessionCounter
	snap.Users[uid].Sessions = append(snap.Users[uid].Sessions, session)
	return session
}

// Tokens are "uid.session.sig" with an HMAC-SHA256 signature over the
// payload.
func (e *Engine) signToken(uid int, session int64) string {
	payload := strconv.Itoa(uid) + "." + strconv.FormatInt(session, 10)
	return payload + "." + e.sign(payload)
}

func (e *Engine) parseToken(token string) (int, int64, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return 0, 0, ErrBadToken
	}
	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(e.sign(payload)), []byte(parts[2])) {
		return 0, 0, ErrBadToken
	}
	uid, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, ErrBadToken
	}
	session, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, ErrBadToken
	}
	return uid, session, nil
}

func (e *Engine) sign(payload string) string {
	mac := hmac.New(sha256.New, e.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func containsSession(sessions []int64, s int64) bool {
	for _, v := range sessions {
		if v == s {
			return true
		}
	}
	return false
}

func removeSession(sessions []int64, s int64) []int64 {
	for i, v := range sessions {
		if v == s {
			return append(sessions[:i], sessions[i+1:]...)
		}
	}
	return sessions
}
