package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"workstream/pkg/models"
	"workstream/pkg/scheduler"
	"workstream/pkg/state"
)

type memPersister struct {
	saves int
	snap  *models.Snapshot
}

func (m *memPersister) Load() (*models.Snapshot, bool, error) { return nil, false, nil }

func (m *memPersister) Save(s *models.Snapshot) error {
	m.saves++
	m.snap = s
	return nil
}

type captureMailer struct {
	to   string
	body string
}

func (c *captureMailer) Send(to, subject, body string) error {
	c.to, c.body = to, body
	return nil
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	st, err := state.Open(&memPersister{})
	require.NoError(t, err)
	sched := scheduler.New()
	t.Cleanup(sched.Stop)
	return New(st, sched, "test-secret", nil)
}

var regSeq atomic.Int64

// register creates n fresh users with unique emails and returns their
// sessions.
func register(t *testing.T, e *Engine, n int) []AuthResult {
	t.Helper()
	out := make([]AuthResult, 0, n)
	for i := 0; i < n; i++ {
		seq := regSeq.Add(1)
		res, err := e.Register(
			fmt.Sprintf("user%d@example.com", seq),
			"password1",
			fmt.Sprintf("First%d", seq),
			fmt.Sprintf("Last%d", seq),
		)
		require.NoError(t, err)
		out = append(out, res)
	}
	return out
}

func TestRegisterValidation(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Register("not-an-email", "password1", "Ada", "Lovelace")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.Register("ada@example.com", "short", "Ada", "Lovelace")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.Register("ada@example.com", "password1", "", "Lovelace")
	require.ErrorIs(t, err, ErrInvalidInput)

	first, err := e.Register("ada@example.com", "password1", "Ada", "Lovelace")
	require.NoError(t, err)
	require.Equal(t, 0, first.UserID)

	_, err = e.Register("ada@example.com", "password1", "Ada", "Lovelace")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestHandleGeneration(t *testing.T) {
	e := newTestEngine(t)

	a, err := e.Register("a@example.com", "password1", "Ada", "Lovelace")
	require.NoError(t, err)
	p, err := e.UserProfile(a.UserID, a.UserID)
	require.NoError(t, err)
	require.Equal(t, "adalovelace", p.Handle)

	// same name: numeric suffix
	b, err := e.Register("b@example.com", "password1", "Ada", "Lovelace")
	require.NoError(t, err)
	p, err = e.UserProfile(b.UserID, b.UserID)
	require.NoError(t, err)
	require.Equal(t, "adalovelace0", p.Handle)

	// long names truncate to 20 before the suffix
	c, err := e.Register("c@example.com", "password1", "Abcdefghijklm", "Nopqrstuvwxyz")
	require.NoError(t, err)
	p, err = e.UserProfile(c.UserID, c.UserID)
	require.NoError(t, err)
	require.Len(t, p.Handle, 20)
}

func TestLoginLogout(t *testing.T) {
	e := newTestEngine(t)
	reg := register(t, e, 1)[0]
	profile, err := e.UserProfile(reg.UserID, reg.UserID)
	require.NoError(t, err)

	_, err = e.Login(profile.Email, "wrong-pass")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.Login("nobody@example.com", "password1")
	require.ErrorIs(t, err, ErrInvalidInput)

	login, err := e.Login(profile.Email, "password1")
	require.NoError(t, err)
	require.Equal(t, reg.UserID, login.UserID)
	require.NotEqual(t, reg.Token, login.Token)

	// both sessions resolve until logged out
	uid, err := e.ResolveToken(reg.Token)
	require.NoError(t, err)
	require.Equal(t, reg.UserID, uid)

	require.NoError(t, e.Logout(login.Token))
	_, err = e.ResolveToken(login.Token)
	require.ErrorIs(t, err, ErrBadToken)
	_, err = e.ResolveToken(reg.Token)
	require.NoError(t, err)
}

func TestTokenTampering(t *testing.T) {
	e := newTestEngine(t)
	reg := register(t, e, 1)[0]

	_, err := e.ResolveToken(reg.Token + "x")
	require.ErrorIs(t, err, ErrBadToken)
	_, err = e.ResolveToken("0.1.deadbeef")
	require.ErrorIs(t, err, ErrBadToken)
	_, err = e.ResolveToken("")
	require.ErrorIs(t, err, ErrBadToken)
}

func TestPasswordReset(t *testing.T) {
	st, err := state.Open(&memPersister{})
	require.NoError(t, err)
	sched := scheduler.New()
	t.Cleanup(sched.Stop)
	mail := &captureMailer{}
	e := New(st, sched, "test-secret", mail)

	reg, err := e.Register("ada@example.com", "password1", "Ada", "Lovelace")
	require.NoError(t, err)

	require.NoError(t, e.PasswordResetRequest("ada@example.com"))
	require.Equal(t, "ada@example.com", mail.to)
	require.NotEmpty(t, mail.body)

	// requesting a reset invalidates open sessions
	_, err = e.ResolveToken(reg.Token)
	require.ErrorIs(t, err, ErrBadToken)

	// unknown email is silently accepted
	require.NoError(t, e.PasswordResetRequest("nobody@example.com"))

	code := mail.body[len("Your reset code: "):]
	require.ErrorIs(t, e.PasswordReset("wrong-code", "newpassword"), ErrInvalidInput)
	require.ErrorIs(t, e.PasswordReset(code, "tiny"), ErrInvalidInput)
	require.NoError(t, e.PasswordReset(code, "newpassword"))

	// code is single use
	require.ErrorIs(t, e.PasswordReset(code, "anotherpass"), ErrInvalidInput)

	_, err = e.Login("ada@example.com", "password1")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.Login("ada@example.com", "newpassword")
	require.NoError(t, err)
}

func TestUpdatePersistsOnSuccessOnly(t *testing.T) {
	p := &memPersister{}
	st, err := state.Open(p)
	require.NoError(t, err)
	sched := scheduler.New()
	t.Cleanup(sched.Stop)
	e := New(st, sched, "s", nil)

	before := p.saves
	_, err = e.Register("bad", "password1", "Ada", "Lovelace")
	require.Error(t, err)
	require.Equal(t, before, p.saves)

	_, err = e.Register("ok@example.com", "password1", "Ada", "Lovelace")
	require.NoError(t, err)
	require.Equal(t, before+1, p.saves)
}

func TestErrorKindsAreDistinct(t *testing.T) {
	require.False(t, errors.Is(ErrInvalidInput, ErrAccessDenied))
	require.False(t, errors.Is(ErrAccessDenied, ErrBadToken))
}

func TestHandleTrimsByCharacter(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.Register("unicode@example.com", "password1", "Éléonore", "Dûböis-Çédille")
	require.NoError(t, err)

	p, err := e.UserProfile(res.UserID, res.UserID)
	require.NoError(t, err)
	require.True(t, utf8.ValidString(p.Handle))
	require.Equal(t, 20, utf8.RuneCountInString(p.Handle))
	require.Equal(t, "éléonoredûböisçédill", p.Handle)
}
