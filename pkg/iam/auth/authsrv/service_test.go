package authsrv_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hayat-market/authgate/pkg/errx"
	"github.com/hayat-market/authgate/pkg/iam"
	"github.com/hayat-market/authgate/pkg/iam/auth"
	"github.com/hayat-market/authgate/pkg/iam/auth/authinfra"
	"github.com/hayat-market/authgate/pkg/iam/auth/authsrv"
	"github.com/hayat-market/authgate/pkg/iam/otp"
	"github.com/hayat-market/authgate/pkg/iam/otp/otpsrv"
	"github.com/hayat-market/authgate/pkg/iam/user"
	"github.com/hayat-market/authgate/pkg/kernel"
	"github.com/hayat-market/authgate/pkg/keyval/keyvalredis"
	"github.com/redis/go-redis/v9"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeRepo struct {
	mu    sync.Mutex
	users map[string]*user.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]*user.User)}
}

func (r *fakeRepo) put(u *user.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.Shortname] = &cp
}

func (r *fakeRepo) FindByChannel(_ context.Context, kind iam.ChannelKind, value string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Contact.Channel(kind) == value {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) FindByProviderID(_ context.Context, provider, providerID string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.OAuthIDs.ByProvider(provider) == providerID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) GetByShortname(_ context.Context, shortname string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[shortname]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Shortname]; ok {
		return user.ErrAlreadyExists()
	}
	cp := *u
	r.users[u.Shortname] = &cp
	return nil
}

func (r *fakeRepo) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Shortname]; !ok {
		return user.ErrNotFound()
	}
	cp := *u
	r.users[u.Shortname] = &cp
	return nil
}

type fakeAudit struct {
	mu       sync.Mutex
	attempts []bool
}

func (a *fakeAudit) LogLoginAttempt(_ context.Context, _ kernel.UserID, _ string, success bool, _, _ string) {
	a.mu.Lock()
	a.attempts = append(a.attempts, success)
	a.mu.Unlock()
}
func (a *fakeAudit) LogLogout(context.Context, kernel.UserID, string)               {}
func (a *fakeAudit) LogOTPIssued(context.Context, string, string)                   {}
func (a *fakeAudit) LogOTPVerification(context.Context, string, bool)               {}
func (a *fakeAudit) LogAccountCreated(context.Context, kernel.UserID, string, string) {}
func (a *fakeAudit) LogAccountLinked(context.Context, kernel.UserID, string)        {}
func (a *fakeAudit) LogPasswordReset(context.Context, kernel.UserID, string)        {}

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

type harness struct {
	flow        *authsrv.Service
	repo        *fakeRepo
	otps        *otpsrv.Service
	tokens      auth.TokenService
	passwords   auth.PasswordService
	revocations auth.RevocationList
	sessions    auth.SessionRegistry
	audit       *fakeAudit
	mr          *miniredis.Miniredis
}

func newHarness(t *testing.T, singleSession bool) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	store := keyvalredis.NewStore(rdb, keyvalredis.Options{})

	h := &harness{
		repo:        newFakeRepo(),
		otps:        otpsrv.New(store, otpsrv.Config{ResendGap: 0}),
		tokens:      auth.NewJWTService("test-secret", "authgate"),
		passwords:   authinfra.NewBcryptPasswordService(4),
		revocations: authinfra.NewRedisRevocationList(store),
		audit:       &fakeAudit{},
		mr:          mr,
	}
	if singleSession {
		h.sessions = authinfra.NewRedisSessionRegistry(store)
	}
	h.flow = authsrv.New(
		h.repo, h.otps, h.tokens, h.passwords, h.revocations, h.sessions,
		nil, h.audit,
		authsrv.Config{AccessTokenTTL: time.Hour, SingleSession: singleSession},
	)
	return h
}

func (h *harness) seedUser(t *testing.T, shortname, email, password string) {
	t.Helper()
	u := &user.User{
		Shortname: shortname,
		Contact:   user.Contact{Email: email},
	}
	if password != "" {
		hash, err := h.passwords.Hash(password)
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		u.Password = hash
	}
	h.repo.put(u)
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestLoginWithPassword(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	h.seedUser(t, "john", "john@example.com", "hunter2")

	session, err := h.flow.Login(ctx, authsrv.LoginInput{
		Channel:  iam.Channel{Kind: iam.ChannelEmail, Value: "john@example.com"},
		Password: "hunter2",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.User.Shortname != "john" {
		t.Fatalf("session user = %q", session.User.Shortname)
	}

	claims, err := h.tokens.Verify(session.Token)
	if err != nil || claims.Username != "john" {
		t.Fatalf("issued token does not verify: %v", err)
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	h.seedUser(t, "john", "john@example.com", "hunter2")

	cases := []authsrv.LoginInput{
		// Wrong password.
		{Channel: iam.Channel{Kind: iam.ChannelEmail, Value: "john@example.com"}, Password: "wrong"},
		// Unknown account.
		{Channel: iam.Channel{Kind: iam.ChannelEmail, Value: "ghost@example.com"}, Password: "hunter2"},
		// OTP that was never issued.
		{Channel: iam.Channel{Kind: iam.ChannelEmail, Value: "john@example.com", OTP: "123456"}},
	}
	for i, in := range cases {
		_, err := h.flow.Login(ctx, in)
		if !errx.IsCode(err, auth.CodeInvalidCredentials) {
			t.Errorf("case %d: err = %v, want invalid-credentials", i, err)
		}
	}
}

func TestLoginWithOTPMarksChannelVerified(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	h.seedUser(t, "john", "john@example.com", "")

	code, err := h.otps.Create(ctx, "john@example.com", otp.PurposeLogin)
	if err != nil {
		t.Fatalf("Create OTP: %v", err)
	}

	_, err = h.flow.Login(ctx, authsrv.LoginInput{
		Channel: iam.Channel{Kind: iam.ChannelEmail, Value: "john@example.com", OTP: code},
	})
	if err != nil {
		t.Fatalf("OTP login: %v", err)
	}

	u, _ := h.repo.GetByShortname(ctx, "john")
	if !u.Contact.EmailVerified {
		t.Fatal("OTP login did not verify the channel")
	}

	// The code is single-use.
	_, err = h.flow.Login(ctx, authsrv.LoginInput{
		Channel: iam.Channel{Kind: iam.ChannelEmail, Value: "john@example.com", OTP: code},
	})
	if !errx.IsCode(err, auth.CodeInvalidCredentials) {
		t.Fatalf("replayed OTP = %v, want invalid-credentials", err)
	}
}

func TestSingleSessionLastLoginWins(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	h.seedUser(t, "john", "john@example.com", "hunter2")

	in := authsrv.LoginInput{
		Channel:  iam.Channel{Kind: iam.ChannelEmail, Value: "john@example.com"},
		Password: "hunter2",
	}
	if _, err := h.flow.Login(ctx, in); err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := h.flow.Login(ctx, in)
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	active, found, err := h.sessions.Active(ctx, kernel.UserID("john"))
	if err != nil || !found {
		t.Fatalf("Active = (%v, %v)", found, err)
	}
	if active != second.Token {
		t.Fatal("registry does not hold the latest token")
	}
}

// ---------------------------------------------------------------------------
// Registration
// ---------------------------------------------------------------------------

func TestRegister(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	code, _ := h.otps.Create(ctx, "new@example.com", otp.PurposeRegister)

	session, err := h.flow.Register(ctx, authsrv.RegisterInput{
		Shortname: "newbie",
		FirstName: "New",
		Password:  "hunter2",
		Channels: []iam.Channel{
			{Kind: iam.ChannelEmail, Value: "new@example.com", OTP: code},
		},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if session.User.Shortname != "newbie" {
		t.Fatalf("session user = %q", session.User.Shortname)
	}

	u, _ := h.repo.GetByShortname(ctx, "newbie")
	if u == nil {
		t.Fatal("user not created")
	}
	if !u.Contact.EmailVerified {
		t.Fatal("registered channel not marked verified")
	}
	if u.Password == "hunter2" || u.Password == "" {
		t.Fatal("password not hashed")
	}
}

func TestRegisterConflictDoesNotBurnCode(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	h.seedUser(t, "john", "john@example.com", "hunter2")

	code, _ := h.otps.Create(ctx, "new@example.com", otp.PurposeRegister)

	_, err := h.flow.Register(ctx, authsrv.RegisterInput{
		Shortname: "john", // taken
		Channels: []iam.Channel{
			{Kind: iam.ChannelEmail, Value: "new@example.com", OTP: code},
		},
	})
	if !errx.IsCode(err, user.CodeAlreadyExists) {
		t.Fatalf("conflict = %v, want already-exists", err)
	}

	// The caller can retry with a free shortname using the same code.
	if ok, _ := h.otps.Validate(ctx, "new@example.com", otp.PurposeRegister, code); !ok {
		t.Fatal("code burned by a shortname conflict")
	}
}

func TestRegisterWithBadCode(t *testing.T) {
	h := newHarness(t, false)

	_, err := h.flow.Register(context.Background(), authsrv.RegisterInput{
		Shortname: "newbie",
		Channels: []iam.Channel{
			{Kind: iam.ChannelEmail, Value: "new@example.com", OTP: "000000"},
		},
	})
	if !errx.IsCode(err, otp.CodeExpiredOrConsumed) {
		t.Fatalf("bad code = %v, want expired-or-consumed", err)
	}
}

// ---------------------------------------------------------------------------
// OTP issuance preconditions
// ---------------------------------------------------------------------------

func TestIssueOTPPreconditions(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	h.seedUser(t, "john", "john@example.com", "hunter2")

	// Register requires the channel to be free.
	err := h.flow.IssueOTP(ctx, otp.PurposeRegister,
		iam.Channel{Kind: iam.ChannelEmail, Value: "john@example.com"})
	if !errx.IsCode(err, user.CodeAlreadyExists) {
		t.Fatalf("register for taken channel = %v", err)
	}

	// Login requires an existing account.
	err = h.flow.IssueOTP(ctx, otp.PurposeLogin,
		iam.Channel{Kind: iam.ChannelEmail, Value: "ghost@example.com"})
	if !errx.IsCode(err, user.CodeNotFound) {
		t.Fatalf("login for unknown channel = %v", err)
	}

	// The happy path leaves a redeemable code behind.
	err = h.flow.IssueOTP(ctx, otp.PurposeLogin,
		iam.Channel{Kind: iam.ChannelEmail, Value: "john@example.com"})
	if err != nil {
		t.Fatalf("IssueOTP: %v", err)
	}
	if _, found, _ := h.otps.Peek(ctx, "john@example.com", otp.PurposeLogin); !found {
		t.Fatal("no code stored after IssueOTP")
	}
}

// ---------------------------------------------------------------------------
// Password recovery and contact update
// ---------------------------------------------------------------------------

func TestResetPassword(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	h.seedUser(t, "john", "john@example.com", "old-password")

	code, _ := h.otps.Create(ctx, "john@example.com", otp.PurposeForgotPassword)

	err := h.flow.ResetPassword(ctx,
		iam.Channel{Kind: iam.ChannelEmail, Value: "john@example.com", OTP: code},
		"new-password", "")
	if err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	if _, err := h.flow.Login(ctx, authsrv.LoginInput{
		Channel:  iam.Channel{Kind: iam.ChannelEmail, Value: "john@example.com"},
		Password: "old-password",
	}); !errx.IsCode(err, auth.CodeInvalidCredentials) {
		t.Fatalf("old password still works: %v", err)
	}
	if _, err := h.flow.Login(ctx, authsrv.LoginInput{
		Channel:  iam.Channel{Kind: iam.ChannelEmail, Value: "john@example.com"},
		Password: "new-password",
	}); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestUpdateContact(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	h.seedUser(t, "john", "john@example.com", "hunter2")

	// The code is issued to the NEW address.
	code, _ := h.otps.Create(ctx, "new@example.com", otp.PurposeUpdateProfile)

	public, err := h.flow.UpdateContact(ctx, kernel.UserID("john"), []iam.Channel{
		{Kind: iam.ChannelEmail, Value: "new@example.com", OTP: code},
	})
	if err != nil {
		t.Fatalf("UpdateContact: %v", err)
	}
	if public.Contact.Email != "new@example.com" || !public.Contact.EmailVerified {
		t.Fatalf("contact after update = %+v", public.Contact)
	}
}

// ---------------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------------

func TestLogoutRevokesToken(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	h.seedUser(t, "john", "john@example.com", "hunter2")

	session, err := h.flow.Login(ctx, authsrv.LoginInput{
		Channel:  iam.Channel{Kind: iam.ChannelEmail, Value: "john@example.com"},
		Password: "hunter2",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := h.flow.Logout(ctx, session.Token, ""); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	revoked, err := h.revocations.IsRevoked(ctx, session.Token)
	if err != nil || !revoked {
		t.Fatalf("token not revoked after logout: (%v, %v)", revoked, err)
	}
	if _, found, _ := h.sessions.Active(ctx, kernel.UserID("john")); found {
		t.Fatal("active session survived logout")
	}
}

func TestLogoutExpiredTokenIsNoop(t *testing.T) {
	h := newHarness(t, false)

	expired, err := h.tokens.Issue(map[string]any{"username": "john"}, -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := h.flow.Logout(context.Background(), expired, ""); err != nil {
		t.Fatalf("logout with expired token = %v, want nil", err)
	}
}

func TestLogoutClearsPushToken(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	h.repo.put(&user.User{
		Shortname: "john",
		Contact:   user.Contact{Email: "john@example.com"},
		PushToken: "device-token",
	})

	token, _ := h.tokens.Issue(map[string]any{"username": "john"}, time.Hour)
	if err := h.flow.Logout(ctx, token, ""); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	u, _ := h.repo.GetByShortname(ctx, "john")
	if u.PushToken != "" {
		t.Fatal("push token survived logout")
	}
}
