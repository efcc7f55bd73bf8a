package authsrv

import (
	"context"
	"fmt"
	"time"

	"github.com/hayat-market/authgate/pkg/asyncx"
	"github.com/hayat-market/authgate/pkg/errx"
	"github.com/hayat-market/authgate/pkg/iam"
	"github.com/hayat-market/authgate/pkg/iam/auth"
	"github.com/hayat-market/authgate/pkg/iam/otp"
	"github.com/hayat-market/authgate/pkg/iam/otp/otpsrv"
	"github.com/hayat-market/authgate/pkg/iam/user"
	"github.com/hayat-market/authgate/pkg/kernel"
	"github.com/hayat-market/authgate/pkg/logx"
	"github.com/hayat-market/authgate/pkg/notifx"
)

// otpEmailTemplate renders the one-time code mail. Registered on the notifx
// client at construction.
const otpEmailTemplate = `<p>Your verification code is <strong>{{.Code}}</strong>.</p>
<p>If you did not request this code, you can ignore this message.</p>`

const otpEmailTemplateName = "otp_code"

// Config tunes the authentication flow.
type Config struct {
	AccessTokenTTL time.Duration
	// SingleSession registers every issued token as the user's only live
	// session; older tokens stop verifying.
	SingleSession bool
	// EmailFrom is the sender address for OTP mails.
	EmailFrom string
}

// Service orchestrates login, registration and credential recovery over the
// token, password, OTP and user-repository ports.
type Service struct {
	users       user.Repository
	otps        *otpsrv.Service
	tokens      auth.TokenService
	passwords   auth.PasswordService
	revocations auth.RevocationList
	sessions    auth.SessionRegistry
	notifier    *notifx.Client
	audit       auth.AuditService
	cfg         Config
}

// New wires the authentication flow. The session registry may be nil when the
// single-session policy is off; the notifier may be nil in tests.
func New(
	users user.Repository,
	otps *otpsrv.Service,
	tokens auth.TokenService,
	passwords auth.PasswordService,
	revocations auth.RevocationList,
	sessions auth.SessionRegistry,
	notifier *notifx.Client,
	audit auth.AuditService,
	cfg Config,
) *Service {
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 24 * time.Hour
	}
	if notifier != nil {
		if err := notifier.RegisterTemplate(otpEmailTemplateName, otpEmailTemplate); err != nil {
			logx.WithError(err).Warn("failed to register OTP email template")
		}
	}
	return &Service{
		users:       users,
		otps:        otps,
		tokens:      tokens,
		passwords:   passwords,
		revocations: revocations,
		sessions:    sessions,
		notifier:    notifier,
		audit:       audit,
		cfg:         cfg,
	}
}

// Session is the result of a successful login or registration.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      user.Public `json:"user"`
}

// ============================================================================
// OTP issuance
// ============================================================================

// IssueOTP creates and delivers a one-time code per channel. Register and
// update-profile codes require the channel to be free; login and
// forgot-password codes require an existing account. Delivery is
// fire-and-forget: a failed send is logged and never invalidates the code.
func (s *Service) IssueOTP(ctx context.Context, purpose otp.Purpose, channels ...iam.Channel) error {
	if !purpose.Valid() {
		return otp.ErrUnknownPurpose().WithDetail("purpose", string(purpose))
	}
	if len(channels) == 0 {
		return errx.New("at least one channel is required", errx.TypeValidation)
	}

	for _, ch := range channels {
		existing, err := s.users.FindByChannel(ctx, ch.Kind, ch.Value)
		if err != nil {
			return err
		}
		switch purpose {
		case otp.PurposeRegister, otp.PurposeUpdateProfile:
			if existing != nil {
				return user.ErrAlreadyExists().WithDetail("channel", string(ch.Kind))
			}
		case otp.PurposeLogin, otp.PurposeForgotPassword:
			if existing == nil {
				return user.ErrNotFound().WithDetail("channel", string(ch.Kind))
			}
		}
	}

	for _, ch := range channels {
		code, err := s.otps.Create(ctx, ch.Value, purpose)
		if err != nil {
			return err
		}
		s.deliver(ctx, ch, code)
		s.audit.LogOTPIssued(ctx, ch.Value, string(purpose))
	}
	return nil
}

// deliver sends the code on a detached context so a cancelled request cannot
// abort a send already in flight.
func (s *Service) deliver(ctx context.Context, ch iam.Channel, code string) {
	if s.notifier == nil {
		return
	}
	asyncx.DoCtx(ctx, func(sendCtx context.Context) {
		var err error
		switch ch.Kind {
		case iam.ChannelEmail:
			err = s.notifier.SendTemplatedEmail(sendCtx, otpEmailTemplateName,
				map[string]string{"Code": code},
				notifx.EmailMessage{
					From:    s.cfg.EmailFrom,
					To:      []string{ch.Value},
					Subject: "Your verification code",
				})
		case iam.ChannelMobile:
			err = s.notifier.SendSMS(sendCtx, notifx.SMSMessage{
				To:   ch.Value,
				Body: fmt.Sprintf("Your verification code is %s", code),
			})
		}
		if err != nil {
			logx.WithError(err).WithFields(logx.Fields{
				"channel": string(ch.Kind),
			}).Warn("OTP delivery failed")
		}
	})
}

// ============================================================================
// Login
// ============================================================================

// LoginInput identifies the caller by exactly one channel and proves it with
// either a password or a one-time code.
type LoginInput struct {
	Channel   iam.Channel
	Password  string
	IP        string
	UserAgent string
}

// Login authenticates a user. Every failure mode answers with the same
// invalid-credentials error; only infrastructure faults surface differently.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	u, err := s.users.FindByChannel(ctx, in.Channel.Kind, in.Channel.Value)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.audit.LogLoginAttempt(ctx, kernel.UserID(in.Channel.Value), "unknown", false, in.IP, in.UserAgent)
		return nil, auth.ErrInvalidCredentials()
	}
	userID := kernel.UserID(u.Shortname)

	method := "password"
	if in.Password != "" {
		if !s.passwords.Verify(in.Password, u.Password) {
			s.audit.LogLoginAttempt(ctx, userID, method, false, in.IP, in.UserAgent)
			return nil, auth.ErrInvalidCredentials()
		}
	} else {
		method = "otp"
		if err := s.otps.Consume(ctx, in.Channel.Value, otp.PurposeLogin, in.Channel.OTP); err != nil {
			if errx.IsCode(err, otp.CodeExpiredOrConsumed) {
				s.audit.LogLoginAttempt(ctx, userID, method, false, in.IP, in.UserAgent)
				return nil, auth.ErrInvalidCredentials()
			}
			return nil, err
		}
		// Redeeming a login code proves control of the channel.
		if err := s.markVerified(ctx, u, in.Channel.Kind); err != nil {
			return nil, err
		}
	}

	session, err := s.issueSession(ctx, u)
	if err != nil {
		return nil, err
	}
	s.audit.LogLoginAttempt(ctx, userID, method, true, in.IP, in.UserAgent)
	return session, nil
}

func (s *Service) markVerified(ctx context.Context, u *user.User, kind iam.ChannelKind) error {
	switch kind {
	case iam.ChannelEmail:
		if u.Contact.EmailVerified {
			return nil
		}
		u.Contact.EmailVerified = true
	case iam.ChannelMobile:
		if u.Contact.MobileVerified {
			return nil
		}
		u.Contact.MobileVerified = true
	}
	return s.users.Update(ctx, u)
}

// IssueSessionFor signs a session for an already-authenticated user. The
// federated exchange calls this after identity reconciliation: the provider
// proved who is calling, so no local credential check happens here.
func (s *Service) IssueSessionFor(ctx context.Context, u *user.User) (*Session, error) {
	return s.issueSession(ctx, u)
}

func (s *Service) issueSession(ctx context.Context, u *user.User) (*Session, error) {
	token, err := s.tokens.Issue(map[string]any{"username": u.Shortname}, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	if s.cfg.SingleSession && s.sessions != nil {
		if err := s.sessions.Register(ctx, kernel.UserID(u.Shortname), token, s.cfg.AccessTokenTTL); err != nil {
			return nil, err
		}
	}
	return &Session{
		Token:     token,
		ExpiresAt: time.Now().Add(s.cfg.AccessTokenTTL),
		User:      u.Represent(),
	}, nil
}

// ============================================================================
// Registration
// ============================================================================

// RegisterInput creates an account. Every channel must carry the code issued
// to it; the codes of all channels are redeemed as a unit.
type RegisterInput struct {
	Shortname   string
	FirstName   string
	LastName    string
	Password    string
	Channels    []iam.Channel
	Language    string
	Gender      string
	DateOfBirth string
	AvatarURL   string
	IP          string
	UserAgent   string
}

// Register creates a user after proving control of every supplied channel.
// Conflicts are checked before any code is redeemed so a taken shortname does
// not burn the caller's codes.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if in.Shortname == "" {
		return nil, errx.New("shortname is required", errx.TypeValidation)
	}
	if len(in.Channels) == 0 {
		return nil, errx.New("at least one channel is required", errx.TypeValidation)
	}

	existing, err := s.users.GetByShortname(ctx, in.Shortname)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, user.ErrAlreadyExists().WithDetail("shortname", in.Shortname)
	}
	for _, ch := range in.Channels {
		existing, err := s.users.FindByChannel(ctx, ch.Kind, ch.Value)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, user.ErrAlreadyExists().WithDetail("channel", string(ch.Kind))
		}
	}

	if err := s.otps.ConsumeChannels(ctx, otp.PurposeRegister, in.Channels...); err != nil {
		return nil, err
	}

	u := &user.User{
		Shortname:   in.Shortname,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Language:    in.Language,
		Gender:      in.Gender,
		DateOfBirth: in.DateOfBirth,
		AvatarURL:   in.AvatarURL,
	}
	for _, ch := range in.Channels {
		switch ch.Kind {
		case iam.ChannelEmail:
			u.Contact.Email = ch.Value
			u.Contact.EmailVerified = true
		case iam.ChannelMobile:
			u.Contact.Mobile = ch.Value
			u.Contact.MobileVerified = true
		}
	}
	if in.Password != "" {
		hash, err := s.passwords.Hash(in.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hash
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.audit.LogAccountCreated(ctx, kernel.UserID(u.Shortname), "register", in.IP)

	return s.issueSession(ctx, u)
}

// ============================================================================
// Password recovery
// ============================================================================

// ResetPassword replaces a forgotten password after redeeming the recovery
// code issued to the channel.
func (s *Service) ResetPassword(ctx context.Context, ch iam.Channel, newPassword string, ip string) error {
	if newPassword == "" {
		return errx.New("new password is required", errx.TypeValidation)
	}
	u, err := s.users.FindByChannel(ctx, ch.Kind, ch.Value)
	if err != nil {
		return err
	}
	if u == nil {
		return user.ErrNotFound().WithDetail("channel", string(ch.Kind))
	}

	if err := s.otps.Consume(ctx, ch.Value, otp.PurposeForgotPassword, ch.OTP); err != nil {
		return err
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return err
	}
	u.Password = hash
	if err := s.users.Update(ctx, u); err != nil {
		return err
	}
	s.audit.LogPasswordReset(ctx, kernel.UserID(u.Shortname), ip)
	return nil
}

// ============================================================================
// Contact update
// ============================================================================

// UpdateContact changes the user's email or mobile. Each channel value must
// carry the update-profile code issued to the NEW value, so the caller has
// proven control of the channel before it is attached.
func (s *Service) UpdateContact(ctx context.Context, userID kernel.UserID, channels []iam.Channel) (*user.Public, error) {
	if len(channels) == 0 {
		return nil, errx.New("at least one channel is required", errx.TypeValidation)
	}
	u, err := s.users.GetByShortname(ctx, userID.String())
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, user.ErrNotFound().WithDetail("shortname", userID.String())
	}

	if err := s.otps.ConsumeChannels(ctx, otp.PurposeUpdateProfile, channels...); err != nil {
		return nil, err
	}

	for _, ch := range channels {
		switch ch.Kind {
		case iam.ChannelEmail:
			u.Contact.Email = ch.Value
			u.Contact.EmailVerified = true
		case iam.ChannelMobile:
			u.Contact.Mobile = ch.Value
			u.Contact.MobileVerified = true
		}
		s.audit.LogOTPVerification(ctx, ch.Value, true)
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	public := u.Represent()
	return &public, nil
}

// ============================================================================
// Logout
// ============================================================================

// Logout revokes the token for its remaining lifetime and clears the active
// session and push token. A token that already expired is a no-op success:
// there is nothing left to revoke.
func (s *Service) Logout(ctx context.Context, token string, ip string) error {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errx.IsCode(err, auth.CodeExpiredToken) {
			return nil
		}
		return iam.ErrInvalidToken()
	}
	userID := kernel.UserID(claims.Username)

	if err := s.revocations.Revoke(ctx, token, claims.RemainingTTL()); err != nil {
		return err
	}
	if s.sessions != nil {
		if err := s.sessions.Clear(ctx, userID); err != nil {
			return err
		}
	}

	// Best effort: a logout without a push token cleanup is still a logout.
	if u, err := s.users.GetByShortname(ctx, claims.Username); err != nil {
		logx.WithError(err).Warn("failed to load user on logout")
	} else if u != nil && u.PushToken != "" {
		u.PushToken = ""
		if err := s.users.Update(ctx, u); err != nil {
			logx.WithError(err).Warn("failed to clear push token on logout")
		}
	}

	s.audit.LogLogout(ctx, userID, ip)
	return nil
}
