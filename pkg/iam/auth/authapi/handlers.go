package authapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hayat-market/authgate/pkg/errx"
	"github.com/hayat-market/authgate/pkg/iam"
	"github.com/hayat-market/authgate/pkg/iam/auth"
	"github.com/hayat-market/authgate/pkg/iam/auth/authsrv"
	"github.com/hayat-market/authgate/pkg/iam/otp"
	"github.com/hayat-market/authgate/pkg/iam/sso/ssosrv"
)

// Handlers exposes the authentication flow over HTTP. Every request shape
// normalizes its email/mobile fields into the common channel form before it
// reaches the flow.
type Handlers struct {
	flow          *authsrv.Service
	sso           *ssosrv.Service
	middleware    *auth.TokenMiddleware
	secureCookies bool
}

// NewHandlers creates the HTTP handlers. The sso service may be nil when no
// provider is configured.
func NewHandlers(flow *authsrv.Service, sso *ssosrv.Service, middleware *auth.TokenMiddleware, secureCookies bool) *Handlers {
	return &Handlers{
		flow:          flow,
		sso:           sso,
		middleware:    middleware,
		secureCookies: secureCookies,
	}
}

// RegisterRoutes mounts the authentication endpoints.
func (h *Handlers) RegisterRoutes(app fiber.Router) {
	grp := app.Group("/auth")

	grp.Post("/otp", h.IssueOTP)
	grp.Post("/register", h.Register)
	grp.Post("/login", h.Login)
	grp.Post("/reset-password", h.ResetPassword)
	grp.Post("/logout", h.middleware.Authenticate(), h.Logout)
	grp.Put("/profile/contact", h.middleware.Authenticate(), h.UpdateContact)
	grp.Post("/sso/:provider/exchange", h.SSOExchange)
}

// channelsFrom builds the channel list out of the optional email/mobile
// request fields, pairing each with its submitted code.
func channelsFrom(email, emailOTP, mobile, mobileOTP string) []iam.Channel {
	var channels []iam.Channel
	if email != "" {
		channels = append(channels, iam.Channel{Kind: iam.ChannelEmail, Value: email, OTP: emailOTP})
	}
	if mobile != "" {
		channels = append(channels, iam.Channel{Kind: iam.ChannelMobile, Value: mobile, OTP: mobileOTP})
	}
	return channels
}

func (h *Handlers) setSessionCookie(c *fiber.Ctx, session *authsrv.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    session.Token,
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func (h *Handlers) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

// ============================================================================
// OTP issuance
// ============================================================================

type otpRequest struct {
	Purpose string `json:"purpose"`
	Email   string `json:"email"`
	Mobile  string `json:"mobile"`
}

// IssueOTP handles POST /auth/otp.
func (h *Handlers) IssueOTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.New("invalid request body", errx.TypeValidation)
	}
	channels := channelsFrom(req.Email, "", req.Mobile, "")
	if err := h.flow.IssueOTP(c.UserContext(), otp.Purpose(req.Purpose), channels...); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "sent"})
}

// ============================================================================
// Registration
// ============================================================================

type registerRequest struct {
	Shortname   string `json:"shortname"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	EmailOTP    string `json:"email_otp"`
	Mobile      string `json:"mobile"`
	MobileOTP   string `json:"mobile_otp"`
	Language    string `json:"language"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth"`
	AvatarURL   string `json:"avatar_url"`
}

// Register handles POST /auth/register.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.New("invalid request body", errx.TypeValidation)
	}

	session, err := h.flow.Register(c.UserContext(), authsrv.RegisterInput{
		Shortname:   req.Shortname,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Password:    req.Password,
		Channels:    channelsFrom(req.Email, req.EmailOTP, req.Mobile, req.MobileOTP),
		Language:    req.Language,
		Gender:      req.Gender,
		DateOfBirth: req.DateOfBirth,
		AvatarURL:   req.AvatarURL,
		IP:          c.IP(),
		UserAgent:   c.Get("User-Agent"),
	})
	if err != nil {
		return err
	}

	h.setSessionCookie(c, session)
	return c.Status(fiber.StatusCreated).JSON(session)
}

// ============================================================================
// Login / logout
// ============================================================================

type loginRequest struct {
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

// Login handles POST /auth/login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.New("invalid request body", errx.TypeValidation)
	}
	channels := channelsFrom(req.Email, req.OTP, req.Mobile, req.OTP)
	if len(channels) != 1 {
		return errx.New("exactly one of email or mobile is required", errx.TypeValidation)
	}

	session, err := h.flow.Login(c.UserContext(), authsrv.LoginInput{
		Channel:   channels[0],
		Password:  req.Password,
		IP:        c.IP(),
		UserAgent: c.Get("User-Agent"),
	})
	if err != nil {
		return err
	}

	h.setSessionCookie(c, session)
	return c.JSON(session)
}

// Logout handles POST /auth/logout. Runs behind the token middleware.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	if err := h.flow.Logout(c.UserContext(), auth.CurrentToken(c), c.IP()); err != nil {
		return err
	}
	h.clearSessionCookie(c)
	return c.JSON(fiber.Map{"status": "logged_out"})
}

// ============================================================================
// Password recovery
// ============================================================================

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

// ResetPassword handles POST /auth/reset-password.
func (h *Handlers) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.New("invalid request body", errx.TypeValidation)
	}
	channels := channelsFrom(req.Email, req.OTP, req.Mobile, req.OTP)
	if len(channels) != 1 {
		return errx.New("exactly one of email or mobile is required", errx.TypeValidation)
	}

	if err := h.flow.ResetPassword(c.UserContext(), channels[0], req.NewPassword, c.IP()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "password_reset"})
}

// ============================================================================
// Contact update
// ============================================================================

type updateContactRequest struct {
	Email     string `json:"email"`
	EmailOTP  string `json:"email_otp"`
	Mobile    string `json:"mobile"`
	MobileOTP string `json:"mobile_otp"`
}

// UpdateContact handles PUT /auth/profile/contact. Runs behind the token
// middleware; the codes were issued to the NEW channel values.
func (h *Handlers) UpdateContact(c *fiber.Ctx) error {
	ac, ok := auth.CurrentUser(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req updateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.New("invalid request body", errx.TypeValidation)
	}
	channels := channelsFrom(req.Email, req.EmailOTP, req.Mobile, req.MobileOTP)

	public, err := h.flow.UpdateContact(c.UserContext(), ac.UserID, channels)
	if err != nil {
		return err
	}
	return c.JSON(public)
}

// ============================================================================
// Federated exchange
// ============================================================================

type ssoExchangeRequest struct {
	AccessToken string `json:"access_token"`
}

// SSOExchange handles POST /auth/sso/:provider/exchange. The client obtained
// the provider access token itself; this endpoint trades it for a local
// session.
func (h *Handlers) SSOExchange(c *fiber.Ctx) error {
	if h.sso == nil {
		return errx.New("sso is not configured", errx.TypeValidation)
	}

	var req ssoExchangeRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.New("invalid request body", errx.TypeValidation)
	}
	if req.AccessToken == "" {
		return errx.New("access_token is required", errx.TypeValidation)
	}

	u, err := h.sso.ResolveOrCreate(c.UserContext(), c.Params("provider"), req.AccessToken)
	if err != nil {
		return err
	}
	session, err := h.flow.IssueSessionFor(c.UserContext(), u)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, session)
	return c.JSON(session)
}
