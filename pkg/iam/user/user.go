package user

import (
	"net/http"

	"github.com/hayat-market/authgate/pkg/errx"
	"github.com/hayat-market/authgate/pkg/iam"
)

// Contact holds the identity channels of a user, with per-channel proof flags.
// A verified flag is only ever set after a one-time code for that channel was
// validated.
type Contact struct {
	Email          string `json:"email,omitempty" db:"email"`
	Mobile         string `json:"mobile,omitempty" db:"mobile"`
	EmailVerified  bool   `json:"is_email_verified" db:"email_verified"`
	MobileVerified bool   `json:"is_mobile_verified" db:"mobile_verified"`
}

// Channel returns the value for the given channel kind.
func (c Contact) Channel(kind iam.ChannelKind) string {
	if kind == iam.ChannelEmail {
		return c.Email
	}
	return c.Mobile
}

// OAuthIDs holds provider-specific identifiers attached at SSO reconciliation.
type OAuthIDs struct {
	GoogleID    string `json:"google_id,omitempty" db:"google_id"`
	FacebookID  string `json:"facebook_id,omitempty" db:"facebook_id"`
	GithubID    string `json:"github_id,omitempty" db:"github_id"`
	MicrosoftID string `json:"microsoft_id,omitempty" db:"microsoft_id"`
}

// ByProvider returns the stored identifier for a provider name.
func (o *OAuthIDs) ByProvider(provider string) string {
	if o == nil {
		return ""
	}
	switch provider {
	case "google":
		return o.GoogleID
	case "facebook":
		return o.FacebookID
	case "github":
		return o.GithubID
	case "microsoft":
		return o.MicrosoftID
	}
	return ""
}

// SetProvider stores the identifier for a provider name.
func (o *OAuthIDs) SetProvider(provider, id string) {
	switch provider {
	case "google":
		o.GoogleID = id
	case "facebook":
		o.FacebookID = id
	case "github":
		o.GithubID = id
	case "microsoft":
		o.MicrosoftID = id
	}
}

// User is the account record persisted by the external repository. Password
// holds the one-way hash; hashing itself is delegated to the password service
// and never happens in this package.
type User struct {
	Shortname   string    `json:"shortname" db:"shortname"`
	FirstName   string    `json:"first_name" db:"first_name"`
	LastName    string    `json:"last_name" db:"last_name"`
	Contact     Contact   `json:"contact"`
	Password    string    `json:"-" db:"password"`
	AvatarURL   string    `json:"avatar_url,omitempty" db:"avatar_url"`
	PushToken   string    `json:"-" db:"push_token"`
	Language    string    `json:"language,omitempty" db:"language"`
	OAuthIDs    *OAuthIDs `json:"-"`
	Gender      string    `json:"gender,omitempty" db:"gender"`
	DateOfBirth string    `json:"date_of_birth,omitempty" db:"date_of_birth"`
}

// Public is the representation returned to API callers: no password hash, no
// push token, no provider identifiers.
type Public struct {
	Shortname   string  `json:"shortname"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Contact     Contact `json:"contact"`
	AvatarURL   string  `json:"avatar_url,omitempty"`
	Language    string  `json:"language,omitempty"`
	Gender      string  `json:"gender,omitempty"`
	DateOfBirth string  `json:"date_of_birth,omitempty"`
}

// Represent strips private fields for API responses.
func (u *User) Represent() Public {
	return Public{
		Shortname:   u.Shortname,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Contact:     u.Contact,
		AvatarURL:   u.AvatarURL,
		Language:    u.Language,
		Gender:      u.Gender,
		DateOfBirth: u.DateOfBirth,
	}
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("USER")

var (
	CodeNotFound      = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "User not found")
	CodeAlreadyExists = ErrRegistry.Register("ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "User already exists")
)

func ErrNotFound() *errx.Error      { return ErrRegistry.New(CodeNotFound) }
func ErrAlreadyExists() *errx.Error { return ErrRegistry.New(CodeAlreadyExists) }
