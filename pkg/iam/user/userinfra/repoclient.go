package userinfra

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hayat-market/authgate/pkg/errx"
	"github.com/hayat-market/authgate/pkg/iam"
	"github.com/hayat-market/authgate/pkg/iam/user"
	"github.com/hayat-market/authgate/pkg/repo"
)

// RepoRepository implements user.Repository against the external content
// repository through the generic client. The user resource location is plain
// data, not a subclass.
type RepoRepository struct {
	client *repo.Client
	desc   repo.ResourceDescriptor
}

// NewRepoRepository creates a content-repository backed user repository.
func NewRepoRepository(client *repo.Client, space string) *RepoRepository {
	return &RepoRepository{
		client: client,
		desc: repo.ResourceDescriptor{
			Space:        space,
			Subpath:      "users",
			Schema:       "user",
			ResourceKind: "content",
		},
	}
}

// storedUser is the wire shape persisted in the repository payload. It keeps
// fields the public JSON representation hides (password hash, provider ids).
type storedUser struct {
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Contact     user.Contact    `json:"contact"`
	Password    string          `json:"password,omitempty"`
	AvatarURL   string          `json:"avatar_url,omitempty"`
	PushToken   string          `json:"push_token,omitempty"`
	Language    string          `json:"language,omitempty"`
	OAuthIDs    *storedOAuthIDs `json:"oauth_ids,omitempty"`
	Gender      string          `json:"gender,omitempty"`
	DateOfBirth string          `json:"date_of_birth,omitempty"`
}

type storedOAuthIDs struct {
	GoogleID    string `json:"google_id,omitempty"`
	FacebookID  string `json:"facebook_id,omitempty"`
	GithubID    string `json:"github_id,omitempty"`
	MicrosoftID string `json:"microsoft_id,omitempty"`
}

func toStored(u *user.User) storedUser {
	s := storedUser{
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Contact:     u.Contact,
		Password:    u.Password,
		AvatarURL:   u.AvatarURL,
		PushToken:   u.PushToken,
		Language:    u.Language,
		Gender:      u.Gender,
		DateOfBirth: u.DateOfBirth,
	}
	if u.OAuthIDs != nil {
		s.OAuthIDs = &storedOAuthIDs{
			GoogleID:    u.OAuthIDs.GoogleID,
			FacebookID:  u.OAuthIDs.FacebookID,
			GithubID:    u.OAuthIDs.GithubID,
			MicrosoftID: u.OAuthIDs.MicrosoftID,
		}
	}
	return s
}

func fromRecord(rec repo.Record) (*user.User, error) {
	payload, _ := rec.Attributes["payload"].(map[string]any)
	body, ok := payload["body"]
	if !ok {
		return nil, errx.New("user record has no payload body", errx.TypeExternal)
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, errx.Wrap(err, "decode user record", errx.TypeExternal)
	}
	var s storedUser
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errx.Wrap(err, "decode user record", errx.TypeExternal)
	}

	u := &user.User{
		Shortname:   rec.Shortname,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		Contact:     s.Contact,
		Password:    s.Password,
		AvatarURL:   s.AvatarURL,
		PushToken:   s.PushToken,
		Language:    s.Language,
		Gender:      s.Gender,
		DateOfBirth: s.DateOfBirth,
	}
	if s.OAuthIDs != nil {
		u.OAuthIDs = &user.OAuthIDs{
			GoogleID:    s.OAuthIDs.GoogleID,
			FacebookID:  s.OAuthIDs.FacebookID,
			GithubID:    s.OAuthIDs.GithubID,
			MicrosoftID: s.OAuthIDs.MicrosoftID,
		}
	}
	return u, nil
}

func (r *RepoRepository) searchOne(ctx context.Context, search string) (*user.User, error) {
	records, err := r.client.Search(ctx, r.desc, search, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return fromRecord(records[0])
}

// FindByChannel looks a user up by email or mobile. The search value uses the
// backslash escape, not the key-name transform.
func (r *RepoRepository) FindByChannel(ctx context.Context, kind iam.ChannelKind, value string) (*user.User, error) {
	field := "contact_mobile"
	if kind == iam.ChannelEmail {
		field = "contact_email"
	}
	return r.searchOne(ctx, fmt.Sprintf("@%s:%s", field, iam.EscapeSearch(value)))
}

// FindByProviderID looks a user up by a federated provider identifier.
func (r *RepoRepository) FindByProviderID(ctx context.Context, provider, providerID string) (*user.User, error) {
	return r.searchOne(ctx, fmt.Sprintf("@oauth_ids_%s_id:%s", provider, iam.EscapeSearch(providerID)))
}

// GetByShortname fetches a user by record shortname.
func (r *RepoRepository) GetByShortname(ctx context.Context, shortname string) (*user.User, error) {
	return r.searchOne(ctx, fmt.Sprintf("@shortname:%s", iam.EscapeSearch(shortname)))
}

func (r *RepoRepository) attributes(u *user.User) map[string]any {
	return map[string]any{
		"is_active": true,
		"payload": map[string]any{
			"content_type":     "json",
			"schema_shortname": r.desc.Schema,
			"body":             toStored(u),
		},
	}
}

// Create stores a new user record.
func (r *RepoRepository) Create(ctx context.Context, u *user.User) error {
	return r.client.Request(ctx, repo.RequestCreate, r.desc, u.Shortname, r.attributes(u))
}

// Update replaces an existing user record.
func (r *RepoRepository) Update(ctx context.Context, u *user.User) error {
	return r.client.Request(ctx, repo.RequestUpdate, r.desc, u.Shortname, r.attributes(u))
}
