package ssosrv

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/hayat-market/authgate/pkg/errx"
	"github.com/hayat-market/authgate/pkg/iam"
	"github.com/hayat-market/authgate/pkg/iam/auth"
	"github.com/hayat-market/authgate/pkg/iam/sso"
	"github.com/hayat-market/authgate/pkg/iam/user"
	"github.com/hayat-market/authgate/pkg/kernel"
)

// Service reconciles federated identities with local user records.
type Service struct {
	users   user.Repository
	fetcher sso.ProfileFetcher
	audit   auth.AuditService
}

// New creates the reconciliation service.
func New(users user.Repository, fetcher sso.ProfileFetcher, audit auth.AuditService) *Service {
	return &Service{users: users, fetcher: fetcher, audit: audit}
}

// ResolveOrCreate turns a provider access token into a local user record.
//
// Resolution order: a user already carrying this provider id wins and is
// returned untouched, so repeated federated logins never overwrite locally
// edited profile fields. Otherwise a user with the same verified email gets
// the provider id attached (account linking). Only when neither exists is a
// fresh record created, with the email pre-verified and no password.
func (s *Service) ResolveOrCreate(ctx context.Context, provider string, accessToken string) (*user.User, error) {
	profile, err := s.fetcher.Fetch(ctx, provider, accessToken)
	if err != nil {
		return nil, err
	}
	if profile.ID == "" || profile.Email == "" {
		return nil, sso.ErrInvalidProviderData().WithDetail("provider", provider)
	}

	u, err := s.users.FindByProviderID(ctx, provider, profile.ID)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	u, err = s.users.FindByChannel(ctx, iam.ChannelEmail, profile.Email)
	if err != nil {
		return nil, err
	}
	if u != nil {
		if u.OAuthIDs == nil {
			u.OAuthIDs = &user.OAuthIDs{}
		}
		u.OAuthIDs.SetProvider(provider, profile.ID)
		if err := s.users.Update(ctx, u); err != nil {
			return nil, err
		}
		s.audit.LogAccountLinked(ctx, kernel.UserID(u.Shortname), provider)
		return u, nil
	}

	return s.create(ctx, provider, profile)
}

func (s *Service) create(ctx context.Context, provider string, profile *sso.Profile) (*user.User, error) {
	u := &user.User{
		Shortname: shortnameFor(profile.Email),
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Contact: user.Contact{
			Email:         profile.Email,
			EmailVerified: true,
		},
		OAuthIDs: &user.OAuthIDs{},
	}
	u.OAuthIDs.SetProvider(provider, profile.ID)

	err := s.users.Create(ctx, u)
	if errx.IsCode(err, user.CodeAlreadyExists) {
		// Shortname taken by an unrelated account; retry once with a suffix.
		u.Shortname = u.Shortname + "_" + uuid.NewString()[:8]
		err = s.users.Create(ctx, u)
	}
	if err != nil {
		return nil, err
	}
	s.audit.LogAccountCreated(ctx, kernel.UserID(u.Shortname), provider, "")
	return u, nil
}

// shortnameFor derives a record shortname from the email local part.
func shortnameFor(email string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}
	return iam.KeyName(local)
}
