package user

import (
	"context"

	"github.com/hayat-market/authgate/pkg/iam"
)

// Repository is the narrow interface to the external record store.
//
// Lookup methods return (nil, nil) when no record matches; an error always
// means the backend itself failed. Callers decide whether absence is a 4xx
// condition; the repository never does.
type Repository interface {
	FindByChannel(ctx context.Context, kind iam.ChannelKind, value string) (*User, error)
	FindByProviderID(ctx context.Context, provider, providerID string) (*User, error)
	GetByShortname(ctx context.Context, shortname string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
}
