package iam

import (
	"net/http"
	"strings"

	"github.com/hayat-market/authgate/pkg/errx"
)

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("IAM")

var (
	CodeUnauthorized = ErrRegistry.Register("UNAUTHORIZED", errx.TypeAuthorization, http.StatusUnauthorized, "Not authenticated")
	CodeInvalidToken = ErrRegistry.Register("INVALID_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid or expired token")
)

func ErrUnauthorized() *errx.Error { return ErrRegistry.New(CodeUnauthorized) }
func ErrInvalidToken() *errx.Error { return ErrRegistry.New(CodeInvalidToken) }

// ============================================================================
// Identity channels
// ============================================================================

// ChannelKind distinguishes the contact channels a user can prove control of.
type ChannelKind string

const (
	ChannelEmail  ChannelKind = "email"
	ChannelMobile ChannelKind = "mobile"
)

// Channel is one identity channel, optionally paired with the one-time code
// submitted for it. All request shapes normalize into this representation so
// the OTP manager and the authentication flow consume a single form.
type Channel struct {
	Kind  ChannelKind
	Value string
	OTP   string
}

// KeyName returns the channel value normalized for use inside store keys.
func (c Channel) KeyName() string { return KeyName(c.Value) }

// separators that appear in emails, MSISDNs and URLs and are unsafe either as
// key segments or unescaped inside repository search queries.
const separators = ".@:/- "

// KeyName replaces separator characters with underscores. This is the store-key
// transform; it is NOT the search-query escape below and the two must not be
// interchanged.
func KeyName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(separators, r) {
			b.WriteByte('_')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EscapeSearch backslash-prefixes separator characters so the value can be
// embedded verbatim in a repository search expression.
func EscapeSearch(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 2)
	for _, r := range s {
		if strings.ContainsRune(separators, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
