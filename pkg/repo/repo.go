package repo

import (
	"net/http"

	"github.com/hayat-market/authgate/pkg/errx"
)

// ResourceDescriptor tells the generic client where and how a resource kind
// lives in the content repository. One descriptor value per kind replaces the
// subclass-per-resource pattern: the client code never branches on the kind.
type ResourceDescriptor struct {
	Space        string
	Subpath      string
	Schema       string
	ResourceKind string
}

// Record is one repository entry.
type Record struct {
	ResourceType string         `json:"resource_type"`
	Subpath      string         `json:"subpath"`
	Shortname    string         `json:"shortname"`
	Attributes   map[string]any `json:"attributes"`
}

// RequestType enumerates the mutations accepted by /managed/request.
type RequestType string

const (
	RequestCreate RequestType = "create"
	RequestUpdate RequestType = "update"
	RequestDelete RequestType = "delete"
)

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("REPO")

var (
	CodeUnavailable   = ErrRegistry.Register("UNAVAILABLE", errx.TypeExternal, http.StatusBadGateway, "Content repository unreachable")
	CodeRequestFailed = ErrRegistry.Register("REQUEST_FAILED", errx.TypeExternal, http.StatusBadGateway, "Content repository rejected the request")
	CodeAuthFailed    = ErrRegistry.Register("AUTH_FAILED", errx.TypeExternal, http.StatusBadGateway, "Content repository authentication failed")
)
