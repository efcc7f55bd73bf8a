package keyval

import (
	"net/http"

	"github.com/hayat-market/authgate/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("KEYVAL")

var (
	// CodeStoreUnavailable covers every infrastructure failure of the store:
	// connection refused, timeout, protocol error. It is the only retryable
	// error class the store surfaces.
	CodeStoreUnavailable = ErrRegistry.Register("STORE_UNAVAILABLE", errx.TypeExternal, http.StatusServiceUnavailable, "Key/value store unavailable")
)

func ErrStoreUnavailable(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeStoreUnavailable, cause)
}
