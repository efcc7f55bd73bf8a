package otp

import (
	"net/http"

	"github.com/hayat-market/authgate/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("OTP")

var (
	// CodeExpiredOrConsumed deliberately covers never-issued, already-consumed
	// and TTL-lapsed codes: callers must not be able to tell them apart.
	CodeExpiredOrConsumed = ErrRegistry.Register("EXPIRED_OR_CONSUMED", errx.TypeValidation, http.StatusBadRequest, "Invalid or expired OTP")
	CodeTooManyRequests   = ErrRegistry.Register("TOO_MANY_REQUESTS", errx.TypeBusiness, http.StatusTooManyRequests, "Too many OTP requests")
	CodeUnknownPurpose    = ErrRegistry.Register("UNKNOWN_PURPOSE", errx.TypeValidation, http.StatusBadRequest, "Unknown OTP purpose")
)

func ErrExpiredOrConsumed() *errx.Error { return ErrRegistry.New(CodeExpiredOrConsumed) }
func ErrTooManyRequests() *errx.Error   { return ErrRegistry.New(CodeTooManyRequests) }
func ErrUnknownPurpose() *errx.Error    { return ErrRegistry.New(CodeUnknownPurpose) }
