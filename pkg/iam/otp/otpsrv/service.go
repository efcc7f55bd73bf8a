package otpsrv

import (
	"context"
	"time"

	"github.com/hayat-market/authgate/pkg/errx"
	"github.com/hayat-market/authgate/pkg/iam"
	"github.com/hayat-market/authgate/pkg/iam/otp"
	"github.com/hayat-market/authgate/pkg/keyval"
)

// Config tunes code issuance.
type Config struct {
	TTL        time.Duration
	CodeLength int
	// ResendGap blocks re-issuance for the same (owner, purpose) pair. Zero
	// disables the limit.
	ResendGap time.Duration
}

// Service manages one-time codes on top of the TTL key/value store. At most
// one redeemable code exists per (owner, purpose) pair, and consumption is
// atomic: of N concurrent attempts with the correct code, exactly one wins.
type Service struct {
	store keyval.Store
	cfg   Config
}

// New creates an OTP service.
func New(store keyval.Store, cfg Config) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = 6
	}
	return &Service{store: store, cfg: cfg}
}

// Create issues a fresh code for the pair, superseding any live one. Expiry
// is enforced by the store TTL; nothing re-checks it in application code.
func (s *Service) Create(ctx context.Context, owner string, purpose otp.Purpose) (string, error) {
	if !purpose.Valid() {
		return "", otp.ErrUnknownPurpose().WithDetail("purpose", string(purpose))
	}

	if s.cfg.ResendGap > 0 {
		fresh, err := s.store.SetNX(ctx, otp.RequestKey(owner, purpose), "1", s.cfg.ResendGap)
		if err != nil {
			return "", err
		}
		if !fresh {
			return "", otp.ErrTooManyRequests().WithDetail("retry_after", s.cfg.ResendGap.String())
		}
	}

	code, err := otp.GenerateCode(s.cfg.CodeLength)
	if err != nil {
		return "", errx.Wrap(err, "failed to generate OTP code", errx.TypeInternal)
	}

	// Supersede: the pair holds at most one redeemable code.
	stale, err := s.store.Scan(ctx, otp.PairPrefix(owner, purpose))
	if err != nil {
		return "", err
	}
	for _, key := range stale {
		if err := s.store.Delete(ctx, key); err != nil {
			return "", err
		}
	}

	if err := s.store.Set(ctx, otp.Key(owner, purpose, code), "1", s.cfg.TTL); err != nil {
		return "", err
	}
	return code, nil
}

// Validate checks a submitted code without consuming it.
func (s *Service) Validate(ctx context.Context, owner string, purpose otp.Purpose, code string) (bool, error) {
	if code == "" {
		return false, nil
	}
	_, found, err := s.store.Get(ctx, otp.Key(owner, purpose, code))
	if err != nil {
		return false, err
	}
	return found, nil
}

// Consume redeems a submitted code exactly once. The store-level get-and-delete
// totally orders concurrent attempts on the same code: one caller sees the key,
// everyone else gets ErrExpiredOrConsumed.
func (s *Service) Consume(ctx context.Context, owner string, purpose otp.Purpose, code string) error {
	if code == "" {
		return otp.ErrExpiredOrConsumed()
	}
	_, found, err := s.store.GetDel(ctx, otp.Key(owner, purpose, code))
	if err != nil {
		return err
	}
	if !found {
		return otp.ErrExpiredOrConsumed()
	}
	return nil
}

// Peek returns the live code for the pair without consuming it, if any.
func (s *Service) Peek(ctx context.Context, owner string, purpose otp.Purpose) (string, bool, error) {
	keys, err := s.store.Scan(ctx, otp.PairPrefix(owner, purpose))
	if err != nil {
		return "", false, err
	}
	if len(keys) == 0 {
		return "", false, nil
	}
	return otp.CodeFromKey(keys[0]), true, nil
}

// Drop removes a specific code without redeeming it.
func (s *Service) Drop(ctx context.Context, owner string, purpose otp.Purpose, code string) error {
	return s.store.Delete(ctx, otp.Key(owner, purpose, code))
}

// ConsumeChannels redeems the codes of several channels as a unit: every code
// is validated non-destructively first, and only when all of them pass is any
// of them consumed. A failed validation therefore leaves every submitted code
// intact for a retry, instead of burning one side of a two-channel request.
func (s *Service) ConsumeChannels(ctx context.Context, purpose otp.Purpose, channels ...iam.Channel) error {
	for _, ch := range channels {
		ok, err := s.Validate(ctx, ch.Value, purpose, ch.OTP)
		if err != nil {
			return err
		}
		if !ok {
			return otp.ErrExpiredOrConsumed().WithDetail("channel", string(ch.Kind))
		}
	}
	for _, ch := range channels {
		// A lost race here means another request consumed the code between
		// the validate and this point; the whole unit still fails.
		if err := s.Consume(ctx, ch.Value, purpose, ch.OTP); err != nil {
			return err
		}
	}
	return nil
}
