package otpsrv_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hayat-market/authgate/pkg/errx"
	"github.com/hayat-market/authgate/pkg/iam"
	"github.com/hayat-market/authgate/pkg/iam/otp"
	"github.com/hayat-market/authgate/pkg/iam/otp/otpsrv"
	"github.com/hayat-market/authgate/pkg/keyval/keyvalredis"
	"github.com/redis/go-redis/v9"
)

func newService(t *testing.T, cfg otpsrv.Config) (*otpsrv.Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	store := keyvalredis.NewStore(rdb, keyvalredis.Options{})
	return otpsrv.New(store, cfg), mr
}

func TestCreateValidateConsume(t *testing.T) {
	svc, _ := newService(t, otpsrv.Config{})
	ctx := context.Background()

	code, err := svc.Create(ctx, "u1@example.com", otp.PurposeLogin)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("code length = %d", len(code))
	}

	ok, err := svc.Validate(ctx, "u1@example.com", otp.PurposeLogin, code)
	if err != nil || !ok {
		t.Fatalf("Validate = (%v, %v)", ok, err)
	}
	// Validation is non-destructive.
	ok, _ = svc.Validate(ctx, "u1@example.com", otp.PurposeLogin, code)
	if !ok {
		t.Fatal("code gone after validation")
	}

	if err := svc.Consume(ctx, "u1@example.com", otp.PurposeLogin, code); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	err = svc.Consume(ctx, "u1@example.com", otp.PurposeLogin, code)
	if !errx.IsCode(err, otp.CodeExpiredOrConsumed) {
		t.Fatalf("second Consume = %v, want expired-or-consumed", err)
	}
}

func TestWrongCodeDoesNotConsume(t *testing.T) {
	svc, _ := newService(t, otpsrv.Config{})
	ctx := context.Background()

	code, _ := svc.Create(ctx, "u1", otp.PurposeLogin)

	err := svc.Consume(ctx, "u1", otp.PurposeLogin, "000000")
	if !errx.IsCode(err, otp.CodeExpiredOrConsumed) {
		t.Fatalf("wrong code = %v, want expired-or-consumed", err)
	}
	// The real code is still redeemable.
	if err := svc.Consume(ctx, "u1", otp.PurposeLogin, code); err != nil {
		t.Fatalf("real code burned by a wrong attempt: %v", err)
	}
}

func TestConsumeIsExactlyOnceUnderContention(t *testing.T) {
	svc, _ := newService(t, otpsrv.Config{})
	ctx := context.Background()

	code, _ := svc.Create(ctx, "u1", otp.PurposeLogin)

	const attempts = 20
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if err := svc.Consume(ctx, "u1", otp.PurposeLogin, code); err == nil {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("%d consumers won, want exactly 1", wins.Load())
	}
}

func TestCreateSupersedesLiveCode(t *testing.T) {
	svc, _ := newService(t, otpsrv.Config{ResendGap: 0})
	ctx := context.Background()

	first, _ := svc.Create(ctx, "u1", otp.PurposeRegister)
	second, err := svc.Create(ctx, "u1", otp.PurposeRegister)
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}

	if ok, _ := svc.Validate(ctx, "u1", otp.PurposeRegister, first); ok {
		t.Fatal("superseded code still validates")
	}
	if ok, _ := svc.Validate(ctx, "u1", otp.PurposeRegister, second); !ok {
		t.Fatal("fresh code does not validate")
	}
}

func TestResendGap(t *testing.T) {
	svc, mr := newService(t, otpsrv.Config{ResendGap: time.Minute})
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u1", otp.PurposeLogin); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := svc.Create(ctx, "u1", otp.PurposeLogin)
	if !errx.IsCode(err, otp.CodeTooManyRequests) {
		t.Fatalf("immediate re-issue = %v, want too-many-requests", err)
	}
	// A different pair is unaffected.
	if _, err := svc.Create(ctx, "u2", otp.PurposeLogin); err != nil {
		t.Fatalf("other owner blocked: %v", err)
	}

	mr.FastForward(61 * time.Second)
	if _, err := svc.Create(ctx, "u1", otp.PurposeLogin); err != nil {
		t.Fatalf("re-issue after gap: %v", err)
	}
}

func TestCodeExpires(t *testing.T) {
	svc, mr := newService(t, otpsrv.Config{TTL: 5 * time.Minute})
	ctx := context.Background()

	code, _ := svc.Create(ctx, "u1", otp.PurposeForgotPassword)
	mr.FastForward(6 * time.Minute)

	err := svc.Consume(ctx, "u1", otp.PurposeForgotPassword, code)
	if !errx.IsCode(err, otp.CodeExpiredOrConsumed) {
		t.Fatalf("expired code = %v, want expired-or-consumed", err)
	}
}

func TestPeekAndDrop(t *testing.T) {
	svc, _ := newService(t, otpsrv.Config{})
	ctx := context.Background()

	if _, found, err := svc.Peek(ctx, "u1", otp.PurposeLogin); err != nil || found {
		t.Fatalf("Peek on empty pair = (%v, %v)", found, err)
	}

	code, _ := svc.Create(ctx, "u1", otp.PurposeLogin)
	got, found, err := svc.Peek(ctx, "u1", otp.PurposeLogin)
	if err != nil || !found || got != code {
		t.Fatalf("Peek = (%q, %v, %v), want %q", got, found, err, code)
	}

	if err := svc.Drop(ctx, "u1", otp.PurposeLogin, code); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if ok, _ := svc.Validate(ctx, "u1", otp.PurposeLogin, code); ok {
		t.Fatal("dropped code still validates")
	}
}

func TestUnknownPurpose(t *testing.T) {
	svc, _ := newService(t, otpsrv.Config{})

	_, err := svc.Create(context.Background(), "u1", otp.Purpose("bogus"))
	if !errx.IsCode(err, otp.CodeUnknownPurpose) {
		t.Fatalf("bogus purpose = %v", err)
	}
}

func TestConsumeChannelsAllOrNothing(t *testing.T) {
	svc, _ := newService(t, otpsrv.Config{ResendGap: 0})
	ctx := context.Background()

	emailCode, _ := svc.Create(ctx, "a@b.c", otp.PurposeRegister)
	mobileCode, _ := svc.Create(ctx, "+964770", otp.PurposeRegister)

	// A wrong mobile code fails the unit and leaves the email code intact.
	err := svc.ConsumeChannels(ctx, otp.PurposeRegister,
		iam.Channel{Kind: iam.ChannelEmail, Value: "a@b.c", OTP: emailCode},
		iam.Channel{Kind: iam.ChannelMobile, Value: "+964770", OTP: "000000"},
	)
	if !errx.IsCode(err, otp.CodeExpiredOrConsumed) {
		t.Fatalf("mixed channels = %v, want expired-or-consumed", err)
	}
	if ok, _ := svc.Validate(ctx, "a@b.c", otp.PurposeRegister, emailCode); !ok {
		t.Fatal("email code burned by a failed two-channel attempt")
	}

	// The retry with both correct codes redeems the unit.
	err = svc.ConsumeChannels(ctx, otp.PurposeRegister,
		iam.Channel{Kind: iam.ChannelEmail, Value: "a@b.c", OTP: emailCode},
		iam.Channel{Kind: iam.ChannelMobile, Value: "+964770", OTP: mobileCode},
	)
	if err != nil {
		t.Fatalf("retry with correct codes: %v", err)
	}
	if ok, _ := svc.Validate(ctx, "a@b.c", otp.PurposeRegister, emailCode); ok {
		t.Fatal("email code survived consumption")
	}
}
