package keyvalredis_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hayat-market/authgate/pkg/keyval"
	"github.com/hayat-market/authgate/pkg/keyval/keyvalredis"
	"github.com/redis/go-redis/v9"
)

func newStore(t *testing.T) (keyval.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return keyvalredis.NewStore(rdb, keyvalredis.Options{}), mr
}

func TestSetGet(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, found, err := store.Get(ctx, "k")
	if err != nil || !found || got != "v" {
		t.Fatalf("Get = (%q, %v, %v)", got, found, err)
	}
}

func TestGetAbsentIsNotAnError(t *testing.T) {
	store, _ := newStore(t)

	got, found, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("absent key must not error: %v", err)
	}
	if found || got != "" {
		t.Fatalf("Get = (%q, %v), want absent", got, found)
	}
}

func TestSetNX(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	ok, err := store.SetNX(ctx, "k", "first", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first SetNX = (%v, %v)", ok, err)
	}
	ok, err = store.SetNX(ctx, "k", "second", time.Minute)
	if err != nil {
		t.Fatalf("second SetNX: %v", err)
	}
	if ok {
		t.Fatal("second SetNX succeeded on a live key")
	}
	got, _, _ := store.Get(ctx, "k")
	if got != "first" {
		t.Fatalf("value overwritten: %q", got)
	}
}

func TestGetDelConsumesExactlyOnce(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, found, err := store.GetDel(ctx, "k")
	if err != nil || !found || got != "v" {
		t.Fatalf("first GetDel = (%q, %v, %v)", got, found, err)
	}
	_, found, err = store.GetDel(ctx, "k")
	if err != nil {
		t.Fatalf("second GetDel: %v", err)
	}
	if found {
		t.Fatal("second GetDel still found the key")
	}
}

func TestDelete(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	store.Set(ctx, "k", "v", time.Minute)
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := store.Get(ctx, "k"); found {
		t.Fatal("key survived Delete")
	}
	// Deleting an absent key is a no-op, not an error.
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete absent: %v", err)
	}
}

func TestScanMatchesPrefixOnly(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	store.Set(ctx, "otp:u1:login:111", "1", time.Minute)
	store.Set(ctx, "otp:u1:login:222", "1", time.Minute)
	store.Set(ctx, "otp:u1:register:333", "1", time.Minute)
	store.Set(ctx, "otp:u2:login:444", "1", time.Minute)

	keys, err := store.Scan(ctx, "otp:u1:login:")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	sort.Strings(keys)
	want := []string{"otp:u1:login:111", "otp:u1:login:222"}
	if len(keys) != len(want) || keys[0] != want[0] || keys[1] != want[1] {
		t.Fatalf("Scan = %v, want %v", keys, want)
	}
}

func TestTTLExpiry(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "k", "v", 5*time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(6 * time.Second)

	if _, found, _ := store.Get(ctx, "k"); found {
		t.Fatal("key survived its TTL")
	}
}
