package verification

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"campuskeeper/internal/storage"
)

type fakeStore struct {
	inserted []storage.VerificationToken
	fail     error
}

func (f *fakeStore) InsertVerificationToken(ctx context.Context, token storage.VerificationToken) error {
	if f.fail != nil {
		return f.fail
	}
	f.inserted = append(f.inserted, token)
	return nil
}

func TestIssueWritesRecordAndBuildsURL(t *testing.T) {
	store := &fakeStore{}
	issuer := NewIssuer(store, "https://example.org/verify", 15*time.Minute)
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issued }

	url, err := issuer.Issue(context.Background(), "u1", "g1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !strings.HasPrefix(url, "https://example.org/verify?token=") {
		t.Fatalf("unexpected url: %q", url)
	}

	if len(store.inserted) != 1 {
		t.Fatalf("expected one record, got %d", len(store.inserted))
	}
	record := store.inserted[0]
	if record.UserID != "u1" || record.GuildID != "g1" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if !record.ExpiresAt.Equal(issued.Add(15 * time.Minute)) {
		t.Fatalf("expiry not exactly TTL after issuance: %v", record.ExpiresAt)
	}
	if record.Token != strings.TrimPrefix(url, "https://example.org/verify?token=") {
		t.Fatalf("url token does not match stored token")
	}
}

func TestIssueTokensAreIndependent(t *testing.T) {
	store := &fakeStore{}
	issuer := NewIssuer(store, "https://example.org/verify", 15*time.Minute)

	first, err := issuer.Issue(context.Background(), "u1", "g1")
	if err != nil {
		t.Fatalf("first issue: %v", err)
	}
	second, err := issuer.Issue(context.Background(), "u1", "g1")
	if err != nil {
		t.Fatalf("second issue: %v", err)
	}
	if first == second {
		t.Fatalf("two issuances produced the same token")
	}
	if len(store.inserted) != 2 {
		t.Fatalf("expected two records, got %d", len(store.inserted))
	}
}

func TestIssueTokenEntropy(t *testing.T) {
	store := &fakeStore{}
	issuer := NewIssuer(store, "https://example.org/verify", time.Minute)

	if _, err := issuer.Issue(context.Background(), "u1", "g1"); err != nil {
		t.Fatalf("issue: %v", err)
	}
	// 32 random bytes -> 43 chars of unpadded base64
	if got := len(store.inserted[0].Token); got != 43 {
		t.Fatalf("expected 43-char token, got %d", got)
	}
}

func TestIssueWithoutStore(t *testing.T) {
	issuer := NewIssuer(nil, "https://example.org/verify", time.Minute)
	if _, err := issuer.Issue(context.Background(), "u1", "g1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if issuer.Enabled() {
		t.Fatalf("issuer should report disabled")
	}
}

func TestIssueStoreWriteFailure(t *testing.T) {
	store := &fakeStore{fail: errors.New("connection refused")}
	issuer := NewIssuer(store, "https://example.org/verify", time.Minute)

	url, err := issuer.Issue(context.Background(), "u1", "g1")
	if err == nil {
		t.Fatalf("expected store error")
	}
	if url != "" {
		t.Fatalf("no url should be returned on write failure")
	}
}
