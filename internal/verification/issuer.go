// Package verification issues single-use, time-boxed tokens for the
// join gate. Redemption happens on the club website; the bot only
// creates the record and hands the member a link.
package verification

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"campuskeeper/internal/storage"
)

var ErrStoreUnavailable = errors.New("verification store not configured")

const tokenBytes = 32

type TokenStore interface {
	InsertVerificationToken(ctx context.Context, token storage.VerificationToken) error
}

type Issuer struct {
	store   TokenStore
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

func NewIssuer(store TokenStore, baseURL string, ttl time.Duration) *Issuer {
	return &Issuer{store: store, baseURL: baseURL, ttl: ttl, now: time.Now}
}

// Enabled reports whether a backing store was configured.
func (i *Issuer) Enabled() bool {
	return i.store != nil
}

// Issue creates a fresh token valid until now+TTL, records it, and
// returns the verification URL. Each call issues an independent token;
// a member may hold several outstanding tokens at once.
func (i *Issuer) Issue(ctx context.Context, userID, guildID string) (string, error) {
	if i.store == nil {
		return "", ErrStoreUnavailable
	}

	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	record := storage.VerificationToken{
		UserID:    userID,
		GuildID:   guildID,
		Token:     token,
		ExpiresAt: i.now().UTC().Add(i.ttl),
	}
	if err := i.store.InsertVerificationToken(ctx, record); err != nil {
		return "", fmt.Errorf("record verification token: %w", err)
	}

	return i.baseURL + "?token=" + token, nil
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
