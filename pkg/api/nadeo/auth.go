package nadeo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/trackpredict/backend/pkg/api"
)

// Credential is a long-lived access token for one token audience.
type Credential struct {
	Audience    string
	AccessToken string
	ExpiresAt   time.Time
}

// CredentialStore persists credentials across restarts. Get returns
// (nil, nil) when no credential exists for the audience.
type CredentialStore interface {
	Get(ctx context.Context, audience string) (*Credential, error)
	Upsert(ctx context.Context, credential *Credential) error
}

func (c Credential) usableAt(at time.Time, margin time.Duration) bool {
	return at.Before(c.ExpiresAt.Add(-margin))
}

// credential returns a usable access token for the audience, looking at the
// in-process cache first, then the store, refreshing upstream as a last
// resort.
func (e *Endpoint) credential(ctx context.Context, audience string) (string, error) {
	now := time.Now()

	if cached, ok := e.credentials.Load(audience); ok {
		if cached.usableAt(now, e.cfg.TokenExpirationMargin) {
			return cached.AccessToken, nil
		}
	}

	stored, err := e.store.Get(ctx, audience)
	if err != nil {
		return "", err
	}

	if stored != nil && stored.usableAt(now, e.cfg.TokenExpirationMargin) {
		e.credentials.Store(audience, *stored)
		return stored.AccessToken, nil
	}

	return e.refresh(ctx, audience)
}

func (e *Endpoint) refresh(ctx context.Context, audience string) (string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()

	resp, err := e.apiGenerator.New(e.cfg.AuthURL, "/v2/authentication/token/basic").
		Header("User-Agent", e.cfg.UserAgent).
		Body(api.JSON{"audience": audience}).
		POST(callCtx, api.BasicAuth(e.cfg.User, e.cfg.Password))
	if err != nil {
		return "", err
	}

	if resp.Code != 200 {
		return "", fmt.Errorf("authentication failed with status %d", resp.Code)
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return "", errors.New("invalid authentication response")
	}

	token, err := body.GetString("accessToken")
	if err != nil {
		return "", err
	}

	expiresAt, err := tokenExpiry(token)
	if err != nil {
		return "", err
	}

	credential := Credential{
		Audience:    audience,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}

	e.credentials.Store(audience, credential)
	if err := e.store.Upsert(ctx, &credential); err != nil {
		return "", err
	}

	return token, nil
}

// tokenExpiry reads the expiry claim out of the access token. The token is
// not verified here: the signing key belongs to the upstream service, the
// claim is only used to schedule refreshes.
func tokenExpiry(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, err
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("access token carries no expiry")
	}

	return claims.ExpiresAt.Time, nil
}
