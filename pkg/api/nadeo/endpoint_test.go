package nadeo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"github.com/trackpredict/backend/config"
)

type memoryCredentialStore struct {
	mutex       sync.Mutex
	credentials map[string]Credential
}

func newMemoryCredentialStore() *memoryCredentialStore {
	return &memoryCredentialStore{credentials: make(map[string]Credential)}
}

func (s *memoryCredentialStore) Get(ctx context.Context, audience string) (*Credential, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	credential, ok := s.credentials[audience]
	if !ok {
		return nil, nil
	}

	return &credential, nil
}

func (s *memoryCredentialStore) Upsert(ctx context.Context, credential *Credential) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.credentials[credential.Audience] = *credential
	return nil
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}).SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return token
}

func testConfigs(url string) config.NadeoConfigs {
	return config.NadeoConfigs{
		CoreURL:               url,
		AuthURL:               url,
		User:                  "server-account",
		Password:              "server-password",
		UserAgent:             "trackpredict-test",
		MinRequestInterval:    time.Millisecond,
		RequestTimeout:        time.Second,
		TokenExpirationMargin: time.Minute,
	}
}

func Test_Endpoint_GetMapRecords(t *testing.T) {
	accessToken := signedToken(t, time.Now().Add(time.Hour))

	authCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/authentication/token/basic":
			authCalls++
			user, password, ok := r.BasicAuth()
			require.True(t, ok)
			require.Equal(t, "server-account", user)
			require.Equal(t, "server-password", password)
			json.NewEncoder(w).Encode(map[string]string{"accessToken": accessToken})

		case "/v2/mapRecords/":
			require.Equal(t, "nadeo_v1 t="+accessToken, r.Header.Get("Authorization"))
			require.Equal(t, "map-1", r.URL.Query().Get("mapId"))
			require.Equal(t, "acc-1,acc-2", r.URL.Query().Get("accountIdList"))
			json.NewEncoder(w).Encode([]map[string]any{
				{
					"accountId":   "acc-1",
					"recordScore": map[string]any{"time": 91000},
					"timestamp":   "2024-03-01T10:00:00Z",
				},
				{
					"accountId":   "acc-2",
					"recordScore": map[string]any{"time": 89500},
					"timestamp":   "2024-03-02T18:30:00Z",
				},
			})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	store := newMemoryCredentialStore()
	endpoint := New(testConfigs(server.URL), store)

	records, err := endpoint.GetMapRecords(context.Background(), "map-1", []string{"acc-1", "acc-2"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "acc-1", records[0].PlayerGameID)
	require.EqualValues(t, 91000, records[0].Time)
	require.Equal(t, "acc-2", records[1].PlayerGameID)
	require.EqualValues(t, 89500, records[1].Time)

	// The refreshed credential must be persisted for the next process.
	stored, err := store.Get(context.Background(), AudienceCore)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, accessToken, stored.AccessToken)

	// A second call reuses the cached credential.
	_, err = endpoint.GetMapRecords(context.Background(), "map-1", []string{"acc-1", "acc-2"})
	require.NoError(t, err)
	require.Equal(t, 1, authCalls)
}

func Test_Endpoint_ReusesStoredCredential(t *testing.T) {
	accessToken := signedToken(t, time.Now().Add(time.Hour))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/authentication/token/basic" {
			t.Fatal("must not authenticate when a valid credential is stored")
		}
		json.NewEncoder(w).Encode([]map[string]any{})
	}))
	defer server.Close()

	store := newMemoryCredentialStore()
	require.NoError(t, store.Upsert(context.Background(), &Credential{
		Audience:    AudienceCore,
		AccessToken: accessToken,
		ExpiresAt:   time.Now().Add(time.Hour),
	}))

	endpoint := New(testConfigs(server.URL), store)
	records, err := endpoint.GetMapRecords(context.Background(), "map-1", []string{"acc-1"})
	require.NoError(t, err)
	require.Empty(t, records)
}

func Test_Endpoint_RefreshesExpiredCredential(t *testing.T) {
	freshToken := signedToken(t, time.Now().Add(time.Hour))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/authentication/token/basic" {
			json.NewEncoder(w).Encode(map[string]string{"accessToken": freshToken})
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{})
	}))
	defer server.Close()

	store := newMemoryCredentialStore()
	require.NoError(t, store.Upsert(context.Background(), &Credential{
		Audience:    AudienceCore,
		AccessToken: "stale",
		ExpiresAt:   time.Now().Add(-time.Hour),
	}))

	endpoint := New(testConfigs(server.URL), store)
	_, err := endpoint.GetMapRecords(context.Background(), "map-1", []string{"acc-1"})
	require.NoError(t, err)

	stored, err := store.Get(context.Background(), AudienceCore)
	require.NoError(t, err)
	require.Equal(t, freshToken, stored.AccessToken)
}

func Test_Endpoint_UnauthorizedDropsCachedCredential(t *testing.T) {
	accessToken := signedToken(t, time.Now().Add(time.Hour))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/authentication/token/basic" {
			json.NewEncoder(w).Encode(map[string]string{"accessToken": accessToken})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	endpoint := New(testConfigs(server.URL), newMemoryCredentialStore())
	_, err := endpoint.GetMapRecords(context.Background(), "map-1", []string{"acc-1"})
	require.Error(t, err)

	_, cached := endpoint.credentials.Load(AudienceCore)
	require.False(t, cached)
}
