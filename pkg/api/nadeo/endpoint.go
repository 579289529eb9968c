package nadeo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync"
	"github.com/trackpredict/backend/config"
	"github.com/trackpredict/backend/pkg/api"
	"github.com/trackpredict/backend/pkg/ratelimit"
)

// AudienceCore is the token audience of the core services, which serve map
// records.
const AudienceCore = "NadeoServices"

const timestampLayout = time.RFC3339

// Record is one map record as returned by the core services.
type Record struct {
	PlayerGameID string
	Time         int64
	AchievedAt   time.Time
}

// Endpoint talks to the Nadeo web services. All outbound calls share one
// limiter, so concurrent callers queue instead of exceeding the allowed
// request spacing.
type Endpoint struct {
	cfg          config.NadeoConfigs
	store        CredentialStore
	limiter      *ratelimit.Limiter
	apiGenerator api.Generator
	credentials  *xsync.MapOf[string, Credential]
}

func New(cfg config.NadeoConfigs, store CredentialStore) *Endpoint {
	return &Endpoint{
		cfg:          cfg,
		store:        store,
		limiter:      ratelimit.New(cfg.MinRequestInterval),
		apiGenerator: api.NewGenerator(),
		credentials:  xsync.NewMapOf[Credential](),
	}
}

// GetMapRecords performs one batched records lookup for all given accounts on
// a single map.
func (e *Endpoint) GetMapRecords(
	ctx context.Context, mapGameID string, accountGameIDs []string,
) ([]Record, error) {
	if len(accountGameIDs) == 0 {
		return nil, nil
	}

	token, err := e.credential(ctx, AudienceCore)
	if err != nil {
		return nil, err
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()

	resp, err := e.apiGenerator.New(e.cfg.CoreURL, "/v2/mapRecords/").
		Header("User-Agent", e.cfg.UserAgent).
		Query(api.Parameter{
			"accountIdList": strings.Join(accountGameIDs, ","),
			"mapId":         mapGameID,
		}).
		GET(callCtx, api.Authorization("nadeo_v1", "t="+token))
	if err != nil {
		return nil, err
	}

	if resp.Code == 401 {
		// The stored token was revoked upstream. Drop it so the next call
		// refreshes.
		e.credentials.Delete(AudienceCore)
		return nil, errors.New("records call was rejected as unauthorized")
	}

	if resp.Code != 200 {
		return nil, fmt.Errorf("records call failed with status %d", resp.Code)
	}

	array, ok := resp.Body.(api.Array)
	if !ok {
		return nil, errors.New("invalid records response")
	}

	records := make([]Record, 0, len(array))
	for _, obj := range array {
		accountID, err := obj.GetString("accountId")
		if err != nil {
			return nil, err
		}

		score, err := obj.GetInt("recordScore.time")
		if err != nil {
			return nil, err
		}

		rawTimestamp, err := obj.GetString("timestamp")
		if err != nil {
			return nil, err
		}

		achievedAt, err := time.Parse(timestampLayout, rawTimestamp)
		if err != nil {
			return nil, fmt.Errorf("invalid record timestamp: %w", err)
		}

		records = append(records, Record{
			PlayerGameID: accountID,
			Time:         int64(score),
			AchievedAt:   achievedAt,
		})
	}

	return records, nil
}
