package api

import (
	"context"
	"time"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

// ChainQuerier is the live chain state the API reads.
type ChainQuerier interface {
	Vault(ctx context.Context, id uint64) (*types.QueryVaultResponse, error)
	Performance(ctx context.Context, id uint64) (*types.QueryDcaPlusPerformanceResponse, error)
	InFlightExecutions(ctx context.Context) ([]types.ExecutionCache, error)
	BlockTime() time.Time
}

// QueryResponse is the envelope of every successful response. LastFetched
// is the block time the data was read at, or the time it was mirrored for
// stored data.
type QueryResponse struct {
	Data        any       `json:"data"`
	LastFetched time.Time `json:"last_fetched"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
