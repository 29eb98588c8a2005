package sqlc

import (
	"context"

	"github.com/sqlc-dev/pqtype"
)

type AnalyticsManager struct {
	queries Querier
}

func NewAnalyticsManager(queries Querier) *AnalyticsManager {
	return &AnalyticsManager{queries: queries}
}

func (a *AnalyticsManager) IncrementWrecksCreatedCount(ctx context.Context, serverIpNet pqtype.Inet) error {
	return a.queries.AnalyticsIncrementWrecksCreatedCount(ctx, serverIpNet)
}

func (a *AnalyticsManager) IncrementLootsValidatedCount(ctx context.Context, serverIpNet pqtype.Inet) error {
	return a.queries.AnalyticsIncrementLootsValidatedCount(ctx, serverIpNet)
}

func (a *AnalyticsManager) GetWrecksCreatedCount(ctx context.Context, serverIpNet pqtype.Inet) (int64, error) {
	return a.queries.AnalyticsGetWrecksCreatedCount(ctx, serverIpNet)
}

func (a *AnalyticsManager) GetLootsValidatedCount(ctx context.Context, serverIpNet pqtype.Inet) (int64, error) {
	return a.queries.AnalyticsGetLootsValidatedCount(ctx, serverIpNet)
}
