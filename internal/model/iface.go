package model

import "context"

// FeedSource provides the two polled backend feeds.
type FeedSource interface {
	FetchAlerts(ctx context.Context) ([]AlertPayload, error)
	FetchStats(ctx context.Context) (StatsPayload, error)
}
