package dto

import (
	"property-match-service/internal/app/service"
	"property-match-service/internal/domain"
)

// PaginationMeta holds pagination metadata.
type PaginationMeta struct {
	Total    int  `json:"total"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasMore  bool `json:"has_more"`
}

// PageResponse is one page of results.
type PageResponse[T any] struct {
	Items      []T            `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
	Relaxed    bool           `json:"relaxed,omitempty"`
}

// FromPage converts a domain.Page to PageResponse.
func FromPage[T any](p domain.Page[T]) PageResponse[T] {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return PageResponse[T]{
		Items: items,
		Pagination: PaginationMeta{
			Total:    p.Total,
			Page:     p.Page,
			PageSize: p.PageSize,
			HasMore:  p.HasMore,
		},
		Relaxed: p.Relaxed,
	}
}

// SessionCreatedResponse is returned when a session is opened.
type SessionCreatedResponse struct {
	ID string `json:"id"`
}

// SyncResultResponse represents the response for a sync operation.
type SyncResultResponse struct {
	Feed     string `json:"feed"`
	Count    int    `json:"count"`
	Skipped  int    `json:"skipped"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// FromSyncResult converts a single service.SyncResult.
func FromSyncResult(r service.SyncResult) SyncResultResponse {
	resp := SyncResultResponse{
		Feed:     r.Feed,
		Count:    r.Count,
		Skipped:  r.Skipped,
		Duration: r.Duration.String(),
	}
	if r.Error != nil {
		resp.Error = r.Error.Error()
	}
	return resp
}

// SyncResponse represents the response for sync all operation.
type SyncResponse struct {
	Results []SyncResultResponse `json:"results"`
	Summary SyncSummary          `json:"summary"`
}

// SyncSummary holds summary of sync operation.
type SyncSummary struct {
	TotalSynced int `json:"total_synced"`
	FeedsOK     int `json:"feeds_ok"`
	FeedsFail   int `json:"feeds_fail"`
}

// FromSyncResults converts service.SyncResult slice to SyncResponse.
func FromSyncResults(results []service.SyncResult) SyncResponse {
	resp := SyncResponse{
		Results: make([]SyncResultResponse, len(results)),
	}

	for i, r := range results {
		if r.Error != nil {
			resp.Summary.FeedsFail++
		} else {
			resp.Summary.TotalSynced += r.Count
			resp.Summary.FeedsOK++
		}
		resp.Results[i] = FromSyncResult(r)
	}

	return resp
}

// FeedStatus reports a feed and its reachability.
type FeedStatus struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// FeedsResponse lists the registered feeds.
type FeedsResponse struct {
	Feeds []FeedStatus `json:"feeds"`
}

// FromFeedHealth builds FeedsResponse in registration order.
func FromFeedHealth(names []string, health map[string]error) FeedsResponse {
	resp := FeedsResponse{Feeds: make([]FeedStatus, len(names))}
	for i, name := range names {
		status := FeedStatus{Name: name, Healthy: true}
		if err := health[name]; err != nil {
			status.Healthy = false
			status.Error = err.Error()
		}
		resp.Feeds[i] = status
	}
	return resp
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}
