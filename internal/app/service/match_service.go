// Package service provides application use cases.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"property-match-service/internal/domain"
)

// PropertyDetail is a single listing in both its normalized and result forms.
type PropertyDetail struct {
	Candidate domain.CandidateProperty `json:"candidate"`
	Result    domain.SearchResultItem  `json:"result"`
}

// MatchService runs the property match pipeline: fetch the candidate pool,
// normalize, filter with fallback, rank, paginate and project.
type MatchService struct {
	source         domain.PropertySource
	candidateLimit int
	pageSize       int
	mapType        domain.TypeMapper
	logger         *zap.Logger
}

// NewMatchService creates a new MatchService. candidateLimit is capped at
// domain.MaxCandidates.
func NewMatchService(source domain.PropertySource, candidateLimit, pageSize int, logger *zap.Logger) *MatchService {
	if candidateLimit <= 0 || candidateLimit > domain.MaxCandidates {
		candidateLimit = domain.MaxCandidates
	}
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	return &MatchService{
		source:         source,
		candidateLimit: candidateLimit,
		pageSize:       pageSize,
		mapType:        domain.NormalizePropertyType,
		logger:         logger,
	}
}

// WithTypeMapper replaces the property-type mapping used by the ranker.
func (s *MatchService) WithTypeMapper(m domain.TypeMapper) *MatchService {
	s.mapType = m
	return s
}

// PageSize returns the configured page size.
func (s *MatchService) PageSize() int {
	return s.pageSize
}

// Search returns one page of matches using the configured page size.
func (s *MatchService) Search(ctx context.Context, q domain.SearchQuery, page int) (domain.Page[domain.SearchResultItem], error) {
	return s.SearchPage(ctx, q, page, s.pageSize)
}

// SearchPage returns one page of matches. A query that is not ready yields an
// empty page without touching the source. A non-positive pageSize uses the
// configured one.
func (s *MatchService) SearchPage(ctx context.Context, q domain.SearchQuery, page, pageSize int) (domain.Page[domain.SearchResultItem], error) {
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	if !q.Ready() {
		return domain.EmptyPage[domain.SearchResultItem](page, pageSize), nil
	}

	start := time.Now()
	rows, err := s.source.FetchCandidates(ctx, s.candidateLimit)
	if err != nil {
		return domain.Page[domain.SearchResultItem]{}, fmt.Errorf("fetching candidates: %w", err)
	}

	pool, issues := domain.NormalizeCandidates(rows)
	for _, issue := range issues {
		s.logger.Debug("listing coerced", zap.Error(issue))
	}

	outcome := domain.Match(pool, q, s.mapType)
	result := outcome.ResultPage(page, pageSize)

	s.logger.Debug("match completed",
		zap.String("intent", string(q.Intent)),
		zap.String("state", q.State),
		zap.String("city", q.City),
		zap.Int("pool", len(pool)),
		zap.Int("total", result.Total),
		zap.Bool("relaxed", result.Relaxed),
		zap.Int("page", result.Page),
		zap.Duration("duration", time.Since(start)),
	)

	return result, nil
}

// GetProperty returns a single approved listing. Missing and unapproved
// listings both yield domain.ErrListingNotFound.
func (s *MatchService) GetProperty(ctx context.Context, id string) (*PropertyDetail, error) {
	raw, err := s.source.GetListing(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrListingNotFound) {
			s.logger.Error("get listing failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	c, perr := domain.ParseCandidate(raw)
	if perr != nil {
		s.logger.Debug("listing coerced", zap.Error(perr))
	}
	if !c.IsApproved() {
		return nil, domain.ErrListingNotFound
	}

	return &PropertyDetail{
		Candidate: c,
		Result:    domain.ToResultItem(c),
	}, nil
}
