package domain

// MatchOutcome is the full ranked candidate list for a query.
type MatchOutcome struct {
	Ranked  []CandidateProperty
	Relaxed bool
}

// Match runs the filter stage and the ranker over a normalized pool.
func Match(pool []CandidateProperty, q SearchQuery, mapType TypeMapper) MatchOutcome {
	filtered := FilterCandidates(pool, q)
	return MatchOutcome{
		Ranked:  RankCandidates(filtered.Candidates, q, mapType),
		Relaxed: filtered.Relaxed,
	}
}

// ResultPage paginates the ranked list and projects the requested page.
func (o MatchOutcome) ResultPage(page, pageSize int) Page[SearchResultItem] {
	p := Paginate(o.Ranked, page, pageSize)
	return Page[SearchResultItem]{
		Items:    ToResultItems(p.Items),
		Total:    p.Total,
		Page:     p.Page,
		PageSize: p.PageSize,
		HasMore:  p.HasMore,
		Relaxed:  o.Relaxed,
	}
}
