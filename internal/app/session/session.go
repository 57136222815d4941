// Package session implements the request controller that sits between a
// caller and a paged search: debounced input, cancellation of superseded
// requests, load-more append and explicit teardown.
package session

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"property-match-service/internal/domain"
)

// DefaultDebounce is the input debounce window used when none is configured.
const DefaultDebounce = 300 * time.Millisecond

var (
	// ErrDisposed is returned by every operation on a disposed session.
	ErrDisposed = errors.New("session disposed")

	// ErrSuperseded is returned to the caller whose request was replaced by a
	// newer one. The session state is left untouched.
	ErrSuperseded = errors.New("request superseded")
)

// State is the lifecycle state of the most recent request.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateCancelled
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateCancelled:
		return "cancelled"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Fetcher loads one page for a query. Implementations must honour ctx
// cancellation and short-circuit queries that are missing required fields.
type Fetcher[Q any, I any] func(ctx context.Context, q Q, page int) (domain.Page[I], error)

// Config tunes a session.
type Config struct {
	// Debounce is the quiet period after the last Input before a search runs.
	Debounce time.Duration

	// Timeout bounds a single fetch. Zero leaves it to the caller's context.
	Timeout time.Duration

	// ErrorMessage is the user-facing message set when a fetch fails.
	ErrorMessage string
}

// Snapshot is a copy of the observable session state.
type Snapshot[Q any, I any] struct {
	Query   Q      `json:"query"`
	Items   []I    `json:"items"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	HasMore bool   `json:"has_more"`
	Relaxed bool   `json:"relaxed,omitempty"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
	State   State  `json:"state"`
}

// Session owns the result slot for one consumer. Only the most recent
// non-superseded request may write to it.
type Session[Q any, I any] struct {
	fetch  Fetcher[Q, I]
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	mu         sync.Mutex
	query      Q
	hasQuery   bool
	items      []I
	total      int
	page       int
	hasMore    bool
	relaxed    bool
	loading    bool
	errMsg     string
	state      State
	generation uint64
	cancel     context.CancelFunc
	timer      *time.Timer
	timerSeq   uint64
	disposed   bool
	lastActive time.Time
}

// New creates an idle session around fetch.
func New[Q any, I any](fetch Fetcher[Q, I], cfg Config, logger *zap.Logger) *Session[Q, I] {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session[Q, I]{
		fetch:  fetch,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		items:  []I{},
		state:  StateIdle,
	}
	s.lastActive = s.now()
	return s
}

// Input schedules a search for q after the debounce window. A later Input,
// Search, Clear or Dispose stops the pending timer.
func (s *Session[Q, I]) Input(q Q) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return ErrDisposed
	}
	s.touch()
	s.stopTimer()

	seq := s.timerSeq
	s.timer = time.AfterFunc(s.cfg.Debounce, func() {
		s.fire(seq, q)
	})
	return nil
}

// fire runs a debounced search unless its timer was superseded.
func (s *Session[Q, I]) fire(seq uint64, q Q) {
	s.mu.Lock()
	current := seq == s.timerSeq && !s.disposed
	if current {
		s.timer = nil
	}
	s.mu.Unlock()

	if !current {
		return
	}

	if _, err := s.search(context.Background(), q, &seq); err != nil &&
		!errors.Is(err, ErrSuperseded) && !errors.Is(err, ErrDisposed) {
		s.logger.Debug("debounced search finished with error", zap.Error(err))
	}
}

// Search runs q immediately in replace mode, cancelling any in-flight request
// and pending debounce.
func (s *Session[Q, I]) Search(ctx context.Context, q Q) (Snapshot[Q, I], error) {
	return s.search(ctx, q, nil)
}

// search starts a replace-mode fetch. A non-nil seq marks a debounced search
// that is dropped if its timer was stopped after it fired.
func (s *Session[Q, I]) search(ctx context.Context, q Q, seq *uint64) (Snapshot[Q, I], error) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return Snapshot[Q, I]{}, ErrDisposed
	}
	if seq != nil && *seq != s.timerSeq {
		snap := s.snapshot()
		s.mu.Unlock()
		return snap, ErrSuperseded
	}
	s.stopTimer()
	s.errMsg = ""
	gen, reqCtx := s.begin(ctx)
	s.mu.Unlock()

	page, err := s.fetch(reqCtx, q, 1)
	return s.commit(gen, q, 1, page, err, false)
}

// LoadMore fetches the next page of the last successful query and appends
// it. It is a no-op while a request is in flight or when no further pages
// exist.
func (s *Session[Q, I]) LoadMore(ctx context.Context) (Snapshot[Q, I], error) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return Snapshot[Q, I]{}, ErrDisposed
	}
	if s.loading || !s.hasQuery || !s.hasMore {
		snap := s.snapshot()
		s.mu.Unlock()
		return snap, nil
	}
	q := s.query
	next := s.page + 1
	gen, reqCtx := s.begin(ctx)
	s.mu.Unlock()

	page, err := s.fetch(reqCtx, q, next)
	return s.commit(gen, q, next, page, err, true)
}

// Clear cancels pending work and empties the results.
func (s *Session[Q, I]) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return ErrDisposed
	}
	s.touch()
	s.stopTimer()
	s.abort()

	var zero Q
	s.query = zero
	s.hasQuery = false
	s.items = []I{}
	s.total = 0
	s.page = 0
	s.hasMore = false
	s.relaxed = false
	s.loading = false
	s.errMsg = ""
	s.state = StateIdle
	return nil
}

// Dispose stops the debounce timer, cancels the in-flight request and
// rejects any further calls. It is safe to call more than once.
func (s *Session[Q, I]) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}
	s.disposed = true
	s.stopTimer()
	s.abort()
	s.loading = false
}

// Snapshot returns a copy of the current state.
func (s *Session[Q, I]) Snapshot() Snapshot[Q, I] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Disposed reports whether Dispose has been called.
func (s *Session[Q, I]) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// LastActive is the time of the last caller interaction.
func (s *Session[Q, I]) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// begin supersedes the previous request and returns the new generation with
// its request context. Callers hold s.mu.
func (s *Session[Q, I]) begin(ctx context.Context) (uint64, context.Context) {
	s.touch()
	s.abort()

	var reqCtx context.Context
	var cancel context.CancelFunc
	if s.cfg.Timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
	} else {
		reqCtx, cancel = context.WithCancel(ctx)
	}

	s.cancel = cancel
	s.loading = true
	s.state = StateLoading
	return s.generation, reqCtx
}

// commit writes a completed fetch into the result slot if gen is still the
// current generation. The query is only recorded on success, so a failed or
// cancelled search leaves the previous query paired with its own pages.
func (s *Session[Q, I]) commit(gen uint64, q Q, pageNum int, page domain.Page[I], err error, appendMode bool) (Snapshot[Q, I], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return Snapshot[Q, I]{}, ErrDisposed
	}
	if gen != s.generation {
		s.logger.Debug("dropping superseded result", zap.Uint64("generation", gen))
		return s.snapshot(), ErrSuperseded
	}

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.loading = false

	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.state = StateCancelled
			return s.snapshot(), err
		}
		s.state = StateError
		s.errMsg = s.cfg.ErrorMessage
		s.logger.Error("search request failed",
			zap.Int("page", pageNum),
			zap.Bool("append", appendMode),
			zap.Error(err),
		)
		return s.snapshot(), err
	}

	items := page.Items
	if items == nil {
		items = []I{}
	}
	if appendMode {
		s.items = append(s.items, items...)
	} else {
		s.items = items
	}
	s.query = q
	s.hasQuery = true
	s.total = page.Total
	s.page = pageNum
	s.hasMore = page.HasMore
	s.relaxed = page.Relaxed
	s.errMsg = ""
	s.state = StateSuccess
	return s.snapshot(), nil
}

// abort cancels the in-flight request, if any, and invalidates its
// generation. Callers hold s.mu.
func (s *Session[Q, I]) abort() {
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// stopTimer cancels a pending debounced search. Callers hold s.mu.
func (s *Session[Q, I]) stopTimer() {
	s.timerSeq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session[Q, I]) touch() {
	s.lastActive = s.now()
}

func (s *Session[Q, I]) snapshot() Snapshot[Q, I] {
	return Snapshot[Q, I]{
		Query:   s.query,
		Items:   slices.Clone(s.items),
		Total:   s.total,
		Page:    s.page,
		HasMore: s.hasMore,
		Relaxed: s.relaxed,
		Loading: s.loading,
		Error:   s.errMsg,
		State:   s.state,
	}
}
