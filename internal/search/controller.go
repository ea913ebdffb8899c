// Package search runs parameter searches: it proposes bindings through
// a sampling policy, evaluates them on validation windows through the
// simulator, scores them and records every trial.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"alpha-search-lab/internal/domain"
	"alpha-search-lab/internal/idhash"
	"alpha-search-lab/internal/objective"
	"alpha-search-lab/internal/observability"
	"alpha-search-lab/internal/simulate"
	"alpha-search-lab/internal/split"
	"alpha-search-lab/internal/storage"
	"alpha-search-lab/internal/strategy"
)

// Controller owns one search run from first proposal to terminal
// status. All mutable run state lives behind a single mutex; workers
// only evaluate and report back.
type Controller struct {
	cfg     Config
	strat   strategy.Strategy
	series  *domain.PriceSeries
	windows []domain.ValidationWindow
	sim     *simulate.Simulator
	obj     objective.Objective
	sampler Sampler

	runStore   storage.RunStore
	trialStore storage.TrialStore
	logger     zerolog.Logger
	metrics    *observability.Metrics

	mu         sync.Mutex
	run        *domain.SearchRun
	started    bool
	finalized  bool
	deadlineAt time.Time
	dispatched int
	nextSeq    int64
	visited    map[string]struct{}
	trials     []*domain.TrialResult
	vectors    map[int64]objective.Vector
	best       *domain.TrialResult
	noImprove  int
	converged  bool
	exhausted  bool
	abortErr   error
	storeErrs  []string
}

// Options for creating a Controller.
type Options struct {
	Config Config

	// Series is the full price series; the controller slices windows
	// out of it.
	Series *domain.PriceSeries

	// Stores are optional. A nil store disables persistence of the
	// corresponding records; run state is always kept in memory.
	RunStore   storage.RunStore
	TrialStore storage.TrialStore

	Logger  zerolog.Logger
	Metrics *observability.Metrics
}

// New validates the whole run specification and builds a Controller.
// Malformed strategy spaces, split configs or sampler names are
// reported here, before any trial executes.
func New(opts Options) (*Controller, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	strat, err := strategy.FromName(cfg.Strategy)
	if err != nil {
		return nil, fmt.Errorf("resolve strategy: %w", err)
	}
	space := strat.Space()
	if err := space.Validate(); err != nil {
		return nil, fmt.Errorf("strategy %s: %w: %v", strat.Name(), ErrMalformedSpec, err)
	}

	if opts.Series == nil {
		return nil, fmt.Errorf("price series is required: %w", ErrInvalidConfig)
	}
	windows, err := split.Split(opts.Series, cfg.Split)
	if err != nil {
		return nil, fmt.Errorf("split series: %w", err)
	}
	if cfg.Aggregation == objective.AggregateWeighted && len(cfg.WindowWeights) != len(windows) {
		return nil, fmt.Errorf("%d window weights for %d windows: %w",
			len(cfg.WindowWeights), len(windows), ErrInvalidConfig)
	}

	obj, err := objective.FromName(cfg.Objective)
	if err != nil {
		return nil, fmt.Errorf("resolve objective: %w", err)
	}

	samplerName := cfg.Sampler
	if samplerName == "" {
		samplerName = SamplerRandom
	}
	sampler, err := NewSampler(samplerName, space, cfg.Seed, cfg.GridPoints)
	if err != nil {
		return nil, fmt.Errorf("resolve sampler: %w", err)
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.DefaultMetrics
	}

	run := &domain.SearchRun{
		RunID:     uuid.NewString(),
		Strategy:  strat.Name(),
		Symbol:    cfg.Symbol,
		Seed:      cfg.Seed,
		Sampler:   sampler.Name(),
		Budget:    cfg.MaxTrials,
		Status:    domain.RunStatusRunning,
		BestScore: objective.SentinelScore,
	}

	return &Controller{
		cfg:     cfg,
		strat:   strat,
		series:  opts.Series,
		windows: windows,
		sim: simulate.New(simulate.Options{
			Costs:       cfg.Costs,
			DefaultSize: cfg.DefaultSize,
		}),
		obj:        obj,
		sampler:    sampler,
		runStore:   opts.RunStore,
		trialStore: opts.TrialStore,
		logger:     opts.Logger.With().Str("component", "search").Str("run_id", run.RunID).Logger(),
		metrics:    metrics,
		run:        run,
		visited:    make(map[string]struct{}),
		vectors:    make(map[int64]objective.Vector),
	}, nil
}

// RunID returns the identifier assigned to this run.
func (c *Controller) RunID() string {
	return c.run.RunID
}

// RunResult contains the outcome of a finished run.
type RunResult struct {
	Run *domain.SearchRun

	// Trials holds every evaluated trial in best-first order:
	// successful trials by score descending (seq ascending on ties),
	// then failed trials by seq ascending. Under multi-objective
	// ranking the successful trials are ordered by Pareto dominance
	// instead.
	Trials []*domain.TrialResult

	Completed int
	Failed    int

	// StoreErrors lists trial appends and run updates that failed.
	// The trials themselves are retained in Trials, so a retried
	// append does not re-run anything.
	StoreErrors []string
}

// task is one dispatched proposal.
type task struct {
	seq     int64
	binding domain.ParameterBinding
}

// Run drives the search to a terminal status. Workers evaluate
// concurrently up to the configured pool size; proposals and all state
// updates happen under the controller's lock. In-flight trials always
// complete, even when the budget, deadline or convergence check stops
// further dispatch.
func (c *Controller) Run(ctx context.Context) (*RunResult, error) {
	if err := c.start(ctx); err != nil {
		return nil, err
	}

	workers := c.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for {
		t, ok := c.nextTask(ctx)
		if !ok {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		c.metrics.ActiveWorkers.Inc()
		go func(t task) {
			defer func() {
				c.metrics.ActiveWorkers.Dec()
				<-sem
				wg.Done()
			}()
			start := time.Now()
			trial, vec := c.evaluate(t)
			c.complete(ctx, trial, vec)
			c.metrics.TrialDuration.Observe(time.Since(start).Seconds())
		}(t)
	}
	wg.Wait()

	return c.finalize(ctx)
}

// Step evaluates exactly one trial synchronously. done=true means the
// run reached a terminal status and the returned result (if any) was
// the last trial. Step and Run share the same state; use one or the
// other.
func (c *Controller) Step(ctx context.Context) (*domain.TrialResult, bool, error) {
	if err := c.start(ctx); err != nil {
		return nil, true, err
	}

	t, ok := c.nextTask(ctx)
	if !ok {
		_, err := c.finalize(ctx)
		return nil, true, err
	}

	start := time.Now()
	trial, vec := c.evaluate(t)
	c.complete(ctx, trial, vec)
	c.metrics.TrialDuration.Observe(time.Since(start).Seconds())

	c.mu.Lock()
	done := c.stopped(ctx)
	c.mu.Unlock()
	if done {
		if _, err := c.finalize(ctx); err != nil {
			return trial, true, err
		}
		return trial, true, nil
	}
	return trial, false, nil
}

// Result returns the run outcome after Run has returned or Step
// reported done.
func (c *Controller) Result(ctx context.Context) (*RunResult, error) {
	return c.finalize(ctx)
}

// start inserts the run header exactly once.
func (c *Controller) start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	c.started = true
	c.run.StartedAt = time.Now().UTC()
	if c.cfg.Deadline > 0 {
		c.deadlineAt = c.run.StartedAt.Add(c.cfg.Deadline)
	}

	c.logger.Info().
		Str("strategy", c.run.Strategy).
		Str("sampler", c.run.Sampler).
		Int64("seed", c.run.Seed).
		Int("budget", c.run.Budget).
		Int("windows", len(c.windows)).
		Msg("search run started")

	if c.runStore != nil {
		if err := c.runStore.Insert(ctx, c.run); err != nil {
			return fmt.Errorf("insert run header: %w", err)
		}
	}
	return nil
}

// nextTask proposes the next binding and assigns its sequence number.
// ok=false means dispatch must stop: budget spent, deadline passed,
// converged, aborted, cancelled or sampler exhausted.
func (c *Controller) nextTask(ctx context.Context) (task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped(ctx) {
		return task{}, false
	}

	binding, ok := c.sampler.Propose(c.visited)
	if !ok {
		c.exhausted = true
		c.logger.Info().Int("dispatched", c.dispatched).Msg("sampler exhausted the space")
		return task{}, false
	}
	c.visited[binding.Key()] = struct{}{}

	t := task{seq: c.nextSeq, binding: binding}
	c.nextSeq++
	c.dispatched++
	c.metrics.TrialsDispatched.Inc()
	return t, true
}

// stopped reports whether dispatch must halt. Caller holds the lock.
func (c *Controller) stopped(ctx context.Context) bool {
	if ctx.Err() != nil {
		if c.abortErr == nil {
			c.abortErr = ctx.Err()
		}
		return true
	}
	if c.abortErr != nil || c.converged || c.exhausted {
		return true
	}
	if c.dispatched >= c.cfg.MaxTrials {
		c.exhausted = true
		return true
	}
	if !c.deadlineAt.IsZero() && !time.Now().Before(c.deadlineAt) {
		c.exhausted = true
		c.logger.Info().Msg("deadline reached, stopping dispatch")
		return true
	}
	return false
}

// evaluate runs one binding over every validation window. It touches
// no controller state and is what workers execute concurrently.
func (c *Controller) evaluate(t task) (*domain.TrialResult, objective.Vector) {
	trial := &domain.TrialResult{
		TrialID: idhash.ComputeTrialID(c.run.RunID, t.seq, t.binding),
		RunID:   c.run.RunID,
		Seq:     t.seq,
		Binding: t.binding,
		Status:  domain.TrialStatusOK,
	}

	scores := make([]float64, 0, len(c.windows))
	windowScores := make(map[string]float64, len(c.windows))
	vecSum := make(objective.Vector, 3)
	var lastRec *domain.PerformanceRecord

	// Each window is simulated from its train start so indicators have
	// history, but only the test range trades and gets scored.
	for _, w := range c.windows {
		slice, err := c.series.Slice(w.TrainStart, w.TestEnd)
		if err == nil {
			var rec *domain.PerformanceRecord
			rec, err = c.sim.RunFrom(c.strat, t.binding, slice, w.TestStart-w.TrainStart)
			if err == nil {
				c.metrics.SimulationsTotal.Inc()
				c.metrics.TradesSimulated.Add(float64(rec.TradeCount))
				score := c.obj.Score(rec)
				scores = append(scores, score)
				windowScores[w.ID] = score
				for i, v := range objective.VectorOf(rec) {
					vecSum[i] += v
				}
				lastRec = rec
				continue
			}
		}
		return c.failTrial(trial, w.ID, err), nil
	}

	agg, err := objective.Aggregate(scores, c.cfg.WindowWeights, c.cfg.Aggregation)
	if err != nil {
		return c.failTrial(trial, "", err), nil
	}

	trial.Score = agg
	trial.WindowScores = windowScores
	trial.Performance = lastRec

	vec := make(objective.Vector, len(vecSum))
	for i, v := range vecSum {
		vec[i] = v / float64(len(c.windows))
	}
	return trial, vec
}

// failTrial marks a trial failed. Trials that cannot be evaluated do
// not stop the run; invariant violations do.
func (c *Controller) failTrial(trial *domain.TrialResult, windowID string, err error) *domain.TrialResult {
	trial.Status = domain.TrialStatusFailed
	trial.Score = objective.SentinelScore
	if windowID != "" {
		trial.Error = fmt.Sprintf("window %s: %v", windowID, err)
	} else {
		trial.Error = err.Error()
	}

	if !recoverable(err) {
		c.mu.Lock()
		if c.abortErr == nil {
			c.abortErr = fmt.Errorf("trial %d: %w", trial.Seq, err)
		}
		c.mu.Unlock()
	}
	return trial
}

// recoverable classifies per-trial failures the search survives.
// Anything else aborts the run.
func recoverable(err error) bool {
	return errors.Is(err, domain.ErrInvalidBinding) ||
		errors.Is(err, simulate.ErrEmptySlice) ||
		errors.Is(err, strategy.ErrNoHistory) ||
		errors.Is(err, objective.ErrNoScores)
}

// complete folds a finished trial back into run state and appends it
// to the trial store.
func (c *Controller) complete(ctx context.Context, trial *domain.TrialResult, vec objective.Vector) {
	trial.CreatedAt = time.Now().UTC()

	c.mu.Lock()
	c.trials = append(c.trials, trial)
	if vec != nil {
		c.vectors[trial.Seq] = vec
	}
	c.run.TrialsDone++
	c.sampler.Observe(trial)

	improved := trial.Status == domain.TrialStatusOK &&
		(c.best == nil || trial.Score > c.best.Score ||
			(trial.Score == c.best.Score && trial.Seq < c.best.Seq))
	if improved {
		c.best = trial
		c.run.BestTrialID = trial.TrialID
		c.run.BestScore = trial.Score
		c.noImprove = 0
		c.metrics.BestScore.Set(trial.Score)
	} else {
		c.noImprove++
		if c.cfg.NoImproveLimit > 0 && c.noImprove >= c.cfg.NoImproveLimit && !c.converged {
			c.converged = true
			c.logger.Info().
				Int("no_improve", c.noImprove).
				Msg("convergence reached, stopping dispatch")
		}
	}
	c.mu.Unlock()

	c.metrics.TrialsCompleted.WithLabelValues(string(trial.Status)).Inc()

	evt := c.logger.Debug().
		Int64("seq", trial.Seq).
		Str("trial_id", trial.TrialID).
		Str("status", string(trial.Status))
	if trial.Status == domain.TrialStatusOK {
		evt = evt.Float64("score", trial.Score)
	} else {
		evt = evt.Str("error", trial.Error)
	}
	evt.Msg("trial completed")

	if c.trialStore != nil {
		if err := c.trialStore.Append(ctx, trial); err != nil {
			c.logger.Warn().Err(err).Int64("seq", trial.Seq).Msg("trial append failed")
			c.mu.Lock()
			c.storeErrs = append(c.storeErrs, fmt.Sprintf("append trial %d: %v", trial.Seq, err))
			c.mu.Unlock()
		}
	}
}

// finalize computes the terminal status, persists the run header and
// builds the best-first result. Idempotent.
func (c *Controller) finalize(ctx context.Context) (*RunResult, error) {
	c.mu.Lock()

	if !c.finalized {
		c.finalized = true
		switch {
		case c.abortErr != nil:
			c.run.Status = domain.RunStatusAborted
		case c.converged:
			c.run.Status = domain.RunStatusConverged
		default:
			c.run.Status = domain.RunStatusExhausted
		}
		now := time.Now().UTC()
		c.run.FinishedAt = &now

		c.logger.Info().
			Str("status", string(c.run.Status)).
			Int("trials", c.run.TrialsDone).
			Str("best_trial_id", c.run.BestTrialID).
			Float64("best_score", c.run.BestScore).
			Msg("search run finished")
		c.metrics.RunsTotal.WithLabelValues(string(c.run.Status)).Inc()
		c.metrics.RunDuration.Observe(now.Sub(c.run.StartedAt).Seconds())
	}

	result := &RunResult{
		Run:         c.run,
		Trials:      c.sortedTrials(),
		StoreErrors: append([]string(nil), c.storeErrs...),
	}
	for _, t := range c.trials {
		if t.Status == domain.TrialStatusOK {
			result.Completed++
		} else {
			result.Failed++
		}
	}
	abortErr := c.abortErr
	c.mu.Unlock()

	if c.runStore != nil {
		if err := c.runStore.UpdateProgress(ctx, c.run); err != nil {
			c.logger.Warn().Err(err).Msg("run update failed")
			result.StoreErrors = append(result.StoreErrors, fmt.Sprintf("update run: %v", err))
		}
	}
	return result, abortErr
}

// sortedTrials orders trials best-first. Caller holds the lock.
func (c *Controller) sortedTrials() []*domain.TrialResult {
	var ok, failed []*domain.TrialResult
	for _, t := range c.trials {
		if t.Status == domain.TrialStatusOK {
			ok = append(ok, t)
		} else {
			failed = append(failed, t)
		}
	}

	if c.cfg.MultiObjective {
		cands := make([]objective.Candidate, len(ok))
		for i, t := range ok {
			cands[i] = objective.Candidate{
				Seq:     t.Seq,
				Primary: t.Score,
				Vector:  c.vectors[t.Seq],
			}
		}
		order := objective.SortByDominance(cands)
		sortedOK := make([]*domain.TrialResult, len(ok))
		for i, idx := range order {
			sortedOK[i] = ok[idx]
		}
		ok = sortedOK
	} else {
		sort.SliceStable(ok, func(i, j int) bool {
			if ok[i].Score != ok[j].Score {
				return ok[i].Score > ok[j].Score
			}
			return ok[i].Seq < ok[j].Seq
		})
	}

	sort.SliceStable(failed, func(i, j int) bool { return failed[i].Seq < failed[j].Seq })
	return append(ok, failed...)
}
