package attribution

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/normalize"
)

// Progress is an optional side channel invoked at run milestones. Purely
// observational: it never affects outcomes.
type Progress func(message string, percent int)

// Engine drives priority-ordered evaluation per client: Email-Old, Email-New,
// Instagram (disambiguated), Audit (disambiguated), Invitation-Fallback,
// Unattributed. The first accepting matcher terminates the waterfall for
// that client.
type Engine struct {
	cfg      *Config
	workers  int
	progress Progress
	now      func() time.Time // injectable for testing
}

// NewEngine creates an engine with the given channel config; nil means the
// production defaults.
func NewEngine(cfg *Config) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg, workers: 1, now: time.Now}
}

// WithWorkers fans clients out across n goroutines. Decisions never depend
// on the order other clients are processed, so any worker count yields
// identical output.
func (e *Engine) WithWorkers(n int) *Engine {
	if n > 0 {
		e.workers = n
	}
	return e
}

// WithProgress sets the milestone callback.
func (e *Engine) WithProgress(fn Progress) *Engine {
	e.progress = fn
	return e
}

// WithNow fixes the processing timestamp for testing.
func (e *Engine) WithNow(fn func() time.Time) *Engine {
	e.now = fn
	return e
}

func (e *Engine) report(message string, percent int) {
	if e.progress != nil {
		e.progress(message, percent)
	}
}

// Run evaluates every client in the bundle and returns the aggregate report.
// A bundle without clients yields a zero-client report rather than an error,
// keeping downstream reporting stable.
func (e *Engine) Run(ctx context.Context, bundle *model.InputBundle) (*model.AttributionReport, error) {
	log := zap.L().With(zap.String("component", "attribution_engine"))

	if bundle == nil || len(bundle.Clients) == 0 {
		log.Warn("attribution: no clients in input bundle")
		return BuildReport(nil, e.now()), nil
	}

	idx := NewIndex(bundle)
	invitation, err := NewInvitationMatcher(idx, e.cfg)
	if err != nil {
		return nil, err
	}

	// Fixed priority order. Instagram and Audit get a cross-pipeline timing
	// check before their acceptance becomes final.
	matchers := []Matcher{
		NewEmailMatcher(idx, e.cfg, ScopeOld),
		NewEmailMatcher(idx, e.cfg, ScopeNew),
		NewInstagramMatcher(idx, e.cfg),
		NewAuditMatcher(idx, e.cfg),
		invitation,
	}
	disamb := NewDisambiguator(idx, e.cfg)

	e.report("data loaded", 25)

	decisions := make([]model.AttributionDecision, len(bundle.Clients))
	if e.workers <= 1 {
		for i, client := range bundle.Clients {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			decisions[i] = e.decide(client, matchers, disamb, log)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.workers)
		for i, client := range bundle.Clients {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				decisions[i] = e.decide(client, matchers, disamb, log)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	e.report("waterfall processed", 75)

	report := BuildReport(decisions, e.now())

	e.report("report generated", 100)
	log.Info("attribution: run complete",
		zap.Int("total_clients", report.TotalClients),
		zap.Int("attributed_clients", report.AttributedClients),
		zap.String("attribution_rate", report.AttributionRate),
	)
	return report, nil
}

// decide runs the waterfall for a single client. Any failure in one client's
// evaluation is isolated: the client falls to Unattributed and the run
// continues.
func (e *Engine) decide(client model.Client, matchers []Matcher, disamb *Disambiguator, log *zap.Logger) (decision model.AttributionDecision) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("attribution: client evaluation panicked",
				zap.String("client", client.Email),
				zap.Any("panic", r),
			)
			decision = unattributed(client)
		}
	}()

	signup, err := normalize.ParseClientDate(client.SignupDate)
	if err != nil || signup.IsZero() {
		if err != nil {
			log.Warn("attribution: unparseable signup date",
				zap.String("client", client.Email),
				zap.String("signup_date", client.SignupDate),
			)
		}
		return unattributed(client)
	}

	for _, m := range matchers {
		cand := m.TryMatch(client, signup)
		if cand == nil {
			continue
		}

		switch m.Name() {
		case model.MethodInstagram:
			cand = disamb.ResolveInstagram(client, signup, cand)
		case model.MethodAudit:
			cand = disamb.ResolveAudit(client, signup, cand)
		}

		return model.AttributionDecision{
			Client:            client,
			Source:            cand.Source,
			Method:            cand.Method,
			Confidence:        cand.Confidence,
			Evidence:          cand.Evidence,
			CrossPipelineNote: cand.CrossPipelineNote,
		}
	}

	return unattributed(client)
}

func unattributed(client model.Client) model.AttributionDecision {
	return model.AttributionDecision{
		Client:     client,
		Source:     model.SourceUnattributed,
		Method:     model.MethodNone,
		Confidence: 0,
	}
}
