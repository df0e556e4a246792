// Package service provides business logic services for the zombie detector.
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"zombie-detector/internal/classifier"
	"zombie-detector/internal/model"
	"zombie-detector/internal/tracker"
)

const defaultConcurrency = 20

// BusPublisher is the event-publishing port of the processor. All
// methods are fire-and-forget.
type BusPublisher interface {
	PublishDetections(hosts []*model.EnrichedHost)
	PublishTrackingReport(report *model.TrackingReport)
	PublishZombieNew(zombie *model.EnrichedHost)
	PublishZombieKilled(killed *model.KilledZombie)
}

// Processor orchestrates the complete detection workflow: per-host
// classification, cross-run tracking and event publishing.
type Processor struct {
	states      map[string]int
	tracker     *tracker.Tracker
	publisher   BusPublisher
	concurrency int
	version     string
	logger      zerolog.Logger
}

// ProcessorOption is a functional option for configuring a Processor.
type ProcessorOption func(*Processor)

// NewProcessor creates a new Processor. A nil states policy enables
// every classification code.
func NewProcessor(states map[string]int, logger zerolog.Logger, opts ...ProcessorOption) *Processor {
	p := &Processor{
		states:      states,
		concurrency: defaultConcurrency,
		version:     "dev",
		logger:      logger.With().Str("component", "processor").Logger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WithTracker attaches cross-run tracking to the processor.
func WithTracker(t *tracker.Tracker) ProcessorOption {
	return func(p *Processor) {
		p.tracker = t
	}
}

// WithPublisher attaches an event publisher to the processor.
func WithPublisher(pub BusPublisher) ProcessorOption {
	return func(p *Processor) {
		p.publisher = pub
	}
}

// WithConcurrency bounds parallel host classification.
func WithConcurrency(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithVersion sets the service version included in published events.
func WithVersion(version string) ProcessorOption {
	return func(p *Processor) {
		p.version = version
	}
}

// EnrichHost classifies a single host record. A code suppressed by the
// state policy keeps the host in the output but demotes it to the
// no-zombie classification.
func (p *Processor) EnrichHost(h *model.HostRecord) *model.EnrichedHost {
	return p.enrichHost(h, p.states)
}

func (p *Processor) enrichHost(h *model.HostRecord, states map[string]int) *model.EnrichedHost {
	code, alias, description := classifier.Classify(h)
	state := classifier.ResolveState(states, code)

	enriched := &model.EnrichedHost{
		HostRecord:           *h,
		CriterionType:        code,
		CriterionAlias:       alias,
		CriterionDescription: description,
		CriterionState:       state,
		IsZombie:             state == 1 && code != "0",
	}

	if state == 0 && code != "0" {
		enriched.CriterionType = "0"
		enriched.CriterionAlias = classifier.NoZombieAlias
		enriched.CriterionDescription = classifier.DescriptionFor(nil)
	}

	return enriched
}

// Enrich classifies a batch of hosts, bounded by the configured
// concurrency. Results keep the input order.
func (p *Processor) Enrich(ctx context.Context, hosts []*model.HostRecord) ([]*model.EnrichedHost, error) {
	return p.enrich(ctx, hosts, p.states)
}

func (p *Processor) enrich(ctx context.Context, hosts []*model.HostRecord, states map[string]int) ([]*model.EnrichedHost, error) {
	enriched := make([]*model.EnrichedHost, len(hosts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, h := range hosts {
		i, h := i, h
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if h == nil {
				return fmt.Errorf("host record %d is nil", i)
			}
			enriched[i] = p.enrichHost(h, states)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return enriched, nil
}

// Process runs the full pipeline for one batch: classification,
// tracking and publishing. Tracking runs even when the batch contains
// no zombies; an all-clear run is what moves hosts to the killed
// registry.
func (p *Processor) Process(ctx context.Context, hosts []*model.HostRecord) (*model.DetectionResult, error) {
	return p.ProcessWithStates(ctx, hosts, nil)
}

// ProcessWithStates runs the full pipeline with a one-off criterion
// state policy. A nil states map falls back to the processor's policy.
func (p *Processor) ProcessWithStates(ctx context.Context, hosts []*model.HostRecord, states map[string]int) (*model.DetectionResult, error) {
	if states == nil {
		states = p.states
	}

	enriched, err := p.enrich(ctx, hosts, states)
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	result := &model.DetectionResult{Hosts: enriched}
	zombies := model.FilterZombies(enriched)

	p.logger.Info().
		Int("total_hosts", len(enriched)).
		Int("zombie_hosts", len(zombies)).
		Msg("batch classified")

	if p.tracker != nil {
		report, err := p.tracker.RecordSnapshot(zombies)
		if err != nil {
			return nil, fmt.Errorf("tracking failed: %w", err)
		}
		result.Tracking = report
	}

	if p.publisher != nil {
		p.publisher.PublishDetections(enriched)
		p.publishTransitions(result.Tracking, zombies)
	}

	return result, nil
}

// publishTransitions announces the per-host lifecycle events of a run.
func (p *Processor) publishTransitions(report *model.TrackingReport, zombies []*model.EnrichedHost) {
	if report == nil {
		return
	}

	p.publisher.PublishTrackingReport(report)

	byID := make(map[string]*model.EnrichedHost, len(zombies))
	for _, z := range zombies {
		byID[z.DynatraceHostID] = z
	}
	for _, id := range report.NewZombies {
		p.publisher.PublishZombieNew(byID[id])
	}

	if p.tracker == nil {
		return
	}
	for _, id := range report.KilledZombies {
		entry, err := p.tracker.IsKilled(id)
		if err != nil {
			p.logger.Warn().Err(err).Str("zombie_id", id).Msg("failed to load killed entry for event")
			continue
		}
		p.publisher.PublishZombieKilled(entry)
	}
}
