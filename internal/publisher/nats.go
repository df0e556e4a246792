// Package publisher emits detection and lifecycle events to NATS.
//
// Publishing is fire-and-forget: the detection pipeline must complete
// even when the message bus is degraded, so publish failures are
// logged and dropped, never returned.
package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"zombie-detector/internal/config"
	"zombie-detector/internal/model"
)

// conn is the subset of *nats.Conn the publisher needs; tests swap in
// a fake.
type conn interface {
	Publish(subj string, data []byte) error
	Drain() error
}

// Publisher sends detection results and zombie lifecycle events to the
// message bus.
type Publisher struct {
	nc      conn
	prefix  string
	version string
	logger  zerolog.Logger
}

// New connects to the NATS server described by the configuration.
func New(cfg config.PublisherConfig, version string, logger zerolog.Logger) (*Publisher, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.Timeout(cfg.Timeout),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", cfg.URL, err)
	}
	return newWithConn(nc, cfg.SubjectPrefix, version, logger), nil
}

func newWithConn(nc conn, prefix, version string, logger zerolog.Logger) *Publisher {
	return &Publisher{
		nc:      nc,
		prefix:  prefix,
		version: version,
		logger:  logger.With().Str("component", "publisher").Logger(),
	}
}

// detectionSummaryMessage is the envelope published after each batch.
type detectionSummaryMessage struct {
	Timestamp          time.Time      `json:"timestamp"`
	TotalHosts         int            `json:"total_hosts"`
	ZombieHosts        int            `json:"zombie_hosts"`
	CriterionBreakdown map[string]int `json:"criterion_breakdown"`
	Metadata           messageMeta    `json:"metadata"`
}

type messageMeta struct {
	Service string `json:"service"`
	Version string `json:"version"`
}

// lifecycleMessage announces a single host transition.
type lifecycleMessage struct {
	Event     string              `json:"event"`
	Timestamp time.Time           `json:"timestamp"`
	ZombieID  string              `json:"zombie_id"`
	Zombie    *model.EnrichedHost `json:"zombie,omitempty"`
	Killed    *model.KilledZombie `json:"killed,omitempty"`
}

// PublishDetections emits the batch summary on <prefix>.detections,
// followed by one message per zombie host.
func (p *Publisher) PublishDetections(hosts []*model.EnrichedHost) {
	summary := model.NewDetectionSummary(hosts)

	p.publish(p.prefix+".detections", detectionSummaryMessage{
		Timestamp:          time.Now().UTC(),
		TotalHosts:         summary.TotalHosts,
		ZombieHosts:        summary.ZombieHosts,
		CriterionBreakdown: summary.CriterionBreakdown,
		Metadata:           p.meta(),
	})

	for _, h := range model.FilterZombies(hosts) {
		p.publish(p.prefix+".detections.host", h)
	}
}

// PublishTrackingReport emits the transition report of a detection run
// on <prefix>.tracking.
func (p *Publisher) PublishTrackingReport(report *model.TrackingReport) {
	if report == nil {
		return
	}
	p.publish(p.prefix+".tracking", report)
}

// PublishZombieNew announces a newly detected zombie host.
func (p *Publisher) PublishZombieNew(zombie *model.EnrichedHost) {
	if zombie == nil {
		return
	}
	p.publish(p.prefix+".lifecycle", lifecycleMessage{
		Event:     "zombie_new",
		Timestamp: time.Now().UTC(),
		ZombieID:  zombie.DynatraceHostID,
		Zombie:    zombie,
	})
}

// PublishZombieKilled announces a host leaving the zombie set.
func (p *Publisher) PublishZombieKilled(killed *model.KilledZombie) {
	if killed == nil {
		return
	}
	p.publish(p.prefix+".lifecycle", lifecycleMessage{
		Event:     "zombie_killed",
		Timestamp: time.Now().UTC(),
		ZombieID:  killed.DynatraceHostID,
		Killed:    killed,
	})
}

func (p *Publisher) publish(subject string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("failed to encode event")
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("failed to publish event")
		return
	}
	p.logger.Debug().Str("subject", subject).Int("bytes", len(data)).Msg("published event")
}

func (p *Publisher) meta() messageMeta {
	return messageMeta{Service: "zombie-detector", Version: p.version}
}

// Close drains pending messages and closes the connection.
func (p *Publisher) Close() error {
	return p.nc.Drain()
}
