package publisher

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"zombie-detector/internal/model"
)

type fakeConn struct {
	published map[string][][]byte
	err       error
}

func newFakeConn() *fakeConn {
	return &fakeConn{published: make(map[string][][]byte)}
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.published[subj] = append(f.published[subj], data)
	return nil
}

func (f *fakeConn) Drain() error { return nil }

func newZombie(id string) *model.EnrichedHost {
	return &model.EnrichedHost{
		HostRecord: model.HostRecord{
			DynatraceHostID: id,
			Hostname:        id + ".example.com",
		},
		CriterionType:  "1A",
		CriterionAlias: "Zombie",
		CriterionState: 1,
		IsZombie:       true,
	}
}

func TestPublishDetections(t *testing.T) {
	fc := newFakeConn()
	p := newWithConn(fc, "zombie", "1.0.0", zerolog.Nop())

	hosts := []*model.EnrichedHost{
		newZombie("HOST-1"),
		{HostRecord: model.HostRecord{DynatraceHostID: "HOST-2"}, CriterionType: "0", CriterionAlias: "No Zombie Detected"},
	}
	p.PublishDetections(hosts)

	summaries := fc.published["zombie.detections"]
	if len(summaries) != 1 {
		t.Fatalf("got %d summary messages, want 1", len(summaries))
	}

	var msg detectionSummaryMessage
	if err := json.Unmarshal(summaries[0], &msg); err != nil {
		t.Fatalf("failed to decode summary: %v", err)
	}
	if msg.TotalHosts != 2 || msg.ZombieHosts != 1 {
		t.Errorf("summary = %+v", msg)
	}
	if msg.Metadata.Service != "zombie-detector" || msg.Metadata.Version != "1.0.0" {
		t.Errorf("metadata = %+v", msg.Metadata)
	}

	// Only zombie hosts are published individually.
	perHost := fc.published["zombie.detections.host"]
	if len(perHost) != 1 {
		t.Fatalf("got %d per-host messages, want 1", len(perHost))
	}
	var host model.EnrichedHost
	if err := json.Unmarshal(perHost[0], &host); err != nil {
		t.Fatalf("failed to decode host message: %v", err)
	}
	if host.DynatraceHostID != "HOST-1" {
		t.Errorf("host id = %q", host.DynatraceHostID)
	}
}

func TestPublishTrackingReport(t *testing.T) {
	fc := newFakeConn()
	p := newWithConn(fc, "zombie", "1.0.0", zerolog.Nop())

	p.PublishTrackingReport(&model.TrackingReport{
		NewZombies:    []string{"HOST-3"},
		KilledZombies: []string{"HOST-2"},
		Stats:         model.TrackingStats{TotalZombies: 1, NewZombies: 1, KilledZombies: 1},
	})

	msgs := fc.published["zombie.tracking"]
	if len(msgs) != 1 {
		t.Fatalf("got %d tracking messages, want 1", len(msgs))
	}

	var report model.TrackingReport
	if err := json.Unmarshal(msgs[0], &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if report.Stats.KilledZombies != 1 {
		t.Errorf("report = %+v", report)
	}

	p.PublishTrackingReport(nil)
	if len(fc.published["zombie.tracking"]) != 1 {
		t.Error("nil report should not publish")
	}
}

func TestPublishLifecycleEvents(t *testing.T) {
	fc := newFakeConn()
	p := newWithConn(fc, "zombie", "1.0.0", zerolog.Nop())

	p.PublishZombieNew(newZombie("HOST-1"))
	p.PublishZombieKilled(&model.KilledZombie{
		DynatraceHostID: "HOST-2",
		CriterionAlias:  "Mummy",
		KilledAt:        time.Now().UTC(),
	})

	msgs := fc.published["zombie.lifecycle"]
	if len(msgs) != 2 {
		t.Fatalf("got %d lifecycle messages, want 2", len(msgs))
	}

	var first, second lifecycleMessage
	if err := json.Unmarshal(msgs[0], &first); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(msgs[1], &second); err != nil {
		t.Fatal(err)
	}
	if first.Event != "zombie_new" || first.ZombieID != "HOST-1" {
		t.Errorf("first = %+v", first)
	}
	if second.Event != "zombie_killed" || second.Killed == nil || second.Killed.CriterionAlias != "Mummy" {
		t.Errorf("second = %+v", second)
	}
}

func TestPublishErrorsAreSwallowed(t *testing.T) {
	fc := newFakeConn()
	fc.err = errors.New("connection lost")
	p := newWithConn(fc, "zombie", "1.0.0", zerolog.Nop())

	// None of these may panic or surface the error.
	p.PublishDetections([]*model.EnrichedHost{newZombie("HOST-1")})
	p.PublishTrackingReport(&model.TrackingReport{})
	p.PublishZombieNew(newZombie("HOST-1"))
	p.PublishZombieKilled(&model.KilledZombie{DynatraceHostID: "HOST-1"})
}
