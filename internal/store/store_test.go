package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/friendsincode/heimdall_stage/internal/models"
)

func seedActs() []models.Act {
	return []models.Act{
		{
			ID:             uuid.NewString(),
			ActName:        "Opener",
			ScheduledStart: models.NewClock(19, 0),
			ScheduledEnd:   models.NewClock(19, 30),
		},
		{
			ID:             uuid.NewString(),
			ActName:        "Headliner",
			ScheduledStart: models.NewClock(20, 0),
			ScheduledEnd:   models.NewClock(21, 0),
		},
	}
}

// backends returns each store implementation pre-seeded with the same
// running order, so the contract tests below cover both.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	mem := NewMemoryStore()
	mem.Seed(seedActs())

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	gs := NewGormStore(db)
	if err := gs.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, act := range seedActs() {
		if err := db.Create(&act).Error; err != nil {
			t.Fatalf("create act: %v", err)
		}
	}

	return map[string]Store{"memory": mem, "gorm": gs}
}

func TestListActsSortedByScheduledStart(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			acts, err := s.ListActs(context.Background())
			if err != nil {
				t.Fatalf("list acts: %v", err)
			}
			if len(acts) != 2 {
				t.Fatalf("expected 2 acts, got %d", len(acts))
			}
			if acts[0].ActName != "Opener" || acts[1].ActName != "Headliner" {
				t.Fatalf("unexpected order: %s, %s", acts[0].ActName, acts[1].ActName)
			}
		})
	}
}

func TestSetActualTimes(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			act, err := s.SetActualStart(ctx, "Opener", models.NewClock(19, 5))
			if err != nil {
				t.Fatalf("set actual start: %v", err)
			}
			if act.ActualStart == nil || act.ActualStart.String() != "19:05" {
				t.Fatalf("actual start not stamped: %+v", act.ActualStart)
			}

			act, err = s.SetActualEnd(ctx, "Opener", models.NewClock(19, 40))
			if err != nil {
				t.Fatalf("set actual end: %v", err)
			}
			if act.ActualEnd == nil || act.ActualEnd.String() != "19:40" {
				t.Fatalf("actual end not stamped: %+v", act.ActualEnd)
			}
			if v, ok := act.EndVariance(); !ok || v != 600 {
				t.Fatalf("end variance = %d, %v; want 600, true", v, ok)
			}

			act, err = s.ClearActualTimes(ctx, "Opener")
			if err != nil {
				t.Fatalf("clear actual times: %v", err)
			}
			if act.ActualStart != nil || act.ActualEnd != nil {
				t.Fatalf("actual times not cleared: %+v", act)
			}
		})
	}
}

func TestUnknownActReturnsNotFound(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := s.GetAct(ctx, "Nobody"); !errors.Is(err, ErrActNotFound) {
				t.Fatalf("GetAct error = %v; want ErrActNotFound", err)
			}
			if _, err := s.SetActualStart(ctx, "Nobody", models.NewClock(20, 0)); !errors.Is(err, ErrActNotFound) {
				t.Fatalf("SetActualStart error = %v; want ErrActNotFound", err)
			}
			if _, err := s.ClearActualTimes(ctx, "Nobody"); !errors.Is(err, ErrActNotFound) {
				t.Fatalf("ClearActualTimes error = %v; want ErrActNotFound", err)
			}
		})
	}
}
