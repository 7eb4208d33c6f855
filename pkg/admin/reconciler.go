package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lettable/booking-admin/pkg/directory"
	"github.com/lettable/booking-admin/pkg/metrics"
	"github.com/lettable/booking-admin/pkg/profile"
)

// DefaultReconcileInterval is how often the background sweep runs.
const DefaultReconcileInterval = 15 * time.Minute

// Reconciler repairs the profile store against the identity directory. The
// directory's claims are the source of truth: a profile whose role disagrees
// with the owner's claims is rewritten, and a profile whose owner no longer
// exists is removed. This is the only recovery path for writes that failed
// halfway between the two stores.
type Reconciler struct {
	directory *directory.Service
	profiles  *profile.Service
	metrics   *metrics.Collector
}

// NewReconciler creates a reconciler over the two stores.
func NewReconciler(directorySvc *directory.Service, profileSvc *profile.Service, collector *metrics.Collector) *Reconciler {
	return &Reconciler{
		directory: directorySvc,
		profiles:  profileSvc,
		metrics:   collector,
	}
}

// Sweep runs one reconciliation pass and returns the number of repaired
// records.
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	idents, err := r.directory.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list identities: %w", err)
	}
	records, err := r.profiles.Roster(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list profiles: %w", err)
	}

	byID := make(map[uuid.UUID]directory.Identity, len(idents))
	for _, ident := range idents {
		byID[ident.ID] = ident
	}

	repaired := 0
	for _, rec := range records {
		ident, ok := byID[rec.UserID]
		if !ok {
			// Identity deleted but the profile delete never landed.
			if err := r.profiles.Delete(ctx, rec.UserID); err != nil {
				slog.Error("Failed to remove orphaned profile", "userId", rec.UserID, "err", err)
				continue
			}
			slog.Info("Removed orphaned profile", "userId", rec.UserID, "email", rec.Email)
			repaired++
			continue
		}

		expected := ident.Claims.Role()
		if rec.Role == expected {
			continue
		}
		if _, err := r.profiles.SetRole(ctx, ident.ID, ident.Email, ident.DisplayName, expected); err != nil {
			slog.Error("Failed to repair profile role", "userId", ident.ID, "err", err)
			continue
		}
		slog.Info("Repaired profile role", "userId", ident.ID, "email", ident.Email, "was", rec.Role, "now", expected)
		repaired++
	}

	r.metrics.RecordReconcilerRepair(repaired)
	return repaired, nil
}

// Run sweeps on the given interval until the context is cancelled.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("Reconciler started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Reconciler stopped")
			return
		case <-ticker.C:
			repaired, err := r.Sweep(ctx)
			if err != nil {
				slog.Error("Reconciliation sweep failed", "err", err)
				continue
			}
			if repaired > 0 {
				slog.Info("Reconciliation sweep finished", "repaired", repaired)
			}
		}
	}
}
