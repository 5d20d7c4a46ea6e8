package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
	"go.uber.org/zap"
)

// ReconcileJobName is the name of the consistency reconciliation job
const ReconcileJobName = "reconcile"

// ExtensionReconcileStore defines the repository surface the job needs for
// repairing half-committed extension acceptances. An accepted request with
// phase_synced=false means the phase deadline write never landed.
type ExtensionReconcileStore interface {
	ListUnsyncedAccepted(ctx context.Context) ([]domain.PhaseExtensionRequest, error)
	MarkSynced(ctx context.Context, id uuid.UUID) error
}

// PhaseReconcileStore writes the repaired phase deadline.
type PhaseReconcileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Phase, error)
	SetEndDate(ctx context.Context, id uuid.UUID, endDate string) error
}

// DelegationReconcileStore rewrites stored delegation statuses that have
// lapsed behind their window.
type DelegationReconcileStore interface {
	ListLapsed(ctx context.Context, asOf time.Time) ([]domain.TempApprover, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.TempApproverStatus) error
}

// ReconcileJob repairs the known inconsistency windows left by the
// non-transactional workflows: extension acceptances whose phase deadline
// write failed, and delegation records whose stored status no longer
// matches their validity window.
type ReconcileJob struct {
	extensions  ExtensionReconcileStore
	phases      PhaseReconcileStore
	delegations DelegationReconcileStore
	logger      *zap.Logger
	timeout     time.Duration
	now         func() time.Time
}

// NewReconcileJob creates a new reconciliation job.
// The timeout controls how long one run is allowed to take.
func NewReconcileJob(
	extensions ExtensionReconcileStore,
	phases PhaseReconcileStore,
	delegations DelegationReconcileStore,
	logger *zap.Logger,
	timeout time.Duration,
) *ReconcileJob {
	return &ReconcileJob{
		extensions:  extensions,
		phases:      phases,
		delegations: delegations,
		logger:      logger,
		timeout:     timeout,
		now:         time.Now,
	}
}

// Run executes one reconciliation pass.
func (j *ReconcileJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	repaired, failed := j.repairExtensions(ctx)
	expired := j.expireLapsedDelegations(ctx)

	j.logger.Info("reconciliation pass completed",
		zap.Int("extensions_repaired", repaired),
		zap.Int("extensions_failed", failed),
		zap.Int("delegations_expired", expired))
}

// repairExtensions replays the phase deadline write for accepted requests
// whose second write never landed. One request's failure does not stop
// the rest.
func (j *ReconcileJob) repairExtensions(ctx context.Context) (repaired, failed int) {
	requests, err := j.extensions.ListUnsyncedAccepted(ctx)
	if err != nil {
		j.logger.Error("failed to list unsynced extension requests", zap.Error(err))
		return 0, 0
	}

	for i := range requests {
		request := &requests[i]

		phase, err := j.phases.GetByID(ctx, request.PhaseID)
		if err != nil {
			j.logger.Error("failed to load phase for repair",
				zap.String("request_id", request.ID.String()),
				zap.String("phase_id", request.PhaseID.String()),
				zap.Error(err))
			failed++
			continue
		}

		// The deadline may already match: the original write landed but
		// the marker clear did not. Only the marker needs fixing then.
		if phase.EndDate == nil || !domain.SameBudgetDate(*phase.EndDate, request.ExtendedDate) {
			if err := j.phases.SetEndDate(ctx, request.PhaseID, request.ExtendedDate); err != nil {
				j.logger.Error("failed to replay phase deadline write",
					zap.String("request_id", request.ID.String()),
					zap.Error(err))
				failed++
				continue
			}
		}

		if err := j.extensions.MarkSynced(ctx, request.ID); err != nil {
			j.logger.Error("failed to clear sync marker",
				zap.String("request_id", request.ID.String()),
				zap.Error(err))
			failed++
			continue
		}

		j.logger.Info("repaired half-committed extension acceptance",
			zap.String("request_id", request.ID.String()),
			zap.String("phase_id", request.PhaseID.String()),
			zap.String("end_date", request.ExtendedDate))
		repaired++
	}
	return repaired, failed
}

// expireLapsedDelegations rewrites the stored status of delegation records
// whose window has closed. Display status already derives expiry on read;
// this keeps the stored value from drifting forever.
func (j *ReconcileJob) expireLapsedDelegations(ctx context.Context) int {
	now := j.now()
	records, err := j.delegations.ListLapsed(ctx, now)
	if err != nil {
		j.logger.Error("failed to list lapsed delegations", zap.Error(err))
		return 0
	}

	expired := 0
	for i := range records {
		record := &records[i]
		if !record.NeedsStatusUpdate(now) {
			continue
		}
		if err := j.delegations.SetStatus(ctx, record.ID, domain.TempApproverStatusExpired); err != nil {
			j.logger.Error("failed to expire lapsed delegation",
				zap.String("record_id", record.ID.String()),
				zap.Error(err))
			continue
		}
		expired++
	}
	return expired
}
