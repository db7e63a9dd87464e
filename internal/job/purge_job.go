package job

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"group-board-api/internal/repository"
)

// PurgeJob permanently removes groups whose soft delete is older than the
// retention window, together with everything they own.
type PurgeJob struct {
	groupRepo repository.GroupRepository
	retention time.Duration
	logger    *zap.Logger
}

// NewPurgeJob creates a PurgeJob with the given retention in days
func NewPurgeJob(groupRepo repository.GroupRepository, retentionDays int, logger *zap.Logger) *PurgeJob {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &PurgeJob{
		groupRepo: groupRepo,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    logger,
	}
}

// Register schedules the job on the given cron runner
func (j *PurgeJob) Register(c *cron.Cron, schedule string) error {
	_, err := c.AddFunc(schedule, j.Run)
	return err
}

// Run executes one purge pass. Failures on individual groups are logged and
// skipped; the next pass picks them up again.
func (j *PurgeJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-j.retention)
	groups, err := j.groupRepo.FindDeletedBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error("Purge pass failed to list deleted groups", zap.Error(err))
		return
	}
	if len(groups) == 0 {
		return
	}

	purged := 0
	for _, group := range groups {
		if err := j.groupRepo.Purge(ctx, group.ID); err != nil {
			j.logger.Error("Failed to purge group",
				zap.String("group_id", group.ID.String()),
				zap.Error(err))
			continue
		}
		purged++
	}

	j.logger.Info("Purge pass completed",
		zap.Int("candidates", len(groups)),
		zap.Int("purged", purged))
}
