package jobs

import (
	"context"
	"time"

	"community-backend/internal/domain"
	"community-backend/internal/logger"
)

// SendStaleReviewReminders emails every active administrator when vetting
// applications have sat in Submitted or UnderReview longer than the
// configured window.
func (jr *JobRunner) SendStaleReviewReminders() {
	jr.runWithRecovery("SendStaleReviewReminders", func() {
		ctx := context.Background()
		cutoff := time.Now().UTC().AddDate(0, 0, -jr.config.Scheduler.StaleReviewAfterDays)

		stale := 0
		for _, status := range []domain.ApplicationStatus{domain.ApplicationStatusSubmitted, domain.ApplicationStatusUnderReview} {
			apps, err := jr.store.Vetting().ListStale(ctx, status, cutoff)
			if err != nil {
				logger.Error("Failed to list stale applications", "status", status, "error", err)
				return
			}
			stale += len(apps)
		}

		if stale == 0 {
			logger.Info("No stale vetting applications found", "cutoff", cutoff)
			return
		}

		admins, err := jr.store.Members().ListAdmins(ctx)
		if err != nil {
			logger.Error("Failed to list administrators", "error", err)
			return
		}

		sent := 0
		for _, admin := range admins {
			if err := jr.services.Email.SendStaleReviewReminder(ctx, admin.Email, admin.SceneName, stale); err != nil {
				logger.Warn("Failed to send stale review reminder", "admin_id", admin.ID, "error", err)
				continue
			}
			sent++
		}
		logger.Info("Sent stale review reminders", "stale_applications", stale, "reminders_sent", sent)
	})
}

// ReleaseWaitlists cancels waitlisted participations for events that have
// already concluded, so members stop seeing dead waitlist entries.
func (jr *JobRunner) ReleaseWaitlists() {
	jr.runWithRecovery("ReleaseWaitlists", func() {
		ctx := context.Background()
		now := time.Now().UTC()

		waitlisted, err := jr.store.Participations().ListWaitlistedForConcludedEvents(ctx, now)
		if err != nil {
			logger.Error("Failed to list waitlisted participations", "error", err)
			return
		}

		released := 0
		for _, p := range waitlisted {
			err := jr.store.Participations().Cancel(ctx, p.ID, domain.ParticipationStatusCancelled, now, "Event concluded while waitlisted")
			if err != nil {
				logger.Error("Failed to release waitlisted participation", "participation_id", p.ID, "error", err)
				continue
			}
			released++
		}
		logger.Info("Released stale waitlist entries", "found", len(waitlisted), "released", released)
	})
}
