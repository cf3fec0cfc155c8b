package usecases

import (
	"context"
	"fmt"

	"github.com/formcraft-io/formcraft/internal/application/notification"
	"github.com/formcraft-io/formcraft/internal/domain/form"
	"github.com/formcraft-io/formcraft/internal/domain/quota"
	"github.com/formcraft-io/formcraft/internal/domain/user"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

type SubmitFormCommand struct {
	FormSID     string
	Data        map[string]any
	IPAddress   string
	SubmitterID *uint
}

type SubmitFormResult struct {
	Submission     *form.Submission
	SuccessMessage string
	RedirectURL    string
}

type SubmitFormUseCase struct {
	formRepo       form.Repository
	versionRepo    form.VersionRepository
	submissionRepo form.SubmissionRepository
	quota          QuotaEnforcer
	newID          IDGenerator
	userRepo       user.Repository        // optional: owner notifications
	notifier       notification.Notifier // optional: owner notifications
	logger         logger.Interface
}

func NewSubmitFormUseCase(
	formRepo form.Repository,
	versionRepo form.VersionRepository,
	submissionRepo form.SubmissionRepository,
	quota QuotaEnforcer,
	newID IDGenerator,
	logger logger.Interface,
) *SubmitFormUseCase {
	return &SubmitFormUseCase{
		formRepo:       formRepo,
		versionRepo:    versionRepo,
		submissionRepo: submissionRepo,
		quota:          quota,
		newID:          newID,
		logger:         logger,
	}
}

// SetOwnerNotifier enables the emailNotification form setting.
func (uc *SubmitFormUseCase) SetOwnerNotifier(userRepo user.Repository, notifier notification.Notifier) {
	uc.userRepo = userRepo
	uc.notifier = notifier
}

// Execute stores a submission against the latest version of a PUBLISHED
// form. The submit_form quota is charged to the form owner and undeclared
// keys are dropped.
func (uc *SubmitFormUseCase) Execute(ctx context.Context, cmd SubmitFormCommand) (*SubmitFormResult, error) {
	f, err := uc.formRepo.GetBySID(ctx, cmd.FormSID)
	if err != nil {
		uc.logger.Errorw("failed to get form", "error", err, "form_id", cmd.FormSID)
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	if f == nil || !f.IsPublished() {
		return nil, apperrors.NewNotFoundError("form not found", cmd.FormSID)
	}

	latest, err := uc.versionRepo.GetLatest(ctx, f.ID())
	if err != nil {
		uc.logger.Errorw("failed to get latest form version", "error", err, "form_id", cmd.FormSID)
		return nil, fmt.Errorf("failed to get latest form version: %w", err)
	}
	if latest == nil {
		return nil, translateError(form.ErrFormHasNoVersion)
	}

	if err := uc.quota.EnforceQuotaLimit(ctx, f.OwnerID(), quota.ActionSubmitForm, 1); err != nil {
		return nil, err
	}

	sid, err := uc.newID()
	if err != nil {
		uc.logger.Errorw("failed to generate submission id", "error", err)
		return nil, fmt.Errorf("failed to generate submission id: %w", err)
	}

	submission, err := form.NewSubmission(sid, f, latest, cmd.Data, cmd.IPAddress, cmd.SubmitterID)
	if err != nil {
		return nil, translateError(err)
	}
	if err := uc.submissionRepo.Create(ctx, submission); err != nil {
		uc.logger.Errorw("failed to create submission", "error", err, "form_id", cmd.FormSID)
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	uc.logger.Infow("form submitted",
		"form_id", cmd.FormSID,
		"submission_id", submission.SID(),
		"version", latest.VersionNumber(),
		"field_count", len(submission.Data()),
	)

	settings, _ := latest.Schema()["settings"].(map[string]any)
	if enabled, _ := settings["emailNotification"].(bool); enabled {
		uc.notifyOwner(ctx, f, submission)
	}

	result := &SubmitFormResult{Submission: submission}
	result.SuccessMessage, _ = settings["successMessage"].(string)
	result.RedirectURL, _ = settings["redirectUrl"].(string)
	return result, nil
}

func (uc *SubmitFormUseCase) notifyOwner(ctx context.Context, f *form.Form, s *form.Submission) {
	if uc.notifier == nil || uc.userRepo == nil {
		return
	}
	owner, err := uc.userRepo.GetByID(ctx, f.OwnerID())
	if err != nil || owner == nil {
		uc.logger.Warnw("failed to load form owner for notification", "error", err, "form_id", f.SID())
		return
	}
	msg := notification.Message{
		To:       owner.Email(),
		Name:     owner.DisplayName(),
		Template: notification.TemplateNewSubmission,
		Data: map[string]any{
			"form_title":    f.Title(),
			"form_id":       f.SID(),
			"submission_id": s.SID(),
			"data":          s.Data(),
		},
	}
	if err := uc.notifier.Send(ctx, msg); err != nil {
		uc.logger.Warnw("failed to send submission notification", "error", err, "form_id", f.SID(), "submission_id", s.SID())
	}
}
