package usecases

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/formcraft-io/formcraft/internal/domain/form"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

type ExportSubmissionsUseCase struct {
	formRepo       form.Repository
	versionRepo    form.VersionRepository
	submissionRepo form.SubmissionRepository
	authz          Authorizer
	logger         logger.Interface
}

func NewExportSubmissionsUseCase(
	formRepo form.Repository,
	versionRepo form.VersionRepository,
	submissionRepo form.SubmissionRepository,
	authz Authorizer,
	logger logger.Interface,
) *ExportSubmissionsUseCase {
	return &ExportSubmissionsUseCase{
		formRepo:       formRepo,
		versionRepo:    versionRepo,
		submissionRepo: submissionRepo,
		authz:          authz,
		logger:         logger,
	}
}

// Execute streams every submission of the form as CSV. Columns follow the
// latest version's fields in position order, after the submission id and
// timestamp.
func (uc *ExportSubmissionsUseCase) Execute(ctx context.Context, userID uint, formSID string, w io.Writer) error {
	f, err := loadForm(ctx, uc.formRepo, uc.authz, uc.logger, formSID, userID, accessRead, false)
	if err != nil {
		return err
	}

	latest, err := uc.versionRepo.GetLatest(ctx, f.ID())
	if err != nil {
		uc.logger.Errorw("failed to get latest form version", "error", err, "form_id", formSID)
		return fmt.Errorf("failed to get latest form version: %w", err)
	}

	var fields []form.FormField
	if latest != nil {
		fields = append(fields, latest.Fields()...)
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Position < fields[j].Position })

	cw := csv.NewWriter(w)
	header := []string{"submission_id", "submitted_at"}
	for _, field := range fields {
		header = append(header, field.Label)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	rows := 0
	err = uc.submissionRepo.Iterate(ctx, f.ID(), func(s *form.Submission) error {
		record := make([]string, 0, len(header))
		record = append(record, s.SID(), s.SubmittedAt().UTC().Format(time.RFC3339))
		for _, field := range fields {
			record = append(record, cellValue(s.Data()[field.Key]))
		}
		rows++
		return cw.Write(record)
	})
	if err != nil {
		uc.logger.Errorw("failed to export submissions", "error", err, "form_id", formSID)
		return fmt.Errorf("failed to export submissions: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	uc.logger.Infow("submissions exported", "form_id", formSID, "rows", rows, "user_id", userID)
	return nil
}

func cellValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, cellValue(item))
		}
		return strings.Join(parts, "; ")
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(raw)
	}
}
