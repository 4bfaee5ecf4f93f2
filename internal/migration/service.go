// Package migration orchestrates one HubSpot-to-SFMC template migration
// run: credential resolution, folder resolution, fetch (or a caller
// supplied list), conversion and asset creation, with per-item isolation.
package migration

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"template-migrator/internal/common/errors"
	"template-migrator/internal/common/logger"
	"template-migrator/internal/common/metrics"
	"template-migrator/internal/converter"
	"template-migrator/internal/credentials"
	"template-migrator/internal/history"
	"template-migrator/internal/hubspot"
	"template-migrator/internal/notify"
	"template-migrator/internal/sfmc"

	"github.com/google/uuid"
)

// CredentialStore resolves stored provider credentials for a user.
type CredentialStore interface {
	Get(ctx context.Context, userID, provider string) (*credentials.Stored, error)
}

// TemplateFetcher retrieves the source template list.
type TemplateFetcher interface {
	FetchTemplates(ctx context.Context) ([]hubspot.Template, error)
}

// Destination is the SFMC surface the orchestrator needs.
type Destination interface {
	Authenticate(ctx context.Context) error
	ResolveFolder(ctx context.Context, rootName, targetName string) (int, error)
	CreateAsset(ctx context.Context, req sfmc.AssetRequest) (*sfmc.Asset, error)
}

// HistoryRecorder persists a run audit row; failures are non-fatal.
type HistoryRecorder interface {
	RecordRun(ctx context.Context, record history.RunRecord) error
}

// Notifier publishes a run summary; failures are non-fatal.
type Notifier interface {
	NotifyRunCompleted(ctx context.Context, summary notify.RunSummary) error
}

type Config struct {
	DefaultLimit     int
	RootFolderName   string
	TargetFolderName string
}

func DefaultServiceConfig() Config {
	return Config{
		DefaultLimit:     10,
		RootFolderName:   "Content Builder",
		TargetFolderName: "HubSpot Templates",
	}
}

// Dependencies wires the orchestrator's collaborators. Fetcher and
// destination are factories because both are scoped to credentials that
// only resolve mid-run. History and Notifier may be nil.
type Dependencies struct {
	Credentials    CredentialStore
	NewFetcher     func(accessToken string) TemplateFetcher
	NewDestination func(creds sfmc.Credentials) Destination
	History        HistoryRecorder
	Notifier       Notifier
	Logger         logger.Logger
}

type Service struct {
	config Config
	deps   Dependencies
	logger logger.Logger
}

func NewService(deps Dependencies, config Config) *Service {
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = 10
	}
	if config.RootFolderName == "" {
		config.RootFolderName = "Content Builder"
	}
	if config.TargetFolderName == "" {
		config.TargetFolderName = "HubSpot Templates"
	}

	return &Service{
		config: config,
		deps:   deps,
		logger: deps.Logger,
	}
}

// Execute runs one migration pass. It returns exactly one of a summary or
// a run-level error; per-item failures are collected inside the summary.
func (s *Service) Execute(ctx context.Context, req *Request) (*Summary, error) {
	startTime := time.Now()
	runID := uuid.NewString()

	mode := ModeFetch
	if len(req.CustomTemplates) > 0 {
		mode = ModeCustom
	}

	log := s.logger.WithFields(map[string]interface{}{
		"runId":  runID,
		"userId": req.UserID,
		"mode":   mode,
	})

	log.Info("Starting template migration run", nil)

	sourceToken, err := s.resolveSourceToken(ctx, req)
	if err != nil {
		metrics.MigrationRuns.WithLabelValues(mode, "error").Inc()
		return nil, err
	}

	destCreds, err := s.resolveDestinationCredentials(ctx, req)
	if err != nil {
		metrics.MigrationRuns.WithLabelValues(mode, "error").Inc()
		return nil, err
	}

	dest := s.deps.NewDestination(*destCreds)
	if err := dest.Authenticate(ctx); err != nil {
		metrics.MigrationRuns.WithLabelValues(mode, "error").Inc()
		return nil, errors.NewTokenExchangeFailedError(err)
	}

	folderID, err := s.resolveFolder(ctx, dest, req.FolderID)
	if err != nil {
		metrics.MigrationRuns.WithLabelValues(mode, "error").Inc()
		return nil, err
	}

	templates, err := s.collectTemplates(ctx, req, sourceToken, mode)
	if err != nil {
		metrics.MigrationRuns.WithLabelValues(mode, "error").Inc()
		return nil, err
	}

	summary := s.migrateAll(ctx, log, dest, folderID, templates)

	metrics.MigrationRuns.WithLabelValues(mode, "success").Inc()
	metrics.MigrationRunDuration.WithLabelValues(mode).Observe(time.Since(startTime).Seconds())

	log.Info("Migration run finished", map[string]interface{}{
		"migrated":       summary.TemplatesCount,
		"totalAttempted": summary.TotalAttempted,
		"errors":         len(summary.Errors),
	})

	s.recordRun(ctx, log, runID, req.UserID, mode, summary)

	return summary, nil
}

func (s *Service) resolveSourceToken(ctx context.Context, req *Request) (string, error) {
	if req.HubspotToken != "" {
		return req.HubspotToken, nil
	}

	stored, err := s.deps.Credentials.Get(ctx, req.UserID, credentials.ProviderHubSpot)
	if err != nil {
		if stderrors.Is(err, credentials.ErrNotConnected) {
			return "", errors.NewNotConnectedError(credentials.ProviderHubSpot, req.UserID)
		}
		return "", errors.NewCredentialLookupFailedError(credentials.ProviderHubSpot, err)
	}
	if stored.AccessToken == "" {
		return "", errors.NewNotConnectedError(credentials.ProviderHubSpot, req.UserID)
	}

	return stored.AccessToken, nil
}

func (s *Service) resolveDestinationCredentials(ctx context.Context, req *Request) (*sfmc.Credentials, error) {
	// A structurally complete inline triple wins; the store is never
	// consulted in that case.
	if req.SFMCCredentials.Complete() {
		return req.SFMCCredentials, nil
	}

	stored, err := s.deps.Credentials.Get(ctx, req.UserID, credentials.ProviderSFMC)
	if err != nil {
		if stderrors.Is(err, credentials.ErrNotConnected) {
			return nil, errors.NewNotConnectedError(credentials.ProviderSFMC, req.UserID)
		}
		return nil, errors.NewCredentialLookupFailedError(credentials.ProviderSFMC, err)
	}
	if !stored.HasSFMCProvisioning() {
		return nil, errors.NewNotConnectedError(credentials.ProviderSFMC, req.UserID)
	}

	return &sfmc.Credentials{
		ClientID:     stored.ClientID,
		ClientSecret: stored.ClientSecret,
		Subdomain:    stored.Subdomain,
	}, nil
}

func (s *Service) resolveFolder(ctx context.Context, dest Destination, explicitID string) (int, error) {
	if explicitID != "" {
		// Trusted as-is apart from numeric coercion; SFMC category ids
		// are integers on the wire.
		folderID, err := strconv.Atoi(explicitID)
		if err != nil {
			return 0, errors.NewValidationFailedError(fmt.Sprintf("folderId must be numeric, got %q", explicitID))
		}
		return folderID, nil
	}

	return dest.ResolveFolder(ctx, s.config.RootFolderName, s.config.TargetFolderName)
}

func (s *Service) collectTemplates(ctx context.Context, req *Request, sourceToken, mode string) ([]hubspot.Template, error) {
	if mode == ModeCustom {
		templates := make([]hubspot.Template, 0, len(req.CustomTemplates))
		for _, custom := range req.CustomTemplates {
			raw := map[string]interface{}{}
			if custom.Content != "" {
				raw["content"] = custom.Content
			}
			if custom.HTML != "" {
				raw["html"] = custom.HTML
			}
			templates = append(templates, hubspot.Template{
				ID:   custom.ID,
				Name: custom.Name,
				Raw:  raw,
			})
		}
		return templates, nil
	}

	fetcher := s.deps.NewFetcher(sourceToken)
	templates, err := fetcher.FetchTemplates(ctx)
	if err != nil {
		return nil, errors.NewHubSpotFetchFailedError(err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.config.DefaultLimit
	}
	if len(templates) > limit {
		templates = templates[:limit]
	}

	return templates, nil
}

func (s *Service) migrateAll(ctx context.Context, log logger.Logger, dest Destination, folderID int, templates []hubspot.Template) *Summary {
	migrated := []Result{}
	itemErrors := []ItemError{}

	for _, template := range templates {
		markup, ok := converter.ResolveMarkup(template.Raw)
		if !ok {
			// No resolvable markup means the item was never attempted:
			// it appears in neither migrated nor errors.
			log.Warn("Skipping template with no resolvable markup", map[string]interface{}{
				"templateId":   template.ID,
				"templateName": template.Name,
			})
			continue
		}

		name := template.Name
		if name == "" {
			name = fmt.Sprintf("HubSpot Template %s", template.ID)
		}

		converted := converter.Convert(markup)

		asset, err := dest.CreateAsset(ctx, sfmc.AssetRequest{
			Name:     name,
			Content:  converted.Content,
			FolderID: folderID,
			Channels: converted.Channels,
			Slots:    converted.Slots,
		})
		if err != nil {
			metrics.MigrationItems.WithLabelValues(StatusError).Inc()
			log.Error("Template migration failed", map[string]interface{}{
				"templateId":   template.ID,
				"templateName": name,
				"error":        err.Error(),
			})
			itemErrors = append(itemErrors, ItemError{
				HubspotID: template.ID,
				Name:      name,
				Status:    StatusError,
				Error:     err.Error(),
			})
			continue
		}

		metrics.MigrationItems.WithLabelValues(StatusSuccess).Inc()
		migrated = append(migrated, Result{
			HubspotID:   template.ID,
			CustomName:  name,
			SFMCID:      asset.ID,
			CustomerKey: asset.CustomerKey,
			Status:      StatusSuccess,
		})
	}

	summary := &Summary{
		Success:        true,
		Migrated:       migrated,
		Errors:         itemErrors,
		TemplatesCount: len(migrated),
		TotalAttempted: len(migrated) + len(itemErrors),
	}

	switch {
	case summary.TotalAttempted == 0 && len(templates) == 0:
		summary.Message = "No templates found to migrate"
	case summary.TotalAttempted == 0:
		summary.Message = "No templates with usable markup found"
	default:
		summary.Message = fmt.Sprintf("Migrated %d of %d templates", summary.TemplatesCount, summary.TotalAttempted)
	}

	return summary
}

// recordRun performs the best-effort post-run side effects: history insert
// and summary notification. Neither affects the response.
func (s *Service) recordRun(ctx context.Context, log logger.Logger, runID, userID, mode string, summary *Summary) {
	if s.deps.History != nil {
		err := s.deps.History.RecordRun(ctx, history.RunRecord{
			RunID:          runID,
			UserID:         userID,
			Mode:           mode,
			TemplatesCount: summary.TemplatesCount,
			TotalAttempted: summary.TotalAttempted,
			ErrorCount:     len(summary.Errors),
			Message:        summary.Message,
		})
		if err != nil {
			log.Warn("Failed to record run history", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if s.deps.Notifier != nil {
		err := s.deps.Notifier.NotifyRunCompleted(ctx, notify.RunSummary{
			RunID:          runID,
			UserID:         userID,
			TemplatesCount: summary.TemplatesCount,
			TotalAttempted: summary.TotalAttempted,
			ErrorCount:     len(summary.Errors),
			Message:        summary.Message,
		})
		if err != nil {
			log.Warn("Failed to publish run notification", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}
