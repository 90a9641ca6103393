package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"dormgate/internal/cache"
	"dormgate/internal/domain"
	"dormgate/internal/events"
	"dormgate/internal/journal"
	"dormgate/internal/models"
	"dormgate/internal/upload"
	"dormgate/internal/upstream"

	"github.com/rs/zerolog"
)

type IssueService struct {
	upstream  domain.UpstreamIssues
	cache     domain.ResponseCache
	journal   domain.ActivityJournal
	eventBus  domain.EventPublisher
	validator *upload.Validator
	maxPhotos int
	logger    *zerolog.Logger
}

// IssueOverview is what the issues page renders: the tenant's issues plus the
// category catalogue for the report form.
type IssueOverview struct {
	Issues     []models.Issue         `json:"issues"`
	Categories []models.IssueCategory `json:"categories"`
}

func NewIssueService(up domain.UpstreamIssues, respCache domain.ResponseCache, j domain.ActivityJournal, eventBus domain.EventPublisher, validator *upload.Validator, maxPhotos int, logger *zerolog.Logger) *IssueService {
	if maxPhotos <= 0 {
		maxPhotos = models.MaxIssuePhotos
	}
	return &IssueService{
		upstream:  up,
		cache:     respCache,
		journal:   j,
		eventBus:  eventBus,
		validator: validator,
		maxPhotos: maxPhotos,
		logger:    logger,
	}
}

// Overview fetches issues and categories concurrently. Either failure fails
// the whole call.
func (s *IssueService) Overview(ctx context.Context, session *models.Session) (*IssueOverview, error) {
	var (
		wg         sync.WaitGroup
		issues     []models.Issue
		categories []models.IssueCategory
		issuesErr  error
		catsErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		issues, issuesErr = s.ListIssues(ctx, session)
	}()
	go func() {
		defer wg.Done()
		categories, catsErr = s.ListCategories(ctx, session)
	}()
	wg.Wait()

	if issuesErr != nil {
		return nil, issuesErr
	}
	if catsErr != nil {
		return nil, catsErr
	}
	return &IssueOverview{Issues: issues, Categories: categories}, nil
}

func (s *IssueService) ListIssues(ctx context.Context, session *models.Session) ([]models.Issue, error) {
	key := cache.Key("issues", map[string]string{
		"tenant": strconv.FormatInt(session.Tenant.ID, 10),
	})

	var cached []models.Issue
	if ok, err := s.cache.Get(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}

	issues, err := s.upstream.ListIssues(ctx, session.Token)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, issues); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache issues")
	}
	return issues, nil
}

func (s *IssueService) ListCategories(ctx context.Context, session *models.Session) ([]models.IssueCategory, error) {
	key := cache.Key("issue_categories", nil)

	var cached []models.IssueCategory
	if ok, err := s.cache.Get(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}

	categories, err := s.upstream.ListIssueCategories(ctx, session.Token)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, categories); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache issue categories")
	}
	return categories, nil
}

// Report validates every attached photo, enforces the photo cap and posts the
// issue. Exactly one photo ends up primary when any are attached.
func (s *IssueService) Report(ctx context.Context, session *models.Session, req upstream.CreateIssueRequest) (*models.Issue, error) {
	if len(req.Photos) > s.maxPhotos {
		return nil, fmt.Errorf("%w: limit is %d", upload.ErrTooManyFiles, s.maxPhotos)
	}

	set := upload.NewImageSet(s.maxPhotos)
	for i := range req.Photos {
		photo := &req.Photos[i]
		raw, err := upload.DecodeBase64(photo.Content)
		if err != nil {
			return nil, fmt.Errorf("photo %s: %w", photo.FileName, err)
		}
		att, err := s.validator.Validate(photo.FileName, raw)
		if err != nil {
			return nil, fmt.Errorf("photo %s: %w", photo.FileName, err)
		}
		photo.ContentType = att.ContentType

		img, err := set.Add(att, nil)
		if err != nil {
			return nil, err
		}
		if photo.IsPrimary {
			img.IsPrimary = true
		}
	}

	// Выравниваем флаг primary по набору
	if len(req.Photos) > 0 {
		primaryIdx := 0
		for i, img := range set.Images() {
			if img.IsPrimary {
				primaryIdx = i
			}
		}
		for i := range req.Photos {
			req.Photos[i].IsPrimary = i == primaryIdx
		}
	}

	issue, err := s.upstream.CreateIssue(ctx, session.Token, req)
	if err != nil {
		s.record(ctx, session, 0, "failed", err.Error())
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, "issues"); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate issues cache")
	}

	s.record(ctx, session, issue.ID, "accepted", issue.Title)
	if err := s.eventBus.PublishJSON(events.EventIssueReported, events.IssueEventPayload{
		IssueID:    issue.ID,
		TenantID:   session.Tenant.ID,
		CategoryID: req.CategoryID,
		Title:      issue.Title,
		PhotoCount: len(req.Photos),
	}); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish issue event")
	}
	return issue, nil
}

func (s *IssueService) record(ctx context.Context, session *models.Session, issueID int64, outcome, detail string) {
	err := s.journal.Record(ctx, journal.Entry{
		TenantID: session.Tenant.ID,
		Entity:   "issue",
		EntityID: issueID,
		Action:   "reported",
		Outcome:  outcome,
		Detail:   detail,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to record issue activity")
	}
}
