package service

import (
	"context"
	"strconv"

	"dormgate/internal/cache"
	"dormgate/internal/domain"
	"dormgate/internal/events"
	"dormgate/internal/journal"
	"dormgate/internal/models"
	"dormgate/internal/upload"
	"dormgate/internal/upstream"

	"github.com/rs/zerolog"
)

type DocumentService struct {
	upstream  domain.UpstreamDocuments
	cache     domain.ResponseCache
	journal   domain.ActivityJournal
	eventBus  domain.EventPublisher
	watcher   domain.VerificationWorker
	validator *upload.Validator
	logger    *zerolog.Logger
}

func NewDocumentService(up domain.UpstreamDocuments, respCache domain.ResponseCache, j domain.ActivityJournal, eventBus domain.EventPublisher, watcher domain.VerificationWorker, validator *upload.Validator, logger *zerolog.Logger) *DocumentService {
	return &DocumentService{
		upstream:  up,
		cache:     respCache,
		journal:   j,
		eventBus:  eventBus,
		watcher:   watcher,
		validator: validator,
		logger:    logger,
	}
}

// ListDocumentTypes is cached hard: the catalogue rarely changes and is the
// same for every tenant.
func (s *DocumentService) ListDocumentTypes(ctx context.Context, session *models.Session) ([]models.DocumentType, error) {
	key := cache.Key("document_types", nil)

	var cached []models.DocumentType
	if ok, err := s.cache.Get(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}

	types, err := s.upstream.ListDocumentTypes(ctx, session.Token)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, types); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache document types")
	}
	return types, nil
}

func (s *DocumentService) ListDocuments(ctx context.Context, session *models.Session) ([]models.Document, error) {
	key := cache.Key("documents", map[string]string{
		"tenant": strconv.FormatInt(session.Tenant.ID, 10),
	})

	var cached []models.Document
	if ok, err := s.cache.Get(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}

	docs, err := s.upstream.ListDocuments(ctx, session.Token)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, docs); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache documents")
	}
	return docs, nil
}

func (s *DocumentService) GetDocument(ctx context.Context, session *models.Session, id int64) (*models.Document, error) {
	return s.upstream.GetDocument(ctx, session.Token, id)
}

// HasApprovedIdentity reports whether the tenant has at least one approved
// identity-class document.
func (s *DocumentService) HasApprovedIdentity(ctx context.Context, session *models.Session) (bool, error) {
	return hasApprovedIdentity(ctx, s.upstream, session.Token)
}

// Upload validates the file bytes and forwards them to the backend.
func (s *DocumentService) Upload(ctx context.Context, session *models.Session, typeID int64, fileName, encodedContent string) (*models.Document, error) {
	if encodedContent == "" {
		return nil, upload.ErrEmptyFile
	}

	raw, err := upload.DecodeBase64(encodedContent)
	if err != nil {
		return nil, err
	}

	att, err := s.validator.Validate(fileName, raw)
	if err != nil {
		return nil, err
	}

	doc, err := s.upstream.UploadDocument(ctx, session.Token, upstream.UploadDocumentRequest{
		TypeID:      typeID,
		FileName:    att.FileName,
		ContentType: att.ContentType,
		Content:     encodedContent,
	})
	if err != nil {
		s.record(ctx, session, 0, "failed", err.Error())
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, "documents"); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate documents cache")
	}

	s.record(ctx, session, doc.ID, "accepted", "")
	if err := s.eventBus.PublishJSON(events.EventDocumentUploaded, events.DocumentEventPayload{
		DocumentID: doc.ID,
		TenantID:   session.Tenant.ID,
		TypeCode:   doc.TypeName,
		Status:     doc.Status,
	}); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish document event")
	}

	if s.watcher != nil {
		if err := s.watcher.EnqueueDocument(ctx, session, doc.ID); err != nil {
			s.logger.Warn().Err(err).Int64("document_id", doc.ID).Msg("failed to enqueue document watch")
		}
	}
	return doc, nil
}

// FileContent returns the document bytes for viewing or download. The detail
// endpoint may already carry the content base64-encoded; otherwise the file
// is streamed from the backend.
func (s *DocumentService) FileContent(ctx context.Context, session *models.Session, id int64) ([]byte, string, error) {
	doc, err := s.upstream.GetDocument(ctx, session.Token, id)
	if err != nil {
		return nil, "", err
	}

	if doc.Content != "" {
		raw, err := upload.DecodeBase64(doc.Content)
		if err == nil {
			contentType := doc.ContentType
			if contentType == "" {
				contentType = upload.Sniff(raw)
			}
			return raw, contentType, nil
		}
		s.logger.Warn().Err(err).Int64("document_id", id).Msg("embedded document content is not valid base64, fetching file")
	}

	return s.upstream.FetchDocumentFile(ctx, session.Token, id)
}

func (s *DocumentService) record(ctx context.Context, session *models.Session, documentID int64, outcome, detail string) {
	err := s.journal.Record(ctx, journal.Entry{
		TenantID: session.Tenant.ID,
		Entity:   "document",
		EntityID: documentID,
		Action:   "uploaded",
		Outcome:  outcome,
		Detail:   detail,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to record document activity")
	}
}
