package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/docestate/internal/core/domain"
	"github.com/kirillkom/docestate/internal/core/ports"
)

type ProcessDocumentUseCase struct {
	state     ports.StateStore
	extractor ports.FieldExtractor
	logger    *slog.Logger
}

func NewProcessDocumentUseCase(
	state ports.StateStore,
	extractor ports.FieldExtractor,
	logger *slog.Logger,
) *ProcessDocumentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessDocumentUseCase{
		state:     state,
		extractor: extractor,
		logger:    logger,
	}
}

// ProcessByID moves a processing document to completed with extracted fields,
// or to error when extraction fails. Documents that already left processing
// are skipped.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := uc.loadDocument(documentID)
	if err != nil {
		return err
	}
	if doc.Status != domain.StatusProcessing {
		uc.logger.DebugContext(ctx, "processing_skipped", "document_id", documentID, "status", doc.Status)
		return nil
	}

	extraction, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		processErr := fmt.Errorf("extract fields: %w", err)
		if failErr := uc.markFailed(documentID); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", processErr, failErr)
		}
		uc.logger.WarnContext(ctx, "processing_failed", "document_id", documentID, "error", processErr)
		return processErr
	}

	if err := uc.markCompleted(documentID, extraction); err != nil {
		return fmt.Errorf("set status=completed: %w", err)
	}

	uc.logger.InfoContext(ctx, "processing_completed", "document_id", documentID, "name", doc.Name)
	return nil
}

func (uc *ProcessDocumentUseCase) loadDocument(documentID string) (domain.Document, error) {
	doc, ok := uc.state.Document(documentID)
	if !ok {
		return domain.Document{}, domain.WrapError(
			domain.ErrDocumentNotFound,
			"process document",
			fmt.Errorf("id=%s", documentID),
		)
	}
	return doc, nil
}

func (uc *ProcessDocumentUseCase) markCompleted(documentID string, extraction domain.Extraction) error {
	status := domain.StatusCompleted
	data := extraction.Data
	patch := domain.DocumentPatch{
		Status:        &status,
		ExtractedData: &data,
	}
	if extraction.Summary != "" {
		patch.Summary = domain.StringPtr(extraction.Summary)
	}
	return uc.update(documentID, patch)
}

func (uc *ProcessDocumentUseCase) markFailed(documentID string) error {
	status := domain.StatusError
	return uc.update(documentID, domain.DocumentPatch{Status: &status})
}

// update reports not-found when the document vanished mid-flight, e.g. after
// a logout cleared the workspace.
func (uc *ProcessDocumentUseCase) update(documentID string, patch domain.DocumentPatch) error {
	if !uc.state.UpdateDocument(documentID, patch) {
		return domain.WrapError(domain.ErrDocumentNotFound, "update document", fmt.Errorf("id=%s", documentID))
	}
	return nil
}
