package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/docestate/internal/core/domain"
	"github.com/kirillkom/docestate/internal/core/ports"
)

const (
	DefaultUploadMaxBytes int64 = 10 << 20
	DefaultUploadDelay          = 2 * time.Second

	pdfMimeType = "application/pdf"

	// Matches the ISO-8601 form browsers produce for Date.toISOString.
	uploadedAtLayout = "2006-01-02T15:04:05.000Z07:00"
)

type UploadConfig struct {
	MaxBytes int64
	Delay    time.Duration
}

type UploadDocumentUseCase struct {
	state     ports.StateStore
	inspector ports.PDFInspector
	scheduler ports.ProcessingScheduler
	cfg       UploadConfig
	logger    *slog.Logger

	// busyMu keeps the shared loading flag raised while any upload is in
	// its delay.
	busyMu   sync.Mutex
	inFlight int

	now   func() time.Time
	sleep func(time.Duration)
	newID func() string
}

func NewUploadDocumentUseCase(
	state ports.StateStore,
	inspector ports.PDFInspector,
	scheduler ports.ProcessingScheduler,
	cfg UploadConfig,
	logger *slog.Logger,
) *UploadDocumentUseCase {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultUploadMaxBytes
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadDocumentUseCase{
		state:     state,
		inspector: inspector,
		scheduler: scheduler,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		sleep:     time.Sleep,
		newID:     uuid.NewString,
	}
}

// Upload validates the file, waits out the simulated transfer and records a
// processing document. The file content is inspected and then dropped. The
// simulated delay ignores ctx: once started, the upload always lands.
func (uc *UploadDocumentUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.UploadResult, error) {
	name := displayName(filename)
	if !isPDF(name, mimeType) {
		return nil, domain.WrapError(
			domain.ErrUnsupportedMedia,
			"upload document",
			fmt.Errorf("please upload a PDF file, got %q (%s)", name, mimeType),
		)
	}

	data, err := io.ReadAll(io.LimitReader(body, uc.cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload body: %w", err)
	}
	if len(data) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", fmt.Errorf("file %q is empty", name))
	}
	if int64(len(data)) > uc.cfg.MaxBytes {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"upload document",
			fmt.Errorf("file %q exceeds %d bytes", name, uc.cfg.MaxBytes),
		)
	}

	pageCount := uc.pageCount(ctx, name, data)

	uc.beginBusy()
	defer uc.endBusy()

	uc.sleep(uc.cfg.Delay)

	doc := domain.Document{
		ID:         uc.newID(),
		Name:       name,
		UploadedAt: uc.now().UTC().Format(uploadedAtLayout),
		Status:     domain.StatusProcessing,
	}
	uc.state.AddDocument(doc)

	if uc.scheduler != nil {
		uc.scheduler.Schedule(doc.ID)
	}

	uc.logger.InfoContext(ctx, "upload_accepted",
		"document_id", doc.ID,
		"name", doc.Name,
		"bytes", len(data),
		"pages", pageCount,
	)

	return &domain.UploadResult{Document: doc, PageCount: pageCount}, nil
}

func (uc *UploadDocumentUseCase) beginBusy() {
	uc.busyMu.Lock()
	defer uc.busyMu.Unlock()
	uc.inFlight++
	if uc.inFlight == 1 {
		uc.state.SetLoading(true)
	}
}

func (uc *UploadDocumentUseCase) endBusy() {
	uc.busyMu.Lock()
	defer uc.busyMu.Unlock()
	uc.inFlight--
	if uc.inFlight == 0 {
		uc.state.SetLoading(false)
	}
}

func (uc *UploadDocumentUseCase) pageCount(ctx context.Context, name string, data []byte) int {
	if uc.inspector == nil {
		return 0
	}
	pages, err := uc.inspector.PageCount(data)
	if err != nil {
		uc.logger.WarnContext(ctx, "pdf_inspect_failed", "name", name, "error", err)
		return 0
	}
	return pages
}

func isPDF(name, mimeType string) bool {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(mimeType))
	}
	switch mediaType {
	case pdfMimeType:
		return true
	case "", "application/octet-stream":
		return strings.EqualFold(filepath.Ext(name), ".pdf")
	default:
		return false
	}
}

func displayName(filename string) string {
	name := strings.TrimSpace(filepath.Base(strings.ReplaceAll(filename, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return "document.pdf"
	}
	return name
}
