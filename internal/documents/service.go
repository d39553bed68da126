package documents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"readaloud/internal/audioplan"
	"readaloud/internal/cache"
	"readaloud/internal/match"
	"readaloud/internal/segment"
)

const defaultListLimit = 20

// Service orchestrates document ingestion, synthesis, alignment, and
// persistence.
type Service struct {
	logger  *slog.Logger
	repo    Repository
	extract TextExtractor
	speech  SpeechClient
	store   Store
	clips   ClipCutter
	docs    cache.Cache[uuid.UUID, Document]
}

// NewService constructs a Service.
func NewService(
	logger *slog.Logger,
	repo Repository,
	extract TextExtractor,
	speech SpeechClient,
	store Store,
	clips ClipCutter,
	docs cache.Cache[uuid.UUID, Document],
) *Service {
	return &Service{
		logger:  logger,
		repo:    repo,
		extract: extract,
		speech:  speech,
		store:   store,
		clips:   clips,
		docs:    docs,
	}
}

// CreateDocument extracts text from the upload, splits it into
// paragraphs and sentences, and persists the result. Empty content is
// legal and yields a document with zero paragraphs.
func (s *Service) CreateDocument(ctx context.Context, input CreateDocumentInput) (Document, error) {
	if _, err := ParseType(string(input.Type)); err != nil {
		return Document{}, fmt.Errorf("%w: %q", ErrUnsupportedType, input.Type)
	}
	if strings.TrimSpace(input.Title) == "" {
		return Document{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	text, err := s.extract.Extract(input.Type, input.Data)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	doc := buildDocument(input.Title, input.Type, text)

	if err := s.repo.Create(ctx, doc); err != nil {
		return Document{}, fmt.Errorf("persist document: %w", err)
	}

	s.logger.Info("document created",
		slog.String("id", doc.ID.String()),
		slog.String("type", string(doc.Type)),
		slog.Int("paragraphs", doc.ParagraphCount),
		slog.Int("words", doc.WordCount),
	)
	return doc, nil
}

func buildDocument(title string, typ Type, text string) Document {
	now := time.Now().UTC()
	doc := Document{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(title),
		Type:      typ,
		Content:   segment.Normalize(text),
		CreatedAt: now,
	}

	for i, p := range segment.Split(text) {
		doc.Paragraphs = append(doc.Paragraphs, Paragraph{
			ID:         uuid.New(),
			DocumentID: doc.ID,
			Position:   i + 1,
			Content:    p.Content,
			WordCount:  p.WordCount,
			Sentences:  p.Sentences,
		})
		doc.WordCount += p.WordCount
		doc.SentenceCount += len(p.Sentences)
	}
	doc.ParagraphCount = len(doc.Paragraphs)
	return doc
}

// GetDocument fetches a single document by id, reading through the cache.
func (s *Service) GetDocument(ctx context.Context, id uuid.UUID) (Document, error) {
	if doc, ok := s.docs.Get(id); ok {
		return doc, nil
	}
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Document{}, err
	}
	s.docs.Set(id, doc)
	return doc, nil
}

// ListDocuments queries documents using filter criteria.
func (s *Service) ListDocuments(ctx context.Context, filter Filter) ([]Document, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	return s.repo.List(ctx, filter)
}

// DeleteDocument removes a document and its paragraphs.
func (s *Service) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.docs.Delete(id)
	return nil
}

// SynthesizeDocument synthesizes audio for every paragraph of the
// document, one paragraph at a time. A paragraph's failure is logged
// and recorded in its result; the loop always continues.
func (s *Service) SynthesizeDocument(ctx context.Context, id uuid.UUID, voice string) (SynthesisReport, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return SynthesisReport{}, err
	}

	report := SynthesisReport{DocumentID: doc.ID}
	for _, p := range doc.Paragraphs {
		result := ParagraphResult{ParagraphID: p.ID, Position: p.Position}

		ref, err := s.synthesizeParagraph(ctx, doc.ID, p, voice)
		if err != nil {
			s.logger.Error("paragraph synthesis failed",
				slog.String("document_id", doc.ID.String()),
				slog.Int("position", p.Position),
				slog.String("error", err.Error()),
			)
			result.Err = err
			report.Failed++
		} else {
			result.AudioURL = ref.URL
			report.Succeeded++
		}
		report.Results = append(report.Results, result)
	}

	s.docs.Delete(id)
	s.logger.Info("synthesis pass finished",
		slog.String("document_id", doc.ID.String()),
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *Service) synthesizeParagraph(ctx context.Context, docID uuid.UUID, p Paragraph, voice string) (AudioRef, error) {
	audio, err := s.speech.Synthesize(ctx, p.Content, voice)
	if err != nil {
		return AudioRef{}, fmt.Errorf("synthesize: %w", err)
	}

	fileID := fmt.Sprintf("%s-%03d", docID, p.Position)
	url, err := s.store.Save(ctx, fileID+".mp3", audio)
	if err != nil {
		return AudioRef{}, fmt.Errorf("store audio: %w", err)
	}

	ref := AudioRef{
		URL:      url,
		FileID:   fileID,
		Duration: EstimateTextDuration(p.WordCount),
	}
	if err := s.repo.UpdateParagraphAudio(ctx, p.ID, ref); err != nil {
		return AudioRef{}, fmt.Errorf("persist audio ref: %w", err)
	}
	return ref, nil
}

// AlignDocument slices the supplied audio track into segments, matches
// them against the document's paragraphs, and materializes one clip per
// matched paragraph. Per-pair failures are recorded and skipped.
func (s *Service) AlignDocument(ctx context.Context, id uuid.UUID, input AlignInput) (AlignReport, error) {
	if len(input.Audio) == 0 {
		return AlignReport{}, fmt.Errorf("%w: audio track is required", ErrInvalidInput)
	}

	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return AlignReport{}, err
	}

	total := input.TotalDuration
	if total == 0 {
		total = EstimateAudioDuration(len(input.Audio))
	}

	segments, err := audioplan.Plan(total, planStrategy(input, doc.ParagraphCount))
	if err != nil {
		return AlignReport{}, fmt.Errorf("plan segments: %w", err)
	}

	plan := match.Align(doc.ParagraphCount, segments)
	s.logger.Info("alignment planned",
		slog.String("document_id", doc.ID.String()),
		slog.String("strategy", plan.Strategy.String()),
		slog.Int("paragraphs", doc.ParagraphCount),
		slog.Int("segments", len(segments)),
		slog.Bool("needs_manual_adjustment", plan.NeedsManualAdjustment),
	)

	report := AlignReport{
		DocumentID:            doc.ID,
		Strategy:              plan.Strategy.String(),
		Ratio:                 plan.Ratio,
		NeedsManualAdjustment: plan.NeedsManualAdjustment,
	}

	for _, pair := range plan.Pairs {
		p := doc.Paragraphs[pair.ParagraphIndex]
		result := ParagraphResult{ParagraphID: p.ID, Position: p.Position}

		if !pair.HasAudio {
			result.Err = ErrNoRange
			report.Failed++
			report.Results = append(report.Results, result)
			continue
		}

		ref, err := s.materializeClip(ctx, doc.ID, p, pair.Range, input.Audio, total)
		if err != nil {
			s.logger.Error("clip materialization failed",
				slog.String("document_id", doc.ID.String()),
				slog.Int("position", p.Position),
				slog.String("range", pair.Range.String()),
				slog.String("error", err.Error()),
			)
			result.Err = err
			report.Failed++
		} else {
			result.AudioURL = ref.URL
			report.Succeeded++
		}
		report.Results = append(report.Results, result)
	}

	s.docs.Delete(id)
	return report, nil
}

func planStrategy(input AlignInput, paragraphCount int) audioplan.Strategy {
	switch {
	case input.SegmentLength > 0:
		return audioplan.FixedLength{Length: input.SegmentLength}
	case input.SegmentCount > 0:
		return audioplan.FixedCount{Count: input.SegmentCount}
	default:
		return audioplan.FixedCount{Count: paragraphCount}
	}
}

func (s *Service) materializeClip(
	ctx context.Context,
	docID uuid.UUID,
	p Paragraph,
	rng audioplan.Segment,
	audio []byte,
	total time.Duration,
) (AudioRef, error) {
	clip, err := s.clips.Cut(audio, rng, total)
	if err != nil {
		return AudioRef{}, fmt.Errorf("cut clip: %w", err)
	}

	fileID := fmt.Sprintf("%s-%03d", docID, p.Position)
	url, err := s.store.Save(ctx, fileID+".mp3", clip)
	if err != nil {
		return AudioRef{}, fmt.Errorf("store clip: %w", err)
	}

	ref := AudioRef{URL: url, FileID: fileID, Duration: rng.Duration()}
	if err := s.repo.UpdateParagraphAudio(ctx, p.ID, ref); err != nil {
		return AudioRef{}, fmt.Errorf("persist audio ref: %w", err)
	}
	return ref, nil
}
