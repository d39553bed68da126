package documents

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"readaloud/internal/audioplan"
)

var (
	// ErrNotFound signals a missing document or paragraph.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidInput signals validation errors on caller input.
	ErrInvalidInput = errors.New("invalid document input")

	// ErrUnsupportedType signals an unknown document type.
	ErrUnsupportedType = errors.New("unsupported document type")

	// ErrParse signals that text extraction from a binary blob failed.
	ErrParse = errors.New("document parse failed")

	// ErrNoRange marks a paragraph the matcher could not assign any
	// audio range to (an empty merge group).
	ErrNoRange = errors.New("no audio range assigned")
)

// Type is the declared format of an uploaded document. The set is
// closed: Text, PDF, Word.
type Type string

const (
	TypeText Type = "text"
	TypePDF  Type = "pdf"
	TypeWord Type = "word"
)

// ParseType validates a declared type string.
func ParseType(raw string) (Type, error) {
	switch Type(raw) {
	case TypeText, TypePDF, TypeWord:
		return Type(raw), nil
	default:
		return "", ErrUnsupportedType
	}
}

// Document is an ingested text with its paragraph breakdown. Content is
// immutable once parsed; only paragraph audio references change later.
type Document struct {
	ID             uuid.UUID
	Title          string
	Type           Type
	Content        string
	WordCount      int
	SentenceCount  int
	ParagraphCount int
	Paragraphs     []Paragraph
	CreatedAt      time.Time
}

// Paragraph is one block of a document. Position is 1-based and
// contiguous within the document, assigned at parse time and never
// renumbered. Audio is nil until synthesis or alignment succeeds for
// this paragraph.
type Paragraph struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	Position   int
	Content    string
	WordCount  int
	Sentences  []string
	Audio      *AudioRef
}

// AudioRef points at a materialized audio asset.
type AudioRef struct {
	URL      string
	FileID   string
	Duration time.Duration
}

// CreateDocumentInput collects what ingestion needs.
type CreateDocumentInput struct {
	Title string
	Type  Type
	Data  []byte
}

// Filter narrows document listings.
type Filter struct {
	Type   *Type
	Limit  int
	Offset int
}

// AlignInput describes an external audio track to align against a
// document's paragraphs.
type AlignInput struct {
	Audio         []byte
	TotalDuration time.Duration // zero means estimate from size
	SegmentCount  int           // zero means use the paragraph count
	SegmentLength time.Duration // non-zero selects fixed-length slicing
}

// ParagraphResult is the per-paragraph outcome of a batch pass. Err is
// nil on success; batch callers inspect partial failure here instead of
// catching anything.
type ParagraphResult struct {
	ParagraphID uuid.UUID
	Position    int
	AudioURL    string
	Err         error
}

// SynthesisReport summarizes one synthesis pass over a document.
type SynthesisReport struct {
	DocumentID uuid.UUID
	Succeeded  int
	Failed     int
	Results    []ParagraphResult
}

// AlignReport summarizes one alignment pass.
type AlignReport struct {
	DocumentID            uuid.UUID
	Strategy              string
	Ratio                 float64
	NeedsManualAdjustment bool
	Succeeded             int
	Failed                int
	Results               []ParagraphResult
}

// Repository defines the persistence layer contract. Writes are
// read-after-write consistent per record.
type Repository interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id uuid.UUID) (Document, error)
	List(ctx context.Context, filter Filter) ([]Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateParagraphAudio(ctx context.Context, paragraphID uuid.UUID, ref AudioRef) error
}

// TextExtractor turns an uploaded blob into plain text.
type TextExtractor interface {
	Extract(typ Type, data []byte) (string, error)
}

// SpeechClient synthesizes speech for one paragraph of text.
type SpeechClient interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Store persists an audio asset and returns a durable URL.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// ClipCutter extracts one time range from a source audio track.
type ClipCutter interface {
	Cut(audio []byte, rng audioplan.Segment, total time.Duration) ([]byte, error)
}
