package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"readaloud/internal/audioplan"
	"readaloud/internal/cache"
)

type fakeRepo struct {
	docs        map[uuid.UUID]Document
	getCalls    int
	audioWrites map[uuid.UUID]AudioRef
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs:        make(map[uuid.UUID]Document),
		audioWrites: make(map[uuid.UUID]AudioRef),
	}
}

func (r *fakeRepo) Create(_ context.Context, doc Document) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (Document, error) {
	r.getCalls++
	doc, ok := r.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (r *fakeRepo) List(_ context.Context, _ Filter) ([]Document, error) {
	var out []Document
	for _, doc := range r.docs {
		out = append(out, doc)
	}
	return out, nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.docs[id]; !ok {
		return ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *fakeRepo) UpdateParagraphAudio(_ context.Context, paragraphID uuid.UUID, ref AudioRef) error {
	r.audioWrites[paragraphID] = ref
	return nil
}

type passthroughExtractor struct{}

func (passthroughExtractor) Extract(_ Type, data []byte) (string, error) {
	return string(data), nil
}

type failingExtractor struct{}

func (failingExtractor) Extract(_ Type, _ []byte) (string, error) {
	return "", errors.New("corrupt blob")
}

type fakeSpeech struct {
	failOn map[string]bool
	calls  int
}

func (s *fakeSpeech) Synthesize(_ context.Context, text, _ string) ([]byte, error) {
	s.calls++
	if s.failOn[text] {
		return nil, errors.New("synthesis backend down")
	}
	return []byte("mp3:" + text), nil
}

type fakeStore struct {
	saved map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[string][]byte)}
}

func (s *fakeStore) Save(_ context.Context, name string, data []byte) (string, error) {
	s.saved[name] = data
	return "/media/" + name, nil
}

type proportionalCutter struct{}

func (proportionalCutter) Cut(audio []byte, rng audioplan.Segment, total time.Duration) ([]byte, error) {
	if total == 0 {
		return nil, errors.New("zero total")
	}
	lo := int(int64(len(audio)) * int64(rng.Start) / int64(total))
	hi := int(int64(len(audio)) * int64(rng.End) / int64(total))
	return audio[lo:hi], nil
}

func newTestService(repo Repository, extract TextExtractor, speech SpeechClient, store Store) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(
		logger,
		repo,
		extract,
		speech,
		store,
		proportionalCutter{},
		cache.NewLRU[uuid.UUID, Document](16, 0),
	)
}

func createTestDocument(t *testing.T, svc *Service, paragraphs int) Document {
	t.Helper()
	blocks := make([]string, paragraphs)
	for i := range blocks {
		blocks[i] = fmt.Sprintf("Paragraph number %d has words.", i+1)
	}
	doc, err := svc.CreateDocument(context.Background(), CreateDocumentInput{
		Title: "fixture",
		Type:  TypeText,
		Data:  []byte(strings.Join(blocks, "\n\n")),
	})
	require.NoError(t, err)
	require.Equal(t, paragraphs, doc.ParagraphCount)
	return doc
}

func TestCreateDocument(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, passthroughExtractor{}, &fakeSpeech{}, newFakeStore())

	doc, err := svc.CreateDocument(context.Background(), CreateDocumentInput{
		Title: "My Essay",
		Type:  TypeText,
		Data:  []byte("Hello world. This is a test.\n\nSecond paragraph here."),
	})
	require.NoError(t, err)

	require.Equal(t, 2, doc.ParagraphCount)
	require.Equal(t, []string{"Hello world.", "This is a test."}, doc.Paragraphs[0].Sentences)

	wordSum, sentenceSum := 0, 0
	for i, p := range doc.Paragraphs {
		require.Equal(t, i+1, p.Position)
		require.Equal(t, doc.ID, p.DocumentID)
		require.NotEqual(t, uuid.Nil, p.ID)
		require.Nil(t, p.Audio)
		wordSum += p.WordCount
		sentenceSum += len(p.Sentences)
	}
	require.Equal(t, doc.WordCount, wordSum)
	require.Equal(t, doc.SentenceCount, sentenceSum)

	_, ok := repo.docs[doc.ID]
	require.True(t, ok)
}

func TestCreateDocumentEmptyContent(t *testing.T) {
	svc := newTestService(newFakeRepo(), passthroughExtractor{}, &fakeSpeech{}, newFakeStore())

	doc, err := svc.CreateDocument(context.Background(), CreateDocumentInput{
		Title: "empty",
		Type:  TypeText,
	})
	require.NoError(t, err)
	require.Zero(t, doc.ParagraphCount)
	require.Empty(t, doc.Paragraphs)
}

func TestCreateDocumentValidation(t *testing.T) {
	svc := newTestService(newFakeRepo(), passthroughExtractor{}, &fakeSpeech{}, newFakeStore())

	_, err := svc.CreateDocument(context.Background(), CreateDocumentInput{Title: "x", Type: "epub"})
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = svc.CreateDocument(context.Background(), CreateDocumentInput{Title: "  ", Type: TypeText})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateDocumentParseFailure(t *testing.T) {
	svc := newTestService(newFakeRepo(), failingExtractor{}, &fakeSpeech{}, newFakeStore())

	_, err := svc.CreateDocument(context.Background(), CreateDocumentInput{
		Title: "broken",
		Type:  TypePDF,
		Data:  []byte("not a pdf"),
	})
	require.ErrorIs(t, err, ErrParse)
}

func TestSynthesizeDocumentPartialFailure(t *testing.T) {
	repo := newFakeRepo()
	speech := &fakeSpeech{failOn: map[string]bool{"Paragraph number 3 has words.": true}}
	svc := newTestService(repo, passthroughExtractor{}, speech, newFakeStore())

	doc := createTestDocument(t, svc, 5)

	report, err := svc.SynthesizeDocument(context.Background(), doc.ID, "alloy")
	require.NoError(t, err)

	require.Equal(t, 4, report.Succeeded)
	require.Equal(t, 1, report.Failed)
	require.Len(t, report.Results, 5)

	for _, result := range report.Results {
		if result.Position == 3 {
			require.Error(t, result.Err)
			require.Empty(t, result.AudioURL)
			require.NotContains(t, repo.audioWrites, result.ParagraphID)
			continue
		}
		require.NoError(t, result.Err)
		require.NotEmpty(t, result.AudioURL)

		ref, ok := repo.audioWrites[result.ParagraphID]
		require.True(t, ok)
		require.Equal(t, result.AudioURL, ref.URL)
		require.Positive(t, ref.Duration)
	}
	require.Equal(t, 5, speech.calls, "failure must not stop the loop")
}

func TestSynthesizeDocumentNotFound(t *testing.T) {
	svc := newTestService(newFakeRepo(), passthroughExtractor{}, &fakeSpeech{}, newFakeStore())

	_, err := svc.SynthesizeDocument(context.Background(), uuid.New(), "alloy")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAlignDocumentOneToOne(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeStore()
	svc := newTestService(repo, passthroughExtractor{}, &fakeSpeech{}, store)

	doc := createTestDocument(t, svc, 10)
	audio := make([]byte, 10_000)

	report, err := svc.AlignDocument(context.Background(), doc.ID, AlignInput{
		Audio:         audio,
		TotalDuration: 100 * time.Second,
	})
	require.NoError(t, err)

	require.Equal(t, "one-to-one", report.Strategy)
	require.Zero(t, report.Ratio)
	require.False(t, report.NeedsManualAdjustment)
	require.Equal(t, 10, report.Succeeded)
	require.Zero(t, report.Failed)
	require.Len(t, store.saved, 10)

	for _, result := range report.Results {
		ref := repo.audioWrites[result.ParagraphID]
		require.Equal(t, 10*time.Second, ref.Duration)
	}
}

func TestAlignDocumentMergeFlagged(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, passthroughExtractor{}, &fakeSpeech{}, newFakeStore())

	doc := createTestDocument(t, svc, 10)

	report, err := svc.AlignDocument(context.Background(), doc.ID, AlignInput{
		Audio:         make([]byte, 15_000),
		TotalDuration: 150 * time.Second,
		SegmentCount:  15,
	})
	require.NoError(t, err)

	require.Equal(t, "merge", report.Strategy)
	require.True(t, report.NeedsManualAdjustment)
	require.Len(t, report.Results, 10)

	// ceil(15/10)=2 exhausts the segments after eight groups: the last
	// two paragraphs get no range.
	require.Equal(t, 8, report.Succeeded)
	require.Equal(t, 2, report.Failed)
	require.ErrorIs(t, report.Results[9].Err, ErrNoRange)
}

func TestAlignDocumentEstimatesDurationFromSize(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, passthroughExtractor{}, &fakeSpeech{}, newFakeStore())

	doc := createTestDocument(t, svc, 2)

	// 32000 bytes at the assumed bitrate is two seconds of audio.
	report, err := svc.AlignDocument(context.Background(), doc.ID, AlignInput{
		Audio: make([]byte, 32000),
	})
	require.NoError(t, err)
	require.Equal(t, 2, report.Succeeded)

	var total time.Duration
	for _, result := range report.Results {
		total += repo.audioWrites[result.ParagraphID].Duration
	}
	require.Equal(t, 2*time.Second, total)
}

func TestAlignDocumentRequiresAudio(t *testing.T) {
	svc := newTestService(newFakeRepo(), passthroughExtractor{}, &fakeSpeech{}, newFakeStore())

	_, err := svc.AlignDocument(context.Background(), uuid.New(), AlignInput{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetDocumentReadsThroughCache(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, passthroughExtractor{}, &fakeSpeech{}, newFakeStore())

	doc := createTestDocument(t, svc, 1)
	before := repo.getCalls

	first, err := svc.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	second, err := svc.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, before+1, repo.getCalls, "second read must hit the cache")
}

func TestDeleteDocument(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, passthroughExtractor{}, &fakeSpeech{}, newFakeStore())

	doc := createTestDocument(t, svc, 1)
	require.NoError(t, svc.DeleteDocument(context.Background(), doc.ID))

	_, err := svc.GetDocument(context.Background(), doc.ID)
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, svc.DeleteDocument(context.Background(), uuid.New()), ErrNotFound)
}

func TestEstimateTextDuration(t *testing.T) {
	require.Equal(t, time.Minute, EstimateTextDuration(150))
	require.Equal(t, 2*time.Second, EstimateTextDuration(5))
	require.Zero(t, EstimateTextDuration(0))
}

func TestEstimateAudioDuration(t *testing.T) {
	require.Equal(t, time.Second, EstimateAudioDuration(16000))
	require.Zero(t, EstimateAudioDuration(0))
}
