package http

import (
	"time"

	"readaloud/internal/documents"
)

type errorJSON struct {
	Error string `json:"error"`
}

type documentJSON struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Type           string          `json:"type"`
	WordCount      int             `json:"wordCount"`
	SentenceCount  int             `json:"sentenceCount"`
	ParagraphCount int             `json:"paragraphCount"`
	Paragraphs     []paragraphJSON `json:"paragraphs,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type paragraphJSON struct {
	ID        string    `json:"id"`
	Position  int       `json:"position"`
	Content   string    `json:"content"`
	WordCount int       `json:"wordCount"`
	Sentences []string  `json:"sentences"`
	Audio     *audioRef `json:"audio,omitempty"`
}

type audioRef struct {
	URL             string  `json:"url"`
	FileID          string  `json:"fileId"`
	DurationSeconds float64 `json:"durationSeconds"`
}

type paragraphResultJSON struct {
	ParagraphID string `json:"paragraphId"`
	Position    int    `json:"position"`
	AudioURL    string `json:"audioUrl,omitempty"`
	Error       string `json:"error,omitempty"`
}

type synthesisJSON struct {
	DocumentID string                `json:"documentId"`
	Succeeded  int                   `json:"succeeded"`
	Failed     int                   `json:"failed"`
	Results    []paragraphResultJSON `json:"results"`
}

type alignJSON struct {
	DocumentID            string                `json:"documentId"`
	Strategy              string                `json:"strategy"`
	Ratio                 float64               `json:"ratio"`
	NeedsManualAdjustment bool                  `json:"needsManualAdjustment"`
	Succeeded             int                   `json:"succeeded"`
	Failed                int                   `json:"failed"`
	Results               []paragraphResultJSON `json:"results"`
}

func documentView(doc documents.Document) documentJSON {
	view := documentJSON{
		ID:             doc.ID.String(),
		Title:          doc.Title,
		Type:           string(doc.Type),
		WordCount:      doc.WordCount,
		SentenceCount:  doc.SentenceCount,
		ParagraphCount: doc.ParagraphCount,
		CreatedAt:      doc.CreatedAt,
	}
	for _, p := range doc.Paragraphs {
		view.Paragraphs = append(view.Paragraphs, paragraphView(p))
	}
	return view
}

func paragraphView(p documents.Paragraph) paragraphJSON {
	view := paragraphJSON{
		ID:        p.ID.String(),
		Position:  p.Position,
		Content:   p.Content,
		WordCount: p.WordCount,
		Sentences: p.Sentences,
	}
	if p.Audio != nil {
		view.Audio = &audioRef{
			URL:             p.Audio.URL,
			FileID:          p.Audio.FileID,
			DurationSeconds: p.Audio.Duration.Seconds(),
		}
	}
	return view
}

func resultViews(results []documents.ParagraphResult) []paragraphResultJSON {
	views := make([]paragraphResultJSON, 0, len(results))
	for _, result := range results {
		view := paragraphResultJSON{
			ParagraphID: result.ParagraphID.String(),
			Position:    result.Position,
			AudioURL:    result.AudioURL,
		}
		if result.Err != nil {
			view.Error = result.Err.Error()
		}
		views = append(views, view)
	}
	return views
}

func synthesisView(report documents.SynthesisReport) synthesisJSON {
	return synthesisJSON{
		DocumentID: report.DocumentID.String(),
		Succeeded:  report.Succeeded,
		Failed:     report.Failed,
		Results:    resultViews(report.Results),
	}
}

func alignView(report documents.AlignReport) alignJSON {
	return alignJSON{
		DocumentID:            report.DocumentID.String(),
		Strategy:              report.Strategy,
		Ratio:                 report.Ratio,
		NeedsManualAdjustment: report.NeedsManualAdjustment,
		Succeeded:             report.Succeeded,
		Failed:                report.Failed,
		Results:               resultViews(report.Results),
	}
}
