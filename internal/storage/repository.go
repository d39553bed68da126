package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"readaloud/internal/documents"
)

// DocumentRepository persists documents and paragraphs in PostgreSQL.
type DocumentRepository struct {
	db *sql.DB
}

// NewDocumentRepository creates a new repository.
func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a document and its paragraphs within a transaction.
func (r *DocumentRepository) Create(ctx context.Context, doc documents.Document) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const insertDocument = `
		INSERT INTO documents (
			id, title, doc_type, content, word_count, sentence_count, paragraph_count, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`
	if _, err := tx.ExecContext(ctx, insertDocument,
		doc.ID,
		doc.Title,
		string(doc.Type),
		doc.Content,
		doc.WordCount,
		doc.SentenceCount,
		doc.ParagraphCount,
		doc.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	const insertParagraph = `
		INSERT INTO paragraphs (id, document_id, position, content, word_count, sentences)
		VALUES ($1,$2,$3,$4,$5,$6)
	`
	for _, p := range doc.Paragraphs {
		sentencesJSON, err := json.Marshal(p.Sentences)
		if err != nil {
			return fmt.Errorf("marshal sentences: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insertParagraph,
			p.ID,
			doc.ID,
			p.Position,
			p.Content,
			p.WordCount,
			sentencesJSON,
		); err != nil {
			return fmt.Errorf("insert paragraph: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByID fetches a document with all paragraphs in position order.
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (documents.Document, error) {
	const queryDocument = `
		SELECT id, title, doc_type, content, word_count, sentence_count, paragraph_count, created_at
		FROM documents
		WHERE id = $1
	`
	var doc documents.Document
	var docType string
	if err := r.db.QueryRowContext(ctx, queryDocument, id).Scan(
		&doc.ID,
		&doc.Title,
		&docType,
		&doc.Content,
		&doc.WordCount,
		&doc.SentenceCount,
		&doc.ParagraphCount,
		&doc.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return documents.Document{}, documents.ErrNotFound
		}
		return documents.Document{}, fmt.Errorf("select document: %w", err)
	}
	doc.Type = documents.Type(docType)

	const queryParagraphs = `
		SELECT id, position, content, word_count, sentences, audio_url, audio_file_id, audio_duration_ms
		FROM paragraphs
		WHERE document_id = $1
		ORDER BY position ASC
	`
	rows, err := r.db.QueryContext(ctx, queryParagraphs, id)
	if err != nil {
		return documents.Document{}, fmt.Errorf("select paragraphs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanParagraph(rows, doc.ID)
		if err != nil {
			return documents.Document{}, err
		}
		doc.Paragraphs = append(doc.Paragraphs, p)
	}
	if err := rows.Err(); err != nil {
		return documents.Document{}, fmt.Errorf("rows error: %w", err)
	}
	return doc, nil
}

func scanParagraph(rows *sql.Rows, docID uuid.UUID) (documents.Paragraph, error) {
	var (
		p             documents.Paragraph
		sentencesJSON []byte
		audioURL      sql.NullString
		audioFileID   sql.NullString
		audioDuration sql.NullInt64
	)
	if err := rows.Scan(
		&p.ID,
		&p.Position,
		&p.Content,
		&p.WordCount,
		&sentencesJSON,
		&audioURL,
		&audioFileID,
		&audioDuration,
	); err != nil {
		return documents.Paragraph{}, fmt.Errorf("scan paragraph: %w", err)
	}
	p.DocumentID = docID
	if err := json.Unmarshal(sentencesJSON, &p.Sentences); err != nil {
		return documents.Paragraph{}, fmt.Errorf("unmarshal sentences: %w", err)
	}
	if audioURL.Valid {
		p.Audio = &documents.AudioRef{
			URL:      audioURL.String,
			FileID:   audioFileID.String,
			Duration: time.Duration(audioDuration.Int64) * time.Millisecond,
		}
	}
	return p, nil
}

// List returns document metadata filtered by provided criteria, without
// paragraph bodies.
func (r *DocumentRepository) List(ctx context.Context, filter documents.Filter) ([]documents.Document, error) {
	query := strings.Builder{}
	args := []any{}

	query.WriteString(`
		SELECT id, title, doc_type, word_count, sentence_count, paragraph_count, created_at
		FROM documents
		WHERE 1=1
	`)

	if filter.Type != nil && *filter.Type != "" {
		args = append(args, string(*filter.Type))
		query.WriteString(fmt.Sprintf(" AND doc_type = $%d", len(args)))
	}

	query.WriteString(" ORDER BY created_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
	} else {
		args = append(args, 20)
	}
	query.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
	}

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var result []documents.Document
	for rows.Next() {
		var doc documents.Document
		var docType string
		if err := rows.Scan(
			&doc.ID,
			&doc.Title,
			&docType,
			&doc.WordCount,
			&doc.SentenceCount,
			&doc.ParagraphCount,
			&doc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.Type = documents.Type(docType)
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

// Delete removes a document; paragraphs cascade.
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return documents.ErrNotFound
	}
	return nil
}

// UpdateParagraphAudio attaches an audio reference to one paragraph.
func (r *DocumentRepository) UpdateParagraphAudio(ctx context.Context, paragraphID uuid.UUID, ref documents.AudioRef) error {
	const update = `
		UPDATE paragraphs
		SET audio_url = $2, audio_file_id = $3, audio_duration_ms = $4
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, update,
		paragraphID,
		ref.URL,
		ref.FileID,
		ref.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("update paragraph audio: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return documents.ErrNotFound
	}
	return nil
}
