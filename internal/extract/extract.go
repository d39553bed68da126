// Package extract turns uploaded document blobs into plain text. The
// rest of the service only ever sees the extracted text.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"readaloud/internal/documents"
)

var (
	errEmptyPDFContent  = errors.New("pdf content is empty")
	errNoDocumentXML    = errors.New("docx is missing word/document.xml")
	errEmptyWordContent = errors.New("docx content is empty")
)

// Extractor dispatches on the declared document type.
type Extractor struct{}

// New constructs an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the plain text of data interpreted as typ. Plain text
// passes through unchanged.
func (e *Extractor) Extract(typ documents.Type, data []byte) (string, error) {
	switch typ {
	case documents.TypeText:
		return string(data), nil
	case documents.TypePDF:
		return extractPDF(data)
	case documents.TypeWord:
		return extractDocx(data)
	default:
		return "", fmt.Errorf("%w: %q", documents.ErrUnsupportedType, typ)
	}
}

func extractPDF(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errEmptyPDFContent
	}

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	textReader, err := doc.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		return "", fmt.Errorf("copy pdf text: %w", err)
	}
	return buf.String(), nil
}

// extractDocx reads the main document part of a .docx archive and
// flattens it to text, one blank line per word-processing paragraph.
func extractDocx(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errEmptyWordContent
	}

	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	for _, file := range archive.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open document part: %w", err)
		}
		defer rc.Close()
		return flattenDocumentXML(rc)
	}
	return "", errNoDocumentXML
}

func flattenDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var (
		out    strings.Builder
		inText bool
	)

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document part: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}
	return strings.TrimSpace(out.String()), nil
}
