package generation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/edusloth/edusloth-backend/internal/repos"
	"github.com/edusloth/edusloth-backend/internal/services"
	"github.com/edusloth/edusloth-backend/internal/types"
)

// SourceInput is the material a generation run works from: either extracted
// text, or a local document file handed to the provider natively. Close must
// be called once the run finishes to drop any temp file.
type SourceInput struct {
	Text     string
	FilePath string
	MIMEType string
	Native   bool
	cleanup  func()
}

func (s *SourceInput) Close() {
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
}

// locate resolves a content record to generation input. Audio and video
// require a completed transcription; documents are handed over natively when
// the primary provider accepts files, otherwise their text is extracted.
func (p *Pipeline) locate(ctx context.Context, content *types.Content) (*SourceInput, error) {
	switch {
	case types.IsTranscribable(content.ContentType):
		t, err := p.transcriptionRepo.GetByContent(ctx, content.ID)
		if errors.Is(err, repos.ErrNotFound) {
			return nil, ErrPrecursorNotReady
		}
		if err != nil {
			return nil, fmt.Errorf("load transcription: %w", err)
		}
		if t.Status != types.TranscriptionStatusCompleted || strings.TrimSpace(t.Text) == "" {
			return nil, ErrPrecursorNotReady
		}
		return &SourceInput{Text: t.Text}, nil

	case content.ContentType == types.ContentTypeDocument || content.ContentType == types.ContentTypeText:
		path, cleanup, err := p.materialize(ctx, content)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			if p.primary.SupportsFileInput() {
				return &SourceInput{
					FilePath: path,
					MIMEType: "application/pdf",
					Native:   true,
					cleanup:  cleanup,
				}, nil
			}
			text, exErr := ExtractPDFText(path)
			cleanup()
			if exErr != nil {
				return nil, fmt.Errorf("extract pdf text: %w", exErr)
			}
			return &SourceInput{Text: text}, nil
		}
		raw, err := os.ReadFile(path)
		cleanup()
		if err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
		return &SourceInput{Text: decodeText(raw)}, nil

	default:
		return nil, ErrUnsupportedContentType
	}
}

// materialize returns a local path for the content's file, downloading S3
// objects to a temp file. The cleanup func removes the temp file; local-disk
// content is left in place.
func (p *Pipeline) materialize(ctx context.Context, content *types.Content) (string, func(), error) {
	noop := func() {}
	bucket, key, ok := services.ParseStorageRef(content.FilePath)
	if !ok {
		if _, err := os.Stat(content.FilePath); err != nil {
			return "", noop, fmt.Errorf("source file unavailable: %w", err)
		}
		return content.FilePath, noop, nil
	}

	body, err := p.bucket.Download(ctx, bucket, key)
	if err != nil {
		return "", noop, fmt.Errorf("download source object: %w", err)
	}
	defer body.Close()

	tmp, err := os.CreateTemp("", "edusloth-source-*"+filepath.Ext(key))
	if err != nil {
		return "", noop, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", noop, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", noop, fmt.Errorf("close temp file: %w", err)
	}

	name := tmp.Name()
	cleanup := func() {
		if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.log.Warn("failed to remove temp source file", "path", name, "error", err)
		}
	}
	return name, cleanup, nil
}

// ExtractPDFText pulls the plain text out of a PDF file. Used when the active
// provider cannot take the document natively.
func ExtractPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	body, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", errors.New("pdf contains no extractable text")
	}
	return text, nil
}

// decodeText is a best-effort UTF-8 decode for plain-text uploads with
// unknown encodings.
func decodeText(raw []byte) string {
	return string(bytes.ToValidUTF8(raw, []byte("�")))
}
