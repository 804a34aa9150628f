package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/edusloth/edusloth-backend/internal/logger"
	"github.com/edusloth/edusloth-backend/internal/repos"
	"github.com/edusloth/edusloth-backend/internal/types"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("logger init: %v", err)
	}
	return log
}

type fakeProvider struct {
	name        string
	singleCall  int
	chunkSize   int
	fileInput   bool
	textCalls   []string
	fileCalls   int
	generate    func(prompt string) (string, error)
	generateDoc func(prompt string) (string, error)
}

func (f *fakeProvider) Name() string            { return f.name }
func (f *fakeProvider) SingleCallChars() int    { return f.singleCall }
func (f *fakeProvider) ChunkChars() int         { return f.chunkSize }
func (f *fakeProvider) SupportsFileInput() bool { return f.fileInput }

func (f *fakeProvider) GenerateText(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	f.textCalls = append(f.textCalls, prompt)
	return f.generate(prompt)
}

func (f *fakeProvider) GenerateFromFile(ctx context.Context, system, prompt string, data []byte, mimeType string, maxTokens int) (string, error) {
	f.fileCalls++
	if f.generateDoc == nil {
		return "", errors.New("no file input support")
	}
	return f.generateDoc(prompt)
}

type fakeContentRepo struct {
	content   *types.Content
	processed bool
}

func (f *fakeContentRepo) Insert(ctx context.Context, content *types.Content) error { return nil }
func (f *fakeContentRepo) GetByID(ctx context.Context, id, userID string) (*types.Content, error) {
	if f.content == nil || f.content.ID != id {
		return nil, repos.ErrNotFound
	}
	return f.content, nil
}
func (f *fakeContentRepo) ListByUser(ctx context.Context, userID string, skip, limit int64) ([]*types.Content, error) {
	return nil, nil
}
func (f *fakeContentRepo) MarkProcessed(ctx context.Context, id string) error {
	f.processed = true
	return nil
}
func (f *fakeContentRepo) Delete(ctx context.Context, id string) error { return nil }

type fakeTranscriptionRepo struct {
	transcription *types.Transcription
}

func (f *fakeTranscriptionRepo) Insert(ctx context.Context, t *types.Transcription) error {
	return nil
}
func (f *fakeTranscriptionRepo) GetByContent(ctx context.Context, contentID string) (*types.Transcription, error) {
	if f.transcription == nil {
		return nil, repos.ErrNotFound
	}
	return f.transcription, nil
}
func (f *fakeTranscriptionRepo) Complete(ctx context.Context, id, text string, segments []types.TranscriptSegment) error {
	return nil
}
func (f *fakeTranscriptionRepo) Fail(ctx context.Context, id, errMsg string) error { return nil }
func (f *fakeTranscriptionRepo) DeleteByContent(ctx context.Context, contentID string) error {
	return nil
}

type fakeArtifactRepo struct {
	claimed      *types.GeneratedArtifact
	claimErr     error
	completed    *types.ArtifactPayload
	fallbackUsed bool
	failedMsg    string
}

func (f *fakeArtifactRepo) Claim(ctx context.Context, contentID, artifactType, question string) (*types.GeneratedArtifact, error) {
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	f.claimed = &types.GeneratedArtifact{
		ID:        "artifact-1",
		ContentID: contentID,
		Type:      artifactType,
		Status:    types.ArtifactStatusProcessing,
		Question:  question,
	}
	return f.claimed, nil
}
func (f *fakeArtifactRepo) Complete(ctx context.Context, id string, payload types.ArtifactPayload, fallbackUsed bool) error {
	f.completed = &payload
	f.fallbackUsed = fallbackUsed
	return nil
}
func (f *fakeArtifactRepo) Fail(ctx context.Context, id, errMsg string) error {
	f.failedMsg = errMsg
	return nil
}
func (f *fakeArtifactRepo) GetByContent(ctx context.Context, contentID string) ([]*types.GeneratedArtifact, error) {
	return nil, nil
}
func (f *fakeArtifactRepo) GetByContentAndType(ctx context.Context, contentID, artifactType string) (*types.GeneratedArtifact, error) {
	return nil, repos.ErrNotFound
}
func (f *fakeArtifactRepo) DeleteByContent(ctx context.Context, contentID string) error { return nil }

type fakeBucket struct{}

func (fakeBucket) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	return nil
}
func (fakeBucket) Download(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	return nil, errors.New("object not found")
}
func (fakeBucket) Delete(ctx context.Context, bucket, key string) error            { return nil }
func (fakeBucket) PresignGet(ctx context.Context, bucket, key string) (string, error) { return "", nil }
func (fakeBucket) DocumentBucket() string                                          { return "documents" }
func (fakeBucket) AudioBucket() string                                             { return "audio" }
func (fakeBucket) PublicURL(bucket, key string) string                             { return "" }

func writeTempText(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func newTestPipeline(t *testing.T, content *types.Content, transcription *types.Transcription, primary, secondary Provider) (*Pipeline, *fakeContentRepo, *fakeArtifactRepo) {
	t.Helper()
	contentRepo := &fakeContentRepo{content: content}
	artifactRepo := &fakeArtifactRepo{}
	p := NewPipeline(
		contentRepo,
		&fakeTranscriptionRepo{transcription: transcription},
		artifactRepo,
		fakeBucket{},
		primary, secondary,
		newTestLogger(t),
	)
	return p, contentRepo, artifactRepo
}

func textContent(path string) *types.Content {
	return &types.Content{
		ID:          "content-1",
		UserID:      "user-1",
		Title:       "Notes",
		ContentType: types.ContentTypeText,
		FilePath:    path,
	}
}

func TestRun_SmallTextSummaryUsesOneCall(t *testing.T) {
	path := writeTempText(t, "a short note about cells")
	provider := &fakeProvider{
		name: "primary", singleCall: 28000, chunkSize: 28000,
		generate: func(string) (string, error) { return "  Cells are small.  ", nil },
	}
	p, contentRepo, artifactRepo := newTestPipeline(t, textContent(path), nil, provider, nil)

	artifact, err := p.Begin(context.Background(), "user-1", "content-1", types.ArtifactTypeSummary, "")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	p.Run(context.Background(), artifact, "user-1")

	if len(provider.textCalls) != 1 {
		t.Fatalf("expected 1 provider call, got %d", len(provider.textCalls))
	}
	if artifactRepo.completed == nil || artifactRepo.completed.Summary != "Cells are small." {
		t.Fatalf("unexpected completion: %+v (failed: %q)", artifactRepo.completed, artifactRepo.failedMsg)
	}
	if artifactRepo.fallbackUsed {
		t.Fatalf("fallback flag should be clear")
	}
	if !contentRepo.processed {
		t.Fatalf("content was not marked processed")
	}
}

func TestRun_LargeTextSummaryChunksAndSynthesizes(t *testing.T) {
	path := writeTempText(t, strings.Repeat("x", 50))
	provider := &fakeProvider{
		name: "primary", singleCall: 20, chunkSize: 20,
		generate: func(prompt string) (string, error) {
			if strings.Contains(prompt, "summaries of consecutive parts") {
				return "final synthesis", nil
			}
			return "part summary", nil
		},
	}
	p, _, artifactRepo := newTestPipeline(t, textContent(path), nil, provider, nil)

	artifact, err := p.Begin(context.Background(), "user-1", "content-1", types.ArtifactTypeSummary, "")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	p.Run(context.Background(), artifact, "user-1")

	// 50 chars at 20 per window: 3 chunk calls plus 1 synthesis call.
	if len(provider.textCalls) != 4 {
		t.Fatalf("expected 4 provider calls, got %d", len(provider.textCalls))
	}
	if artifactRepo.completed == nil || artifactRepo.completed.Summary != "final synthesis" {
		t.Fatalf("unexpected completion: %+v (failed: %q)", artifactRepo.completed, artifactRepo.failedMsg)
	}
}

func TestRun_SynthesisFailureKeepsJoinedParts(t *testing.T) {
	path := writeTempText(t, strings.Repeat("x", 40))
	provider := &fakeProvider{
		name: "primary", singleCall: 20, chunkSize: 20,
		generate: func(prompt string) (string, error) {
			if strings.Contains(prompt, "summaries of consecutive parts") {
				return "", errors.New("synthesis exploded")
			}
			return "part summary", nil
		},
	}
	p, _, artifactRepo := newTestPipeline(t, textContent(path), nil, provider, nil)

	artifact, _ := p.Begin(context.Background(), "user-1", "content-1", types.ArtifactTypeSummary, "")
	p.Run(context.Background(), artifact, "user-1")

	if artifactRepo.completed == nil {
		t.Fatalf("expected completion, got failure %q", artifactRepo.failedMsg)
	}
	if artifactRepo.completed.Summary != "part summary\n\npart summary" {
		t.Fatalf("unexpected summary: %q", artifactRepo.completed.Summary)
	}
	if !artifactRepo.fallbackUsed {
		t.Fatalf("expected fallback flag for raw-join summary")
	}
}

func TestRun_PrimaryFailureFallsBackToSecondary(t *testing.T) {
	path := writeTempText(t, "a short note")
	primary := &fakeProvider{
		name: "primary", singleCall: 28000, chunkSize: 28000,
		generate: func(string) (string, error) { return "", errors.New("primary down") },
	}
	secondary := &fakeProvider{
		name: "secondary", singleCall: 28000, chunkSize: 28000,
		generate: func(string) (string, error) { return "secondary summary", nil },
	}
	p, _, artifactRepo := newTestPipeline(t, textContent(path), nil, primary, secondary)

	artifact, _ := p.Begin(context.Background(), "user-1", "content-1", types.ArtifactTypeSummary, "")
	p.Run(context.Background(), artifact, "user-1")

	if len(primary.textCalls) != 1 || len(secondary.textCalls) != 1 {
		t.Fatalf("expected one call each, got primary=%d secondary=%d", len(primary.textCalls), len(secondary.textCalls))
	}
	if artifactRepo.completed == nil || artifactRepo.completed.Summary != "secondary summary" {
		t.Fatalf("unexpected completion: %+v (failed: %q)", artifactRepo.completed, artifactRepo.failedMsg)
	}
}

func TestRun_BothProvidersFailRecordsSecondaryError(t *testing.T) {
	path := writeTempText(t, "a short note")
	primary := &fakeProvider{
		name: "primary", singleCall: 28000, chunkSize: 28000,
		generate: func(string) (string, error) { return "", errors.New("primary down") },
	}
	secondary := &fakeProvider{
		name: "secondary", singleCall: 28000, chunkSize: 28000,
		generate: func(string) (string, error) { return "", errors.New("secondary down") },
	}
	p, _, artifactRepo := newTestPipeline(t, textContent(path), nil, primary, secondary)

	artifact, _ := p.Begin(context.Background(), "user-1", "content-1", types.ArtifactTypeSummary, "")
	p.Run(context.Background(), artifact, "user-1")

	if artifactRepo.completed != nil {
		t.Fatalf("expected failure, got completion %+v", artifactRepo.completed)
	}
	if !strings.Contains(artifactRepo.failedMsg, "secondary down") {
		t.Fatalf("recorded error should be the fallback's, got %q", artifactRepo.failedMsg)
	}
}

func TestRun_ChunkedFlashcardsCappedAtTen(t *testing.T) {
	path := writeTempText(t, strings.Repeat("x", 80))
	var counter int
	provider := &fakeProvider{
		name: "primary", singleCall: 20, chunkSize: 20,
		generate: func(string) (string, error) {
			var items []string
			for i := 0; i < 3; i++ {
				counter++
				items = append(items, fmt.Sprintf(`{"question":"q%d","answer":"a"}`, counter))
			}
			return "[" + strings.Join(items, ",") + "]", nil
		},
	}
	p, _, artifactRepo := newTestPipeline(t, textContent(path), nil, provider, nil)

	artifact, _ := p.Begin(context.Background(), "user-1", "content-1", types.ArtifactTypeFlashcards, "")
	p.Run(context.Background(), artifact, "user-1")

	if artifactRepo.completed == nil {
		t.Fatalf("expected completion, got failure %q", artifactRepo.failedMsg)
	}
	if len(artifactRepo.completed.Flashcards) != 10 {
		t.Fatalf("expected 10 flashcards after cap, got %d", len(artifactRepo.completed.Flashcards))
	}
	if artifactRepo.completed.Flashcards[0].Question != "q1" {
		t.Fatalf("cap should keep document order, got %+v", artifactRepo.completed.Flashcards[0])
	}
}

func TestRun_LargeMindmapServesSectionStubWithoutCalls(t *testing.T) {
	path := writeTempText(t, strings.Repeat("x", 50))
	provider := &fakeProvider{
		name: "primary", singleCall: 20, chunkSize: 20,
		generate: func(string) (string, error) { return "", errors.New("should not be called") },
	}
	p, _, artifactRepo := newTestPipeline(t, textContent(path), nil, provider, nil)

	artifact, _ := p.Begin(context.Background(), "user-1", "content-1", types.ArtifactTypeMindmap, "")
	p.Run(context.Background(), artifact, "user-1")

	if len(provider.textCalls) != 0 {
		t.Fatalf("stub mindmap should make no provider calls, got %d", len(provider.textCalls))
	}
	if artifactRepo.completed == nil || artifactRepo.completed.Mindmap == nil {
		t.Fatalf("expected mindmap completion, got failure %q", artifactRepo.failedMsg)
	}
	if artifactRepo.completed.Mindmap.Name != "Document Overview" || len(artifactRepo.completed.Mindmap.Children) != 3 {
		t.Fatalf("unexpected stub: %+v", artifactRepo.completed.Mindmap)
	}
}

func TestBegin_Validation(t *testing.T) {
	path := writeTempText(t, "text")
	audio := &types.Content{ID: "content-1", UserID: "user-1", ContentType: types.ContentTypeAudio, FilePath: path}

	tests := []struct {
		name          string
		content       *types.Content
		transcription *types.Transcription
		contentID     string
		artifactType  string
		question      string
		wantErr       error
	}{
		{"invalid type", textContent(path), nil, "content-1", "poem", "", ErrInvalidArtifactType},
		{"qa without question", textContent(path), nil, "content-1", types.ArtifactTypeQA, "  ", ErrMissingQuestion},
		{"unknown content", textContent(path), nil, "missing", types.ArtifactTypeSummary, "", ErrContentNotFound},
		{"image content", &types.Content{ID: "content-1", UserID: "user-1", ContentType: types.ContentTypeImage}, nil, "content-1", types.ArtifactTypeSummary, "", ErrUnsupportedContentType},
		{"audio without transcription", audio, nil, "content-1", types.ArtifactTypeSummary, "", ErrPrecursorNotReady},
		{"audio transcription in flight", audio, &types.Transcription{ContentID: "content-1", Status: types.TranscriptionStatusProcessing}, "content-1", types.ArtifactTypeSummary, "", ErrPrecursorNotReady},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, artifactRepo := newTestPipeline(t, tt.content, tt.transcription, &fakeProvider{name: "p", singleCall: 100, chunkSize: 100}, nil)
			_, err := p.Begin(context.Background(), "user-1", tt.contentID, tt.artifactType, tt.question)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got err %v, want %v", err, tt.wantErr)
			}
			if artifactRepo.claimed != nil {
				t.Fatalf("no artifact should be claimed on validation failure")
			}
		})
	}
}

func TestRun_QAAnswersFromTranscription(t *testing.T) {
	audio := &types.Content{ID: "content-1", UserID: "user-1", ContentType: types.ContentTypeAudio, FilePath: "unused"}
	transcription := &types.Transcription{
		ContentID: "content-1",
		Status:    types.TranscriptionStatusCompleted,
		Text:      "the lecture covered mitosis",
	}
	provider := &fakeProvider{
		name: "primary", singleCall: 28000, chunkSize: 28000,
		generate: func(prompt string) (string, error) {
			if !strings.Contains(prompt, "What was covered?") {
				return "", fmt.Errorf("prompt missing question: %q", prompt)
			}
			return "Mitosis was covered.", nil
		},
	}
	p, _, artifactRepo := newTestPipeline(t, audio, transcription, provider, nil)

	artifact, err := p.Begin(context.Background(), "user-1", "content-1", types.ArtifactTypeQA, "What was covered?")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	p.Run(context.Background(), artifact, "user-1")

	if artifactRepo.completed == nil || artifactRepo.completed.Answer != "Mitosis was covered." {
		t.Fatalf("unexpected completion: %+v (failed: %q)", artifactRepo.completed, artifactRepo.failedMsg)
	}
}
