package generation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/edusloth/edusloth-backend/internal/logger"
	"github.com/edusloth/edusloth-backend/internal/repos"
	"github.com/edusloth/edusloth-backend/internal/services"
	"github.com/edusloth/edusloth-backend/internal/types"
)

// Pipeline turns a content record into one generated artifact. It owns the
// source resolution, the size-based call strategy, and the provider fallback.
type Pipeline struct {
	log               *logger.Logger
	contentRepo       repos.ContentRepo
	transcriptionRepo repos.TranscriptionRepo
	artifactRepo      repos.ArtifactRepo
	bucket            services.BucketService
	primary           Provider
	secondary         Provider
}

func NewPipeline(
	contentRepo repos.ContentRepo,
	transcriptionRepo repos.TranscriptionRepo,
	artifactRepo repos.ArtifactRepo,
	bucket services.BucketService,
	primary, secondary Provider,
	baseLog *logger.Logger,
) *Pipeline {
	log := baseLog.With("service", "GenerationPipeline")
	if secondary != nil {
		log.Info("generation providers configured", "primary", primary.Name(), "secondary", secondary.Name())
	} else {
		log.Info("generation provider configured", "primary", primary.Name())
	}
	return &Pipeline{
		log:               log,
		contentRepo:       contentRepo,
		transcriptionRepo: transcriptionRepo,
		artifactRepo:      artifactRepo,
		bucket:            bucket,
		primary:           primary,
		secondary:         secondary,
	}
}

// Begin validates a generation request and claims the (content, type) slot.
// Nothing is recorded when validation fails, so callers can map the error
// straight to a client response. The returned artifact is in processing state
// and must be driven to a terminal state via Run or MarkFailed.
func (p *Pipeline) Begin(ctx context.Context, userID, contentID, artifactType, question string) (*types.GeneratedArtifact, error) {
	if !types.ValidArtifactType(artifactType) {
		return nil, ErrInvalidArtifactType
	}
	if artifactType == types.ArtifactTypeQA && strings.TrimSpace(question) == "" {
		return nil, ErrMissingQuestion
	}

	content, err := p.contentRepo.GetByID(ctx, contentID, userID)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}

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
	case content.ContentType == types.ContentTypeDocument || content.ContentType == types.ContentTypeText:
	default:
		return nil, ErrUnsupportedContentType
	}

	return p.artifactRepo.Claim(ctx, contentID, artifactType, strings.TrimSpace(question))
}

// MarkFailed drives a claimed artifact to the failed state without running it.
// Used when the work queue rejects the job after a successful claim.
func (p *Pipeline) MarkFailed(ctx context.Context, artifactID, reason string) {
	if err := p.artifactRepo.Fail(ctx, artifactID, reason); err != nil {
		p.log.Error("failed to mark artifact as failed", "artifact_id", artifactID, "error", err)
	}
}

// Run executes a claimed generation to a terminal state. It never returns an
// error: every failure path is recorded on the artifact record.
func (p *Pipeline) Run(ctx context.Context, artifact *types.GeneratedArtifact, userID string) {
	runLog := p.log.With(
		"artifact_id", artifact.ID,
		"content_id", artifact.ContentID,
		"type", artifact.Type,
	)

	content, err := p.contentRepo.GetByID(ctx, artifact.ContentID, userID)
	if err != nil {
		p.finishFailed(ctx, artifact.ID, fmt.Errorf("load content: %w", err), runLog)
		return
	}

	in, err := p.locate(ctx, content)
	if err != nil {
		p.finishFailed(ctx, artifact.ID, err, runLog)
		return
	}
	defer in.Close()

	payload, fallbackUsed, err := p.generate(ctx, in, artifact.Type, artifact.Question, runLog)
	if err != nil {
		p.finishFailed(ctx, artifact.ID, err, runLog)
		return
	}

	if err := p.artifactRepo.Complete(ctx, artifact.ID, payload, fallbackUsed); err != nil {
		runLog.Error("failed to persist completed artifact", "error", err)
		return
	}
	if err := p.contentRepo.MarkProcessed(ctx, content.ID); err != nil {
		runLog.Warn("failed to mark content as processed", "error", err)
	}
	runLog.Info("generation completed", "fallback_used", fallbackUsed)
}

func (p *Pipeline) finishFailed(ctx context.Context, artifactID string, cause error, runLog *logger.Logger) {
	runLog.Error("generation failed", "error", cause)
	if err := p.artifactRepo.Fail(ctx, artifactID, cause.Error()); err != nil {
		runLog.Error("failed to persist failed artifact", "error", err)
	}
}

// generate runs the primary provider and, when it fails, retries once with the
// secondary. Native input is converted to extracted text when the secondary
// cannot take files. The error returned after a fallback attempt is the
// secondary's, not the primary's.
func (p *Pipeline) generate(ctx context.Context, in *SourceInput, artifactType, question string, runLog *logger.Logger) (types.ArtifactPayload, bool, error) {
	payload, fallbackUsed, err := p.runProvider(ctx, p.primary, in, artifactType, question, runLog)
	if err == nil {
		return payload, fallbackUsed, nil
	}
	if p.secondary == nil {
		return types.ArtifactPayload{}, false, err
	}
	runLog.Warn("primary provider failed, falling back",
		"provider", p.primary.Name(),
		"fallback", p.secondary.Name(),
		"error", err,
	)

	fallbackIn := in
	if in.Native && !p.secondary.SupportsFileInput() {
		text, exErr := ExtractPDFText(in.FilePath)
		if exErr != nil {
			return types.ArtifactPayload{}, false, fmt.Errorf("fallback text extraction: %w", exErr)
		}
		fallbackIn = &SourceInput{Text: text}
	}

	payload, fallbackUsed, err = p.runProvider(ctx, p.secondary, fallbackIn, artifactType, question, runLog)
	if err != nil {
		return types.ArtifactPayload{}, false, err
	}
	return payload, fallbackUsed, nil
}

func (p *Pipeline) runProvider(ctx context.Context, prov Provider, in *SourceInput, artifactType, question string, runLog *logger.Logger) (types.ArtifactPayload, bool, error) {
	if in.Native {
		if !prov.SupportsFileInput() {
			return types.ArtifactPayload{}, false, fmt.Errorf("provider %s cannot take file input", prov.Name())
		}
		return p.runNative(ctx, prov, in, artifactType, question)
	}
	return p.runText(ctx, prov, in.Text, artifactType, question, runLog)
}

// runNative hands the whole document to the provider in one call.
func (p *Pipeline) runNative(ctx context.Context, prov Provider, in *SourceInput, artifactType, question string) (types.ArtifactPayload, bool, error) {
	data, err := os.ReadFile(in.FilePath)
	if err != nil {
		return types.ArtifactPayload{}, false, fmt.Errorf("read source file: %w", err)
	}

	var prompt string
	var maxTokens int
	switch artifactType {
	case types.ArtifactTypeSummary:
		prompt, maxTokens = nativeSummaryPrompt(), summaryTokens
	case types.ArtifactTypeFlashcards:
		prompt, maxTokens = nativeFlashcardsPrompt(maxFlashcards), flashcardTokens
	case types.ArtifactTypeQuiz:
		prompt, maxTokens = nativeQuizPrompt(maxQuizQuestions), quizTokens
	case types.ArtifactTypeMindmap:
		prompt, maxTokens = nativeMindmapPrompt(), mindmapTokens
	case types.ArtifactTypeQA:
		prompt, maxTokens = nativeQAPrompt(question), answerTokens
	default:
		return types.ArtifactPayload{}, false, ErrInvalidArtifactType
	}

	out, err := prov.GenerateFromFile(ctx, systemInstruction, prompt, data, in.MIMEType, maxTokens)
	if err != nil {
		return types.ArtifactPayload{}, false, err
	}
	payload, fallbackUsed := finishPayload(artifactType, out)
	return payload, fallbackUsed, nil
}

// runText picks the single-call or chunked strategy based on the provider's
// size policy.
func (p *Pipeline) runText(ctx context.Context, prov Provider, text, artifactType, question string, runLog *logger.Logger) (types.ArtifactPayload, bool, error) {
	if len([]rune(text)) <= prov.SingleCallChars() {
		var prompt string
		var maxTokens int
		switch artifactType {
		case types.ArtifactTypeSummary:
			prompt, maxTokens = summaryPrompt(text), summaryTokens
		case types.ArtifactTypeFlashcards:
			prompt, maxTokens = flashcardsPrompt(maxFlashcards, text), flashcardTokens
		case types.ArtifactTypeQuiz:
			prompt, maxTokens = quizPrompt(maxQuizQuestions, text), quizTokens
		case types.ArtifactTypeMindmap:
			prompt, maxTokens = mindmapPrompt(text), mindmapTokens
		case types.ArtifactTypeQA:
			prompt, maxTokens = qaPrompt(question, text), answerTokens
		default:
			return types.ArtifactPayload{}, false, ErrInvalidArtifactType
		}
		out, err := prov.GenerateText(ctx, systemInstruction, prompt, maxTokens)
		if err != nil {
			return types.ArtifactPayload{}, false, err
		}
		payload, fallbackUsed := finishPayload(artifactType, out)
		return payload, fallbackUsed, nil
	}

	chunks := SplitChunks(text, prov.ChunkChars())
	runLog.Info("content exceeds single-call limit, chunking",
		"provider", prov.Name(),
		"chars", len([]rune(text)),
		"chunks", len(chunks),
	)

	switch artifactType {
	case types.ArtifactTypeSummary:
		return p.chunkedSummary(ctx, prov, chunks, runLog)
	case types.ArtifactTypeFlashcards:
		return p.chunkedFlashcards(ctx, prov, chunks, runLog)
	case types.ArtifactTypeQuiz:
		return p.chunkedQuiz(ctx, prov, chunks, runLog)
	case types.ArtifactTypeMindmap:
		// Too large to mindmap faithfully; serve the section overview stub
		// instead of burning a call per chunk on structure we cannot merge.
		return types.ArtifactPayload{Mindmap: SectionStubMindmap(len(chunks))}, false, nil
	case types.ArtifactTypeQA:
		return p.chunkedAnswer(ctx, prov, chunks, question, runLog)
	default:
		return types.ArtifactPayload{}, false, ErrInvalidArtifactType
	}
}

// finishPayload parses one model response into the payload slot for the type.
// The bool reports whether placeholder content was substituted.
func finishPayload(artifactType, out string) (types.ArtifactPayload, bool) {
	switch artifactType {
	case types.ArtifactTypeSummary:
		return types.ArtifactPayload{Summary: strings.TrimSpace(out)}, false
	case types.ArtifactTypeFlashcards:
		cards, fallbackUsed := ParseFlashcards(out)
		return types.ArtifactPayload{Flashcards: CapFlashcards(cards)}, fallbackUsed
	case types.ArtifactTypeQuiz:
		questions, fallbackUsed := ParseQuiz(out)
		return types.ArtifactPayload{Quiz: CapQuiz(questions)}, fallbackUsed
	case types.ArtifactTypeMindmap:
		root, fallbackUsed := ParseMindmap(out)
		return types.ArtifactPayload{Mindmap: root}, fallbackUsed
	case types.ArtifactTypeQA:
		return types.ArtifactPayload{Answer: strings.TrimSpace(out)}, false
	}
	return types.ArtifactPayload{}, false
}

// chunkedSummary summarizes each window, then synthesizes the parts into one
// summary. A failed part becomes an error marker; a failed synthesis falls
// back to the joined part summaries. If every part fails the whole run fails,
// which lets the provider fallback take over.
func (p *Pipeline) chunkedSummary(ctx context.Context, prov Provider, chunks []string, runLog *logger.Logger) (types.ArtifactPayload, bool, error) {
	parts := make([]string, 0, len(chunks))
	fallbackUsed := false
	succeeded := 0
	for i, chunk := range chunks {
		out, err := prov.GenerateText(ctx, systemInstruction, chunkSummaryPrompt(i+1, len(chunks), chunk), chunkSummaryTokens)
		if err != nil {
			runLog.Warn("chunk summary failed", "part", i+1, "error", err)
			parts = append(parts, fmt.Sprintf("[Error summarizing part %d]", i+1))
			fallbackUsed = true
			continue
		}
		parts = append(parts, strings.TrimSpace(out))
		succeeded++
	}
	if succeeded == 0 {
		return types.ArtifactPayload{}, false, fmt.Errorf("all %d chunk summaries failed", len(chunks))
	}

	combined := MergeSummaries(parts)
	out, err := prov.GenerateText(ctx, systemInstruction, synthesisPrompt(combined), summaryTokens)
	if err != nil {
		runLog.Warn("summary synthesis failed, keeping joined part summaries", "error", err)
		return types.ArtifactPayload{Summary: combined}, true, nil
	}
	return types.ArtifactPayload{Summary: strings.TrimSpace(out)}, fallbackUsed, nil
}

func (p *Pipeline) chunkedFlashcards(ctx context.Context, prov Provider, chunks []string, runLog *logger.Logger) (types.ArtifactPayload, bool, error) {
	perChunk := CardsPerChunk(len(chunks))
	cards := make([]types.Flashcard, 0, len(chunks)*perChunk)
	fallbackUsed := false
	succeeded := 0
	for i, chunk := range chunks {
		out, err := prov.GenerateText(ctx, systemInstruction, chunkFlashcardsPrompt(i+1, len(chunks), perChunk, chunk), chunkCardTokens)
		if err != nil {
			runLog.Warn("chunk flashcards failed", "part", i+1, "error", err)
			cards = append(cards, errorFlashcard(i+1))
			fallbackUsed = true
			continue
		}
		succeeded++
		parsed, ok := parseFlashcardList(out)
		if !ok {
			runLog.Warn("chunk flashcards unparseable", "part", i+1)
			fallbackUsed = true
			continue
		}
		cards = append(cards, parsed...)
	}
	if succeeded == 0 {
		return types.ArtifactPayload{}, false, fmt.Errorf("all %d chunk flashcard calls failed", len(chunks))
	}
	if len(cards) == 0 {
		cards = placeholderFlashcards()
		fallbackUsed = true
	}
	return types.ArtifactPayload{Flashcards: CapFlashcards(cards)}, fallbackUsed, nil
}

func (p *Pipeline) chunkedQuiz(ctx context.Context, prov Provider, chunks []string, runLog *logger.Logger) (types.ArtifactPayload, bool, error) {
	perChunk := QuestionsPerChunk(len(chunks))
	questions := make([]types.QuizQuestion, 0, len(chunks)*perChunk)
	fallbackUsed := false
	succeeded := 0
	for i, chunk := range chunks {
		out, err := prov.GenerateText(ctx, systemInstruction, chunkQuizPrompt(i+1, len(chunks), perChunk, chunk), chunkQuizTokens)
		if err != nil {
			runLog.Warn("chunk quiz failed", "part", i+1, "error", err)
			questions = append(questions, errorQuizQuestion(i+1))
			fallbackUsed = true
			continue
		}
		succeeded++
		parsed, substituted, ok := parseQuizList(out)
		if !ok {
			runLog.Warn("chunk quiz unparseable", "part", i+1)
			fallbackUsed = true
			continue
		}
		if substituted {
			fallbackUsed = true
		}
		questions = append(questions, parsed...)
	}
	if succeeded == 0 {
		return types.ArtifactPayload{}, false, fmt.Errorf("all %d chunk quiz calls failed", len(chunks))
	}
	if len(questions) == 0 {
		questions = placeholderQuiz()
		fallbackUsed = true
	}
	return types.ArtifactPayload{Quiz: CapQuiz(questions)}, fallbackUsed, nil
}

// chunkedAnswer answers the question against each window, then synthesizes
// the partial answers, mirroring the summary strategy.
func (p *Pipeline) chunkedAnswer(ctx context.Context, prov Provider, chunks []string, question string, runLog *logger.Logger) (types.ArtifactPayload, bool, error) {
	parts := make([]string, 0, len(chunks))
	fallbackUsed := false
	succeeded := 0
	for i, chunk := range chunks {
		out, err := prov.GenerateText(ctx, systemInstruction, chunkQAPrompt(question, i+1, len(chunks), chunk), answerTokens)
		if err != nil {
			runLog.Warn("chunk answer failed", "part", i+1, "error", err)
			parts = append(parts, fmt.Sprintf("[Error answering from part %d]", i+1))
			fallbackUsed = true
			continue
		}
		parts = append(parts, strings.TrimSpace(out))
		succeeded++
	}
	if succeeded == 0 {
		return types.ArtifactPayload{}, false, fmt.Errorf("all %d chunk answer calls failed", len(chunks))
	}

	combined := MergeSummaries(parts)
	out, err := prov.GenerateText(ctx, systemInstruction, qaSynthesisPrompt(question, combined), answerTokens)
	if err != nil {
		runLog.Warn("answer synthesis failed, keeping joined partial answers", "error", err)
		return types.ArtifactPayload{Answer: combined}, true, nil
	}
	return types.ArtifactPayload{Answer: strings.TrimSpace(out)}, fallbackUsed, nil
}
