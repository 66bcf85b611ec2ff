package grading

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/domain/gradingModel"
	"github.com/akolanti/GradeRAG/internal/metrics"
	"github.com/akolanti/GradeRAG/internal/rag/llm"
	"github.com/akolanti/GradeRAG/internal/rag/retry"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
	"github.com/go-playground/validator/v10"
)

// ContextSource is the part of the retriever grading depends on.
type ContextSource interface {
	Retrieve(ctx context.Context, assignmentId string, kind gradingModel.Kind, query string, topK int) ([]gradingModel.SearchHit, error)
	DocumentChunks(ctx context.Context, kind gradingModel.Kind, documentId string) ([]gradingModel.SearchHit, error)
	ReconstructDocument(ctx context.Context, kind gradingModel.Kind, documentId string) (string, error)
}

type Options struct {
	Language           string
	ContextTopK        int
	MaxContextExcerpts int
	KeyPointsMaxTokens int
	Temperature        float64
	MaxTokens          int
	Timeout            time.Duration
	Retries            int
	Backoff            time.Duration
}

func OptionsFromConfig(g config.GradingConfig, c config.CompletionConfig) Options {
	return Options{
		Language:           g.Language,
		ContextTopK:        g.ContextTopK,
		MaxContextExcerpts: g.MaxContextExcerpts,
		KeyPointsMaxTokens: g.KeyPointsMaxTokens,
		Temperature:        c.Temperature,
		MaxTokens:          c.MaxTokens,
		Timeout:            c.Timeout,
		Retries:            c.Retries,
		Backoff:            c.Backoff,
	}
}

type Grader struct {
	llm      llm.Provider
	source   ContextSource
	opts     Options
	prompts  promptSet
	validate *validator.Validate
	logger   *logger_i.Logger
}

func NewGrader(provider llm.Provider, source ContextSource, opts Options) *Grader {
	if opts.ContextTopK <= 0 {
		opts.ContextTopK = config.ContextTopKPerChunk
	}
	if opts.MaxContextExcerpts <= 0 {
		opts.MaxContextExcerpts = config.MaxContextExcerpts
	}
	if opts.KeyPointsMaxTokens <= 0 {
		opts.KeyPointsMaxTokens = config.KeyPointsMaxTokens
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = config.ModelMaxTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.CompletionTimeout
	}
	return &Grader{
		llm:      provider,
		source:   source,
		opts:     opts,
		prompts:  promptsFor(opts.Language),
		validate: validator.New(),
		logger:   logger_i.NewLogger("grader").With("model", provider.ModelName(), "language", opts.Language),
	}
}

// Grade scores a student answer against the model answer. A nil score in a
// successful result means the response could not be parsed and needs a human.
func (g *Grader) Grade(ctx context.Context, req gradingModel.GradeRequest) (gradingModel.GradingResult, error) {
	log := g.logger.WithTrace(ctx).With("assignmentId", req.AssignmentId, "submissionId", req.SubmissionId)

	if err := g.validate.Struct(req); err != nil {
		return gradingModel.GradingResult{}, gradingModel.InvalidInput("%v", err)
	}

	modelAnswer, err := g.modelAnswer(ctx, req)
	if err != nil {
		metrics.CaptureGradingOutcome("failed")
		return gradingModel.GradingResult{}, err
	}

	data := promptData{
		AssignmentPrompt: strings.TrimSpace(req.AssignmentPrompt),
		ModelAnswer:      modelAnswer,
		StudentAnswer:    req.StudentAnswer,
	}
	if data.AssignmentPrompt == "" {
		data.AssignmentPrompt = g.prompts.noAssignmentPrompt
	}

	result := gradingModel.GradingResult{}

	result.KeyPointsText, err = g.keyPoints(ctx, data)
	if err != nil {
		log.Warn("key point extraction failed, grading without it", "error", err)
		data.KeyPoints = g.prompts.keyPointsMissing
	} else {
		data.KeyPoints = result.KeyPointsText
	}

	if req.AssignmentId != "" && req.SubmissionId != "" {
		excerpts, err := g.relevantExcerpts(ctx, req.AssignmentId, req.SubmissionId)
		if err != nil {
			log.Warn("context retrieval failed, using the full model answer", "error", err)
		} else if len(excerpts) > 0 {
			data.Excerpts = excerpts
			result.ContextExcerpts = excerpts
			result.UsedRetrievedContext = true
		}
	}

	prompt, err := render(g.prompts.grading, data)
	if err != nil {
		metrics.CaptureGradingOutcome("failed")
		return gradingModel.GradingResult{}, fmt.Errorf("rendering grading prompt: %w", err)
	}

	start := time.Now()
	text, err := g.complete(ctx, prompt, g.opts.MaxTokens)
	metrics.CaptureExecutionMetrics("grading_completion", time.Since(start))
	if err != nil {
		log.Error("grading completion failed", "error", err)
		metrics.CaptureGradingOutcome("failed")
		return gradingModel.GradingResult{}, fmt.Errorf("%w: %v", gradingModel.ErrGradingUnavailable, err)
	}

	result.Success = true
	result.GradingText = text
	result.Score = ParseScore(text)
	if result.NeedsManualReview() {
		log.Warn("no total score found in grading text, manual review needed")
		metrics.CaptureGradingOutcome("manual_review")
	} else {
		log.Info("graded", "score", *result.Score, "usedContext", result.UsedRetrievedContext)
		metrics.CaptureGradingOutcome("scored")
	}
	return result, nil
}

func (g *Grader) modelAnswer(ctx context.Context, req gradingModel.GradeRequest) (string, error) {
	if strings.TrimSpace(req.ModelAnswer) != "" {
		return req.ModelAnswer, nil
	}
	text, err := g.source.ReconstructDocument(ctx, gradingModel.KindModelAnswer, req.ModelAnswerDocumentId)
	if errors.Is(err, gradingModel.ErrDocumentNotFound) {
		return "", gradingModel.InvalidInput("model answer document %q has not been ingested", req.ModelAnswerDocumentId)
	}
	if err != nil {
		return "", fmt.Errorf("loading model answer %q: %w", req.ModelAnswerDocumentId, err)
	}
	return text, nil
}

func (g *Grader) keyPoints(ctx context.Context, data promptData) (string, error) {
	prompt, err := render(g.prompts.keyPoints, data)
	if err != nil {
		return "", err
	}
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("key_points_completion", time.Since(start)) }()
	return g.complete(ctx, prompt, g.opts.KeyPointsMaxTokens)
}

// relevantExcerpts finds, for every chunk of the submission, the closest
// model-answer chunks of the same assignment. Duplicates keep their best score.
func (g *Grader) relevantExcerpts(ctx context.Context, assignmentId, submissionId string) ([]gradingModel.SearchHit, error) {
	chunks, err := g.source.DocumentChunks(ctx, gradingModel.KindStudentAnswer, submissionId)
	if err != nil {
		return nil, err
	}

	best := make(map[string]gradingModel.SearchHit)
	for _, chunk := range chunks {
		hits, err := g.source.Retrieve(ctx, assignmentId, gradingModel.KindModelAnswer, chunk.Content, g.opts.ContextTopK)
		if err != nil {
			return nil, err
		}
		for _, h := range hits {
			if prev, ok := best[h.RecordId]; !ok || h.Score > prev.Score {
				best[h.RecordId] = h
			}
		}
	}

	excerpts := make([]gradingModel.SearchHit, 0, len(best))
	for _, h := range best {
		excerpts = append(excerpts, h)
	}
	sort.Slice(excerpts, func(i, j int) bool {
		if excerpts[i].Score != excerpts[j].Score {
			return excerpts[i].Score > excerpts[j].Score
		}
		return excerpts[i].RecordId < excerpts[j].RecordId
	})
	if len(excerpts) > g.opts.MaxContextExcerpts {
		excerpts = excerpts[:g.opts.MaxContextExcerpts]
	}
	return excerpts, nil
}

func (g *Grader) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	req := llm.UserPrompt(g.prompts.system, prompt, g.opts.Temperature, maxTokens)
	var text string
	err := retry.Do(ctx, retry.Policy{Retries: g.opts.Retries, Backoff: g.opts.Backoff}, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
		out, err := g.llm.Complete(callCtx, req)
		if err != nil {
			return err
		}
		text = out
		return nil
	})
	return text, err
}
