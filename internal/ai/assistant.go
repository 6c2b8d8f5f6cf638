package ai

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mkellner/talent-match/internal/logger"
)

// Evaluation is the result of scoring a resume against a job description.
// Score is always in [0,100] and Feedback is always non-empty, even when
// the upstream call failed or the response did not follow the template.
type Evaluation struct {
	Score    int
	Feedback string
}

// Fallback content returned when the model is unreachable or answers off
// template. The upstream failure is logged but never surfaced to callers.
const (
	fallbackScore    = 75
	fallbackFeedback = "The candidate appears to have relevant skills and experience for this position. " +
		"Consider discussing specific project experience during an interview."
	parseFallbackFeedback = "The candidate has relevant skills for this position."
	fallbackSummary       = "Experienced professional with a background in technology and software development. " +
		"Possesses relevant skills and experience for the position."
	fallbackCandidateFeedback = "Your technical skills align well with the position requirements. " +
		"Consider highlighting more specific project examples and quantifiable achievements to strengthen your application."
)

const maxLogPreview = 200

// Assistant runs the generative-model operations of the matching flow.
type Assistant struct {
	client Client
	logger *zap.Logger
}

// NewAssistant builds an Assistant on top of a generative client.
func NewAssistant(client Client, log *zap.Logger) *Assistant {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assistant{client: client, logger: log}
}

// EvaluateMatch asks the model to score how well a resume fits a job
// description. The result is advisory: two calls with identical input may
// differ, and a fallback is substituted silently when the call or the
// template parse fails.
func (a *Assistant) EvaluateMatch(ctx context.Context, resumeText, jobDescription string) Evaluation {
	prompt := buildEvaluationPrompt(resumeText, jobDescription)

	raw, err := a.generate(ctx, "evaluate match", prompt)
	if err != nil {
		a.logger.Warn("match evaluation failed, using fallback", zap.Error(err))
		return Evaluation{Score: fallbackScore, Feedback: fallbackFeedback}
	}

	parsed := parseEvaluation(raw)
	eval := Evaluation{Score: fallbackScore, Feedback: parseFallbackFeedback}
	if parsed.ScoreOK {
		eval.Score = parsed.Score
	} else {
		a.logger.Warn("model response missing score line",
			zap.String("response_preview", logger.TruncateForLog(raw, maxLogPreview)))
	}
	if parsed.FeedbackOK {
		eval.Feedback = parsed.Feedback
	}

	return eval
}

// SummarizeResume produces a short professional summary of a resume.
func (a *Assistant) SummarizeResume(ctx context.Context, resumeText string) string {
	prompt := buildSummaryPrompt(resumeText)

	summary, err := a.generate(ctx, "summarize resume", prompt)
	if err != nil {
		a.logger.Warn("resume summarization failed, using fallback", zap.Error(err))
		return fallbackSummary
	}
	return summary
}

// CandidateFeedback generates constructive advice for a candidate about a
// specific job posting.
func (a *Assistant) CandidateFeedback(ctx context.Context, resumeText, jobDescription string) string {
	prompt := buildFeedbackPrompt(resumeText, jobDescription)

	feedback, err := a.generate(ctx, "candidate feedback", prompt)
	if err != nil {
		a.logger.Warn("candidate feedback generation failed, using fallback", zap.Error(err))
		return fallbackCandidateFeedback
	}
	return feedback
}

func (a *Assistant) generate(ctx context.Context, op, prompt string) (string, error) {
	a.logger.Debug("gemini generate content request",
		zap.String("operation", op),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, maxLogPreview)),
	)

	raw, err := a.client.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	a.logger.Debug("gemini generate content response",
		zap.String("operation", op),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, maxLogPreview)),
	)
	return raw, nil
}

func buildEvaluationPrompt(resumeText, jobDescription string) string {
	return fmt.Sprintf(`Evaluate how well the candidate's resume matches the job description.
Provide a match score from 0-100 and specific feedback on strengths and areas for improvement.

Resume:
%s

Job Description:
%s

Format your response exactly as follows:
Score: [number between 0-100]
Feedback: [detailed feedback with strengths and areas for improvement]`, resumeText, jobDescription)
}

func buildSummaryPrompt(resumeText string) string {
	return fmt.Sprintf(`Summarize the following resume in a concise, professional manner.
Focus on key skills, experience, and qualifications.

Resume:
%s

Summary:`, resumeText)
}

func buildFeedbackPrompt(resumeText, jobDescription string) string {
	return fmt.Sprintf(`Based on the candidate's resume and the job description, provide constructive feedback
for the candidate. Include strengths, areas for improvement, and specific suggestions
to better align with the job requirements.

Resume:
%s

Job Description:
%s

Feedback:`, resumeText, jobDescription)
}
