package ai

import (
	"regexp"
	"strconv"
	"strings"
)

// The model is instructed to answer in a fixed line template:
//
//	Score: <integer 0-100>
//	Feedback: <free text>
//
// parseEvaluation pulls both fields out and reports, per field, whether
// the template was followed. Callers decide the fallback; this parser
// never invents values.
type parsedEvaluation struct {
	Score      int
	ScoreOK    bool
	Feedback   string
	FeedbackOK bool
}

var (
	scoreRe    = regexp.MustCompile(`(?i)Score:\s*(\d+)`)
	feedbackRe = regexp.MustCompile(`(?is)Feedback:\s*(.+)`)
)

func parseEvaluation(raw string) parsedEvaluation {
	var p parsedEvaluation

	if m := scoreRe.FindStringSubmatch(raw); m != nil {
		score, err := strconv.Atoi(m[1])
		if err == nil {
			p.Score = clampScore(score)
			p.ScoreOK = true
		}
	}

	if m := feedbackRe.FindStringSubmatch(raw); m != nil {
		feedback := strings.TrimSpace(m[1])
		if feedback != "" {
			p.Feedback = feedback
			p.FeedbackOK = true
		}
	}

	return p
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
