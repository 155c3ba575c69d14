// Package ai wraps an opaque text-completion capability as an analysis
// source. The analyzer requests a strict JSON response and tolerates
// malformed model output by returning no issues.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ludo-technologies/crev/domain"
	"go.uber.org/zap"
)

const systemPrompt = `You are a senior code reviewer. Analyze the code for:
1. Security vulnerabilities (injection, hardcoded secrets, unsafe APIs)
2. Logic errors and potential bugs
3. Code smells and maintainability issues
4. Performance issues

Respond with ONLY a JSON object of this exact shape:
{"issues": [{"category": "quality|security|performance|style|bug|maintainability", "severity": "info|low|medium|high|critical", "message": "...", "line": N, "suggestion": "..."}]}

Only report significant issues. Respond with {"issues": []} if the code is clean.`

// maxPromptContent bounds how much of a file is sent to the model
const maxPromptContent = 10000

// rawIssue is the JSON shape requested from the model
type rawIssue struct {
	Category   string `json:"category"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Line       int    `json:"line"`
	Suggestion string `json:"suggestion"`
}

type rawResponse struct {
	Issues []rawIssue `json:"issues"`
}

// Analyzer turns completion output into canonical issues
type Analyzer struct {
	client domain.CompletionClient
	logger *zap.Logger
}

// NewAnalyzer creates an analyzer over the given completion client
func NewAnalyzer(client domain.CompletionClient, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{client: client, logger: logger}
}

// Analyze sends the file to the completion capability and parses the
// constrained JSON response. A malformed response or a failed completion
// call yields an empty issue list, never an error to the caller.
func (a *Analyzer) Analyze(ctx context.Context, filePath, content, language string) []domain.Issue {
	if len(content) > maxPromptContent {
		cut := maxPromptContent
		// Never cut in the middle of a multi-byte rune
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut] + "\n... (truncated)"
	}

	userPrompt := fmt.Sprintf("Review this %s file (%s):\n\n```\n%s\n```", language, filePath, content)

	response, err := a.client.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		a.logger.Warn("completion call failed",
			zap.String("file", filePath),
			zap.Error(err))
		return []domain.Issue{}
	}

	raw, err := parseResponse(response)
	if err != nil {
		a.logger.Warn("discarding malformed completion response",
			zap.String("file", filePath),
			zap.Error(err))
		return []domain.Issue{}
	}

	issues := make([]domain.Issue, 0, len(raw.Issues))
	for _, r := range raw.Issues {
		line := r.Line
		if line < 1 {
			line = 1
		}
		issues = append(issues, domain.Issue{
			// Model labels go through the same taxonomy mapping as
			// vendor payloads; non-canonical values fall back to defaults.
			Category:   domain.MapCategory(r.Category),
			Severity:   domain.MapSeverity(r.Severity),
			File:       filePath,
			Line:       line,
			Message:    r.Message,
			Suggestion: r.Suggestion,
			Source:     domain.SourceAI,
		})
	}
	return issues
}

// parseResponse extracts the issues object from model output, stripping
// markdown fences and any prose around the JSON document.
func parseResponse(content string) (*rawResponse, error) {
	content = stripFences(strings.TrimSpace(content))

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var raw rawResponse
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}
	return &raw, nil
}

func stripFences(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return content
	}
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.Join(lines[1:end], "\n")
}
