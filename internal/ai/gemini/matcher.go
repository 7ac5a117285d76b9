package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/farol-inclusivo/farol-matcher/internal/ai"
	"github.com/farol-inclusivo/farol-matcher/internal/farol"
	"github.com/farol-inclusivo/farol-matcher/internal/logger"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, systemInstruction, message string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	systemInstruction = "You are a recruiting assistant for an inclusive jobs board. " +
		"Follow the template sections in order and answer only with the requested JSON schema."

	defaultMaxLogLength     = 200
	maxUserInstructionRunes = 500
	defaultTone             = "Friendly"
	noneValue               = "none"
)

// PromptOverrides are candidate preferences injected into the prompt.
type PromptOverrides struct {
	ExtraCriteria     string `mapstructure:"extra-criteria"`
	DealBreakers      string `mapstructure:"deal-breakers"`
	CustomKeywords    string `mapstructure:"custom-keywords"`
	Tone              string `mapstructure:"tone"`
	RegionConstraints string `mapstructure:"region-constraints"`
	UserInstructions  string `mapstructure:"user-instructions"`
}

type Matcher struct {
	generator contentGenerator
	minScore  float64
	logger    *zap.Logger
	maxLogLen int

	mu        sync.RWMutex
	overrides PromptOverrides
}

func NewMatcher(generator contentGenerator, minScore float64, maxLogLength int, log *zap.Logger) *Matcher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Matcher{
		generator: generator,
		minScore:  minScore,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

func (m *Matcher) SetPromptOverrides(overrides PromptOverrides) {
	m.mu.Lock()
	m.overrides = overrides
	m.mu.Unlock()
}

// Evaluate asks the model whether job suits profile. Scores under the
// matcher's minimum force Fit to false.
func (m *Matcher) Evaluate(ctx context.Context, profile *farol.Profile, job *farol.Job) (*ai.FitAssessment, error) {
	if profile == nil {
		return nil, errors.New("candidate profile is required")
	}
	if job == nil {
		return nil, errors.New("job is required")
	}

	profileJSON, err := json.MarshalIndent(profilePayload(profile), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal profile payload: %w", err)
	}

	jobJSON, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal job payload: %w", err)
	}

	m.mu.RLock()
	overrides := m.overrides
	m.mu.RUnlock()

	prompt := buildPrompt(string(profileJSON), string(jobJSON), overrides)

	fields := []zap.Field{zap.Int(logger.FieldJobID, job.ID), zap.Int("profile_id", profile.ID)}

	m.logger.Debug("gemini generate content request", append(fields,
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, m.maxLogLen)),
	)...)

	raw, err := m.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("gemini generate content response", append(fields,
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, m.maxLogLen)),
	)...)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	if m.minScore > 0 && assessment.Score < m.minScore {
		m.logger.Debug("set fit to false by score threshold", append(fields,
			zap.Float64("score", assessment.Score),
			zap.Float64("threshold", m.minScore),
		)...)
		assessment.Fit = false
	}

	assessment.Raw = raw
	return assessment, nil
}

// profilePayload keeps the fields relevant to matching and leaves out contact data.
func profilePayload(p *farol.Profile) map[string]any {
	return map[string]any{
		"id":                   p.ID,
		"bio":                  p.Bio,
		"location":             p.Location,
		"experience_summary":   p.ExperienceSummary,
		"has_disability":       p.HasDisability,
		"disability_type":      p.DisabilityType,
		"accessibility_needs":  p.AccessibilityNeeds,
		"disability_described": p.DisabilityDescription != "",
		"portfolio_or_github":  p.PortfolioURL != "" || p.GitHubURL != "",
	}
}

func buildPrompt(profileJSON, jobJSON string, o PromptOverrides) string {
	tone := singleLine(o.Tone)
	if tone == "" {
		tone = defaultTone
	}

	replacer := strings.NewReplacer(
		"{{EXTRA_CRITERIA}}", orNone(singleLine(o.ExtraCriteria)),
		"{{DEAL_BREAKERS}}", orNone(singleLine(o.DealBreakers)),
		"{{CUSTOM_KEYWORDS}}", orNone(keywordList(o.CustomKeywords)),
		"{{TONE}}", tone,
		"{{REGION_CONSTRAINTS}}", orNone(singleLine(o.RegionConstraints)),
		"{{USER_INSTRUCTIONS}}", userInstructions(o.UserInstructions),
		"{{PROFILE_JSON}}", profileJSON,
		"{{JOB_JSON}}", jobJSON,
	)

	return replacer.Replace(promptTemplate)
}

// singleLine collapses whitespace and turns square brackets into parentheses
// so user text cannot open a new prompt section.
func singleLine(s string) string {
	s = neutralizeBrackets(s)
	return strings.Join(strings.Fields(s), " ")
}

func neutralizeBrackets(s string) string {
	return strings.NewReplacer("[", "(", "]", ")").Replace(s)
}

func keywordList(s string) string {
	parts := strings.Split(s, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if kw := singleLine(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return strings.Join(keywords, ", ")
}

func userInstructions(s string) string {
	s = strings.TrimSpace(s)
	if runes := []rune(s); len(runes) > maxUserInstructionRunes {
		s = string(runes[:maxUserInstructionRunes])
	}

	lines := make([]string, 0)
	for _, line := range strings.Split(s, "\n") {
		if line = singleLine(line); line != "" {
			lines = append(lines, "  - "+line)
		}
	}

	if len(lines) == 0 {
		return "  - " + noneValue
	}
	return strings.Join(lines, "\n")
}

func orNone(s string) string {
	if s == "" {
		return noneValue
	}
	return s
}

func parseResponse(raw string) (*ai.FitAssessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		score = 0
	}

	return &ai.FitAssessment{
		Fit:     coerceBool(data["fit"]),
		Score:   score,
		Reason:  coerceString(data["reason"]),
		Message: coerceString(data["message"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes" || lower == "sim"
	case float64:
		return val != 0
	default:
		return false
	}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
