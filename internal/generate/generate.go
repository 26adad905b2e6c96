// File path: internal/generate/generate.go
package generate

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a closed enumeration of supported content-generation features.
// Every kind owns its prompt builder; there is no free-form prompt routing.
type Kind string

const (
	KindDailySummary      Kind = "daily_summary"
	KindPageEnhance       Kind = "page_enhance"
	KindWritingImprove    Kind = "writing_improve"
	KindWorkspaceAnalysis Kind = "workspace_analysis"
	KindFileAnalysis      Kind = "file_analysis"
	KindGeneric           Kind = "generic"
)

// ErrUnknownKind reports a generation kind outside the enumeration.
var ErrUnknownKind = errors.New("unknown generation kind")

// Params carries the raw material a prompt builder may draw on. Builders
// ignore fields their kind does not use.
type Params struct {
	Text    string   `json:"text"`
	Title   string   `json:"title"`
	Date    string   `json:"date"`
	Events  []string `json:"events"`
	Context string   `json:"context"`
}

// Options are the completion knobs a kind requests.
type Options struct {
	Temperature     float64
	MaxOutputTokens int
}

type entry struct {
	build   func(Params) string
	options Options
}

var registry = map[Kind]entry{
	KindDailySummary:      {build: dailySummaryPrompt, options: Options{Temperature: 0.7, MaxOutputTokens: 200}},
	KindPageEnhance:       {build: pageEnhancePrompt, options: Options{Temperature: 0.7, MaxOutputTokens: 600}},
	KindWritingImprove:    {build: writingImprovePrompt, options: Options{Temperature: 0.5, MaxOutputTokens: 600}},
	KindWorkspaceAnalysis: {build: workspaceAnalysisPrompt, options: Options{Temperature: 0.6, MaxOutputTokens: 400}},
	KindFileAnalysis:      {build: fileAnalysisPrompt, options: Options{Temperature: 0.4, MaxOutputTokens: 400}},
	KindGeneric:           {build: genericPrompt, options: Options{Temperature: 0.7, MaxOutputTokens: 800}},
}

// ParseKind validates a caller-supplied kind name.
func ParseKind(name string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := registry[kind]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	return kind, nil
}

// BuildPrompt produces the prompt text for a kind.
func BuildPrompt(kind Kind, params Params) (string, error) {
	e, ok := registry[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
	}
	return e.build(params), nil
}

// OptionsFor returns the completion knobs a kind requests.
func OptionsFor(kind Kind) Options {
	if e, ok := registry[kind]; ok {
		return e.options
	}
	return Options{Temperature: 0.7, MaxOutputTokens: 400}
}

func dailySummaryPrompt(p Params) string {
	if len(p.Events) == 0 {
		return fmt.Sprintf(
			"Today is %s and I have no events scheduled. "+
				"Please provide a brief, motivational message about making the most of a free day. "+
				"Keep it concise and positive (2-3 sentences).", p.Date)
	}
	lines := make([]string, 0, len(p.Events))
	for _, event := range p.Events {
		lines = append(lines, "• "+event)
	}
	return fmt.Sprintf(
		"I'm planning my day for %s. Here are my scheduled events:\n\n%s\n\n"+
			"Please provide a concise, helpful daily overview that includes:\n"+
			"1. A brief summary of my day\n"+
			"2. Any suggestions for time management or preparation\n"+
			"3. A motivational note\n\n"+
			"Keep the response conversational and under 150 words.",
		p.Date, strings.Join(lines, "\n"))
}

func pageEnhancePrompt(p Params) string {
	return fmt.Sprintf(
		"Improve the following page titled %q. Expand thin sections, tighten the structure "+
			"and keep the author's voice. Return only the improved content.\n\n%s", p.Title, p.Text)
}

func writingImprovePrompt(p Params) string {
	return fmt.Sprintf(
		"Improve the clarity, grammar and flow of the following text without changing its meaning. "+
			"Return only the revised text.\n\n%s", p.Text)
}

func workspaceAnalysisPrompt(p Params) string {
	return fmt.Sprintf(
		"Analyze the workspace %q and summarize how it is organized, what its content focuses on "+
			"and what could be tidied up. Workspace inventory:\n\n%s", p.Title, p.Context)
}

func fileAnalysisPrompt(p Params) string {
	prompt := fmt.Sprintf(
		"Describe the uploaded file %q and what it likely contains. Metadata:\n%s", p.Title, p.Context)
	if p.Text != "" {
		prompt += fmt.Sprintf("\n\nFile content preview:\n%s", p.Text)
	}
	return prompt
}

func genericPrompt(p Params) string {
	if p.Context != "" {
		return fmt.Sprintf("%s\n\nContext:\n%s", p.Text, p.Context)
	}
	return p.Text
}
