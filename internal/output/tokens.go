package output

import (
	"fmt"
	"unicode/utf8"
)

// Context bundles end up in model prompts, so the text commands report
// their size against context-window budgets rather than bytes.

// BudgetUsage describes a serialized bundle's share of a context window.
type BudgetUsage struct {
	Tokens      int
	Budget      int
	BudgetLabel string
	Percent     float64
	Remaining   int
}

// Context window sizes usage can be reported against.
const (
	Budget32K  = 32_000
	Budget128K = 128_000
	Budget200K = 200_000
	Budget1M   = 1_000_000
)

// DefaultBudget is the window assumed when none is configured.
const DefaultBudget = Budget128K

// charsPerToken approximates tokenization of serialized bundles: JSON of
// paths, scores, and reasons tokenizes close to source code.
const charsPerToken = 4.0

// EstimateTokens approximates the token count of bundle text. Exact
// counts need the provider's tokenizer; a chars-per-token ratio is close
// enough for a budget readout.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	runes := utf8.RuneCountInString(text)
	return int(float64(runes)/charsPerToken + 0.5)
}

// FormatTokenCount renders a token count compactly: 850, 1.5k, 128.0k.
func FormatTokenCount(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("%d", tokens)
	}
	return fmt.Sprintf("%.1fk", float64(tokens)/1000)
}

// EstimateBudget reports how much of a context window the text occupies.
// A non-positive budget falls back to DefaultBudget; Remaining never goes
// negative.
func EstimateBudget(text string, budget int) BudgetUsage {
	if budget <= 0 {
		budget = DefaultBudget
	}
	tokens := EstimateTokens(text)
	remaining := budget - tokens
	if remaining < 0 {
		remaining = 0
	}
	return BudgetUsage{
		Tokens:      tokens,
		Budget:      budget,
		BudgetLabel: budgetLabel(budget),
		Percent:     float64(tokens) / float64(budget) * 100,
		Remaining:   remaining,
	}
}

func budgetLabel(budget int) string {
	switch {
	case budget >= 1_000_000 && budget%1_000_000 == 0:
		return fmt.Sprintf("%dM", budget/1_000_000)
	case budget >= 1000:
		return fmt.Sprintf("%dk", budget/1000)
	default:
		return fmt.Sprintf("%d", budget)
	}
}
