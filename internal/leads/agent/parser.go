package agent

import (
	"regexp"
	"strings"
)

// Analysis is the structured result extracted from the model's free text.
type Analysis struct {
	Summary         string
	Recommendations []string
}

// Recommendation renders the recommended actions as a dash-bulleted block,
// the shape the form layer displays.
func (a Analysis) Recommendation() string {
	lines := make([]string, 0, len(a.Recommendations))
	for _, item := range a.Recommendations {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}

var (
	summaryLabelRe        = regexp.MustCompile(`(?i)summary:`)
	recommendationLabelRe = regexp.MustCompile(`(?i)recommendation(?:s)?:`)
	leadingStarsRe        = regexp.MustCompile(`^\*+`)
	trailingStarsRe       = regexp.MustCompile(`\*+$`)
	blankRunRe            = regexp.MustCompile(`\n\s*\n`)
	listMarkerRe          = regexp.MustCompile(`(?m)^\s*(?:\d+[.)]|[-*•])\s+`)
	sentenceEndRe         = regexp.MustCompile(`[.!?]+(?:\s+|$)`)
)

// ParseAnalysis extracts the labeled summary and recommendation sections
// from model output. ok is false when neither marker is present; callers
// treat that as a soft failure and keep previously stored fields.
func ParseAnalysis(generated string) (Analysis, bool) {
	text := strings.TrimSpace(generated)
	if text == "" {
		return Analysis{}, false
	}

	sumLoc := summaryLabelRe.FindStringIndex(text)
	recLoc := recommendationLabelRe.FindStringIndex(text)
	if sumLoc == nil && recLoc == nil {
		return Analysis{}, false
	}

	var summary, recommendation string
	switch {
	case sumLoc != nil && recLoc != nil && recLoc[0] >= sumLoc[1]:
		summary = text[sumLoc[1]:recLoc[0]]
		recommendation = text[recLoc[1]:]
	case sumLoc != nil && recLoc == nil:
		summary = text[sumLoc[1]:]
	case sumLoc == nil:
		summary = text[:recLoc[0]]
		recommendation = text[recLoc[1]:]
	default:
		// Recommendation label precedes the summary label; take each
		// section up to the other marker.
		recommendation = text[recLoc[1]:sumLoc[0]]
		summary = text[sumLoc[1]:]
	}

	result := Analysis{
		Summary:         CleanText(summary),
		Recommendations: splitRecommendations(CleanText(recommendation)),
	}
	if result.Summary == "" && len(result.Recommendations) == 0 {
		return Analysis{}, false
	}
	return result, true
}

// CleanText strips decorative asterisks and collapses runs of blank lines.
func CleanText(text string) string {
	text = strings.TrimSpace(text)
	text = leadingStarsRe.ReplaceAllString(text, "")
	text = trailingStarsRe.ReplaceAllString(text, "")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// splitRecommendations breaks the recommendation block into individual
// actions. Numbered or bulleted lists split on their markers; plain prose
// falls back to sentence boundaries.
func splitRecommendations(block string) []string {
	if block == "" {
		return nil
	}

	if listMarkerRe.MatchString(block) {
		parts := listMarkerRe.Split(block, -1)
		return collectItems(parts)
	}
	return collectItems(splitSentences(block))
}

// splitSentences cuts prose after terminal punctuation. Go's regexp has no
// lookbehind, so the terminators are located and the text sliced manually.
func splitSentences(text string) []string {
	ends := sentenceEndRe.FindAllStringIndex(text, -1)
	if len(ends) == 0 {
		return []string{text}
	}

	var sentences []string
	start := 0
	for _, end := range ends {
		sentences = append(sentences, text[start:end[1]])
		start = end[1]
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

func collectItems(parts []string) []string {
	var items []string
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}
