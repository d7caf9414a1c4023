// Package parsing recovers a structured story batch from raw LLM output text.
// Models are asked for JSON but routinely return fenced blocks, prose-wrapped
// objects, or plain bullet lists; Parse runs staged recovery strategies and the
// first success wins. It is a total function: it never returns an error.
package parsing

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	titleLineRe = regexp.MustCompile(`(?i)^title:\s*(.+)$`)
	numberedRe  = regexp.MustCompile(`^\d+\.\s*(.+)$`)
	jsonTitleRe = regexp.MustCompile(`"title"\s*:\s*"([^"]+)"`)
	criterionRe = regexp.MustCompile(`^[-*]\s+(.+)$`)
)

// Parse attempts to recover a {"stories": [...]} object from raw model text.
// Stages, first success wins: direct JSON decode after fence stripping, a
// first-{ to last-} slice decode, then line-based heuristic reconstruction.
// Returns (nil, false) when nothing usable can be recovered.
func Parse(raw string) (map[string]any, bool) {
	stripped := stripWrapping(raw)

	if obj, ok := decodeObject(stripped); ok {
		return obj, true
	}
	if obj, ok := decodeBraceSlice(stripped); ok {
		return obj, true
	}
	return reconstructFromLines(raw)
}

// stripWrapping removes surrounding whitespace, backtick fences, and an
// optional leading "json" language marker.
func stripWrapping(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "` ")
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, "json\n"); ok {
		text = rest
	}
	return strings.TrimSpace(text)
}

// decodeObject attempts a direct JSON decode into an object root.
func decodeObject(text string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// decodeBraceSlice decodes the slice between the first '{' and the last '}',
// tolerating prose before and after a single JSON object.
func decodeBraceSlice(text string) (map[string]any, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	return decodeObject(text[start : end+1])
}

// candidate is a story being assembled from heuristic line scanning.
type candidate struct {
	title    string
	criteria []string
}

// reconstructFromLines scans non-empty lines for story shapes: "Title: ..."
// lines, numbered-list lines, or lines carrying a JSON "title" pair start a new
// candidate; "- " / "* " lines become acceptance criteria of the current one.
func reconstructFromLines(raw string) (map[string]any, bool) {
	var cands []candidate
	var current *candidate

	flush := func() {
		if current != nil {
			cands = append(cands, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if title, ok := extractTitle(line); ok {
			flush()
			current = &candidate{title: title}
			continue
		}

		if m := criterionRe.FindStringSubmatch(line); m != nil && current != nil {
			crit := strings.TrimSuffix(strings.TrimSpace(m[1]), ",")
			current.criteria = append(current.criteria, crit)
		}
	}
	flush()

	stories := make([]any, 0, len(cands))
	for _, c := range cands {
		title := strings.TrimSpace(c.title)
		if title == "" {
			continue
		}
		criteria := make([]any, 0, len(c.criteria))
		for _, crit := range c.criteria {
			crit = strings.TrimSpace(crit)
			if crit != "" {
				criteria = append(criteria, crit)
			}
		}
		stories = append(stories, map[string]any{
			"title":               title,
			"acceptance_criteria": criteria,
		})
	}
	if len(stories) == 0 {
		return nil, false
	}
	return map[string]any{"stories": stories}, true
}

// extractTitle reports whether the line starts a new story candidate and
// returns the title text if so.
func extractTitle(line string) (string, bool) {
	if m := titleLineRe.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	if m := numberedRe.FindStringSubmatch(line); m != nil {
		// "3. Acceptance criteria:" is a section header, not a story.
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(m[1])), "acceptance") {
			return "", false
		}
		return m[1], true
	}
	if m := jsonTitleRe.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	return "", false
}
