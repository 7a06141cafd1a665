package planner

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"formpilot/internal/domain/entity"
)

// defaultParsedConfidence is assumed when the model omits a confidence.
const defaultParsedConfidence = 0.6

var (
	fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)```")
	bareKeyRe     = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_-]*)\s*:`)
	singleQuoteRe = regexp.MustCompile(`'((?:[^'\\]|\\.)*)'`)
	trailingComma = regexp.MustCompile(`,\s*([\]}])`)
	fragmentRe    = regexp.MustCompile(`\{[^{}]*selector[^{}]*\}`)
)

// ResponseParser salvages an action list from the generative backend's
// raw text, which is never trusted to be well-formed JSON. It is a chain
// of fallible stages; when every stage fails it returns nil and the
// orchestrator falls through to the next attempt.
type ResponseParser struct{}

func NewResponseParser() *ResponseParser {
	return &ResponseParser{}
}

// Parse returns the validated actions found in raw, or nil.
func (p *ResponseParser) Parse(raw string) []entity.AgentAction {
	candidate := extractCandidate(raw)
	if candidate != "" {
		if actions := parseActions(candidate); len(actions) > 0 {
			return actions
		}
		if actions := parseActions(repairJSON(candidate)); len(actions) > 0 {
			return actions
		}
	}
	return scanFragments(raw)
}

// extractCandidate isolates the JSON-looking region of raw: a fenced
// code block when present, else the span between the first bracket and
// the last matching one.
func extractCandidate(raw string) string {
	if m := fencedBlockRe.FindStringSubmatch(raw); len(m) == 2 {
		return strings.TrimSpace(m[1])
	}

	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start >= 0 && end > start {
		// prefer the enclosing object when the array belongs to one
		if objStart := strings.Index(raw, "{"); objStart >= 0 && objStart < start {
			if objEnd := strings.LastIndex(raw, "}"); objEnd > end {
				return strings.TrimSpace(raw[objStart : objEnd+1])
			}
		}
		return strings.TrimSpace(raw[start : end+1])
	}

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			return strings.TrimSpace(raw[start : end+1])
		}
	}
	return strings.TrimSpace(raw)
}

// parseActions accepts either the structured-output shape
// {"actions": [...]} or a legacy bare array.
func parseActions(candidate string) []entity.AgentAction {
	if candidate == "" || !gjson.Valid(candidate) {
		return nil
	}

	root := gjson.Parse(candidate)
	arr := root
	if root.IsObject() {
		arr = root.Get("actions")
	}
	if !arr.IsArray() {
		return nil
	}

	var actions []entity.AgentAction
	arr.ForEach(func(_, item gjson.Result) bool {
		if action, ok := validateAction(item); ok {
			actions = append(actions, action)
		}
		return true
	})
	return actions
}

// validateAction schema-checks one candidate: selector non-empty, type
// known; the rest defaults rather than rejects.
func validateAction(item gjson.Result) (entity.AgentAction, bool) {
	if !item.IsObject() {
		return entity.AgentAction{}, false
	}

	selector := strings.TrimSpace(item.Get("selector").String())
	if selector == "" {
		return entity.AgentAction{}, false
	}

	actionType := entity.ActionType(strings.TrimSpace(item.Get("type").String()))
	if !actionType.Known() {
		return entity.AgentAction{}, false
	}

	confidence := defaultParsedConfidence
	if c := item.Get("confidence"); c.Exists() {
		confidence = clampConfidence(c.Float())
	}

	return entity.AgentAction{
		ID:         uuid.NewString(),
		Type:       actionType,
		Selector:   selector,
		FieldLabel: item.Get("fieldLabel").String(),
		Value:      item.Get("value").String(),
		Reasoning:  item.Get("reasoning").String(),
		Confidence: confidence,
	}, true
}

// repairJSON is best-effort salvage, not a grammar: coerce single-quoted
// strings, quote bare keys, strip trailing commas, then close whatever
// brackets were left open.
func repairJSON(s string) string {
	s = singleQuoteRe.ReplaceAllString(s, `"$1"`)
	s = bareKeyRe.ReplaceAllString(s, `$1"$2":`)
	s = trailingComma.ReplaceAllString(s, `$1`)
	return balanceBrackets(s)
}

// balanceBrackets appends the closers for any brackets still open at the
// end of s, ignoring brackets inside string literals.
func balanceBrackets(s string) string {
	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '[':
			stack = append(stack, ']')
		case c == '{':
			stack = append(stack, '}')
		case c == ']' || c == '}':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(s)
	for i := len(stack) - 1; i >= 0; i-- {
		sb.WriteByte(stack[i])
	}
	return sb.String()
}

// scanFragments is the last stage: pick individual object-shaped
// substrings that mention a selector out of the raw text and keep
// whichever ones validate. A partial result set is acceptable.
func scanFragments(raw string) []entity.AgentAction {
	var actions []entity.AgentAction
	for _, fragment := range fragmentRe.FindAllString(raw, -1) {
		candidate := fragment
		if !gjson.Valid(candidate) {
			candidate = repairJSON(candidate)
			if !gjson.Valid(candidate) {
				continue
			}
		}
		if action, ok := validateAction(gjson.Parse(candidate)); ok {
			actions = append(actions, action)
		}
	}
	return actions
}
