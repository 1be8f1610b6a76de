package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// Pair is one component and the use case it should be matched with.
type Pair struct {
	Component string `json:"component"`
	UseCase   string `json:"use_case"`
}

var ErrInvalidPairs = errors.New("invalid pair list")

var pairSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"component": {Type: genai.TypeString},
			"use_case":  {Type: genai.TypeString},
		},
		Required:         []string{"component", "use_case"},
		PropertyOrdering: []string{"component", "use_case"},
	},
}

// DefaultPairs is the canonical example set used whenever the model gives
// nothing usable. A fresh slice is returned on every call.
func DefaultPairs() []Pair {
	return []Pair{
		{Component: "CloudWatch Logs", UseCase: "Centralized storage and monitoring of log data from AWS resources, applications, and custom logs."},
		{Component: "Kinesis Data Streams", UseCase: "Real-time collection and processing of high-volume log data for streaming analytics."},
		{Component: "Amazon S3", UseCase: "Long-term archival and storage of log files for compliance and historical analysis."},
		{Component: "CloudWatch Logs Insights", UseCase: "Query and analyze log data interactively to troubleshoot issues and gain insights."},
		{Component: "AWS Lambda", UseCase: "Process and transform log data automatically before routing to storage or analytics services."},
		{Component: "Amazon OpenSearch Service", UseCase: "Search, visualize, and analyze large volumes of log data for operational intelligence."},
	}
}

func pairsPrompt(documentText string) string {
	return "From the following document content, identify distinct 'components' and their corresponding 'use_cases'. " +
		"The components are typically names of services or tools, and the use cases describe their primary function. " +
		"Extract these as pairs. Ensure each component is unique. " +
		"Format the output strictly as a JSON array of objects, where each object MUST have two keys: 'component' (string) and 'use_case' (string).\n\n" +
		"Document Content:\n" + documentText
}

// ValidatePairs checks a structured model answer. The whole answer is
// rejected if any element is malformed: not an object, missing "component" or
// "use_case", or holding a value that is not a string or is blank after
// trimming. A blank value counts as missing.
func ValidatePairs(raw json.RawMessage) ([]Pair, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: not a JSON array: %v", ErrInvalidPairs, err)
	}
	out := make([]Pair, 0, len(items))
	for i, item := range items {
		var obj map[string]any
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrInvalidPairs, i)
		}
		component, ok := nonBlank(obj["component"])
		if !ok {
			return nil, fmt.Errorf("%w: element %d has no component", ErrInvalidPairs, i)
		}
		useCase, ok := nonBlank(obj["use_case"])
		if !ok {
			return nil, fmt.Errorf("%w: element %d has no use_case", ErrInvalidPairs, i)
		}
		out = append(out, Pair{Component: component, UseCase: useCase})
	}
	return out, nil
}

func nonBlank(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// DedupePairs keeps the first pair for each component, in order.
func DedupePairs(pairs []Pair) []Pair {
	seen := make(map[string]bool, len(pairs))
	out := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if seen[p.Component] {
			continue
		}
		seen[p.Component] = true
		out = append(out, p)
	}
	return out
}

// ExtractPairs asks the model for component/use-case pairs found in
// documentText. It never fails: any gateway error, malformed answer or empty
// list yields DefaultPairs.
func (s *Service) ExtractPairs(ctx context.Context, documentText string) []Pair {
	raw, err := s.callJSON(ctx, pairsPrompt(documentText), pairSchema)
	if err != nil {
		s.log.Warn("pair extraction failed, using default pairs", "error", err)
		return DefaultPairs()
	}
	pairs, err := ValidatePairs(raw)
	if err != nil {
		s.log.Warn("model returned unusable pairs, using default pairs", "error", err)
		return DefaultPairs()
	}
	pairs = DedupePairs(pairs)
	if len(pairs) == 0 {
		s.log.Warn("model extracted no pairs, using default pairs")
		return DefaultPairs()
	}
	s.log.Info("extracted pairs", "count", len(pairs))
	return pairs
}
