package game

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stretchr/testify/mock"
	genai "google.golang.org/genai"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Text(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) JSON(ctx context.Context, prompt string, schema *genai.Schema) (json.RawMessage, error) {
	args := m.Called(ctx, prompt, schema)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

// stubGateway answers by schema: pairSchema gets pairs, anything else gets
// narrative.
type stubGateway struct {
	pairs        json.RawMessage
	pairsErr     error
	narrative    json.RawMessage
	narrativeErr error
	prompts      []string
}

func (s *stubGateway) Text(ctx context.Context, prompt string) (string, error) {
	return "", fmt.Errorf("not used")
}

func (s *stubGateway) JSON(ctx context.Context, prompt string, schema *genai.Schema) (json.RawMessage, error) {
	s.prompts = append(s.prompts, prompt)
	if schema == pairSchema {
		return s.pairs, s.pairsErr
	}
	return s.narrative, s.narrativeErr
}

func seqIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

var fixedPalette = []string{"#111111", "#222222", "#333333"}
