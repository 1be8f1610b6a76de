package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

const (
	keyChallenge       = "Challenge"
	keyWhatUserLearns  = "What User Will Learn"
	keyCongratulations = "Congratulations"
	keySorry           = "Sorry"
)

// Narrative is the flavor text shown around the game.
type Narrative struct {
	Challenge         string `json:"Challenge"`
	WhatUserWillLearn string `json:"What User Will Learn"`
	Congratulations   string `json:"Congratulations"`
	Sorry             string `json:"Sorry"`
}

var ErrInvalidNarrative = errors.New("invalid narrative")

var narrativeKeys = []string{keyChallenge, keyWhatUserLearns, keyCongratulations, keySorry}

var narrativeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		keyChallenge:       {Type: genai.TypeString},
		keyWhatUserLearns:  {Type: genai.TypeString},
		keyCongratulations: {Type: genai.TypeString},
		keySorry:           {Type: genai.TypeString},
	},
	Required:         narrativeKeys,
	PropertyOrdering: narrativeKeys,
}

func DefaultNarrative() Narrative {
	return Narrative{
		Challenge:         "Ready to unravel the secrets of cloud components? 🕵️‍♀️ Drag and drop each item to its correct use case. Sharpen your knowledge and build the perfect architecture! 🏗️",
		WhatUserWillLearn: "By playing this game, you'll master core cloud services for various tasks. 🧠 Understand how different components fit into a robust strategy. 🚀",
		Congratulations:   "🎉 Fantastic job! You've successfully matched all the components to their use cases! Your architecture knowledge is truly impressive. Keep up the great work! 🏆",
		Sorry:             "😔 Almost there! Some of your matches weren't quite right. Don't worry, every mistake is a step towards mastery! Review the hints and try again to perfect your architecture. 💪",
	}
}

func narrativePrompt(pairs []Pair) string {
	components := make([]string, len(pairs))
	useCases := make([]string, len(pairs))
	for i, p := range pairs {
		components[i] = p.Component
		useCases[i] = p.UseCase
	}
	return fmt.Sprintf("Generate a 'Challenge', 'What User Will Learn', 'Congratulations', and 'Sorry' message "+
		"for a drag-and-drop game. The game involves matching the following components to their use cases:\n"+
		"Components: %s\n"+
		"Use Cases: %s\n\n"+
		"Each message should be 3-4 lines long and include relevant emojis. "+
		"Format the output strictly as a JSON object with keys: 'Challenge', 'What User Will Learn', 'Congratulations', 'Sorry'.",
		strings.Join(components, ", "), strings.Join(useCases, "; "))
}

// ValidateNarrative requires an object carrying all four keys as non-empty
// strings. Extra keys are ignored.
func ValidateNarrative(raw json.RawMessage) (Narrative, error) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return Narrative{}, fmt.Errorf("%w: not a JSON object", ErrInvalidNarrative)
	}
	vals := make(map[string]string, len(narrativeKeys))
	for _, k := range narrativeKeys {
		s, ok := nonBlank(obj[k])
		if !ok {
			return Narrative{}, fmt.Errorf("%w: missing %q", ErrInvalidNarrative, k)
		}
		vals[k] = s
	}
	return Narrative{
		Challenge:         vals[keyChallenge],
		WhatUserWillLearn: vals[keyWhatUserLearns],
		Congratulations:   vals[keyCongratulations],
		Sorry:             vals[keySorry],
	}, nil
}

// Narrate asks the model for the four statements; any failure yields
// DefaultNarrative.
func (s *Service) Narrate(ctx context.Context, pairs []Pair) Narrative {
	raw, err := s.callJSON(ctx, narrativePrompt(pairs), narrativeSchema)
	if err != nil {
		s.log.Warn("narrative generation failed, using generic statements", "error", err)
		return DefaultNarrative()
	}
	n, err := ValidateNarrative(raw)
	if err != nil {
		s.log.Warn("model returned unusable statements, using generic statements", "error", err)
		return DefaultNarrative()
	}
	return n
}
