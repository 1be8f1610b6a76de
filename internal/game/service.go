// Package game turns document text into a matching game: a positioned scene
// graph of component/use-case pairs plus the statements shown around it.
package game

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/thywilljoshua/matchgame/internal/ai"
	"github.com/thywilljoshua/matchgame/internal/logger"
	genai "google.golang.org/genai"
)

type Options struct {
	// Seed drives the palette shuffle; 0 seeds from the clock.
	Seed int64
	// Palette, when set, is used as-is instead of a shuffled DefaultPalette.
	Palette []string
	IDs     IDGenerator
}

type Service struct {
	gateway ai.Gateway
	log     *logger.Logger
	ids     IDGenerator
	fixed   []string

	mu  sync.Mutex
	rng *rand.Rand
}

func NewService(gateway ai.Gateway, log *logger.Logger, opts Options) *Service {
	if gateway == nil {
		gateway = ai.Noop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if opts.IDs == nil {
		opts.IDs = NewUUID
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Service{
		gateway: gateway,
		log:     log,
		ids:     opts.IDs,
		fixed:   opts.Palette,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Game is everything generated for one document.
type Game struct {
	Pairs     []Pair
	Scene     Scene
	Narrative Narrative
}

// Response is the payload handed to the front end: the scene serialized as a
// string plus the statements.
type Response struct {
	JSON       string    `json:"json"`
	Statements Narrative `json:"statements"`
}

func (g *Game) Response() (Response, error) {
	b, err := json.MarshalIndent(g.Scene, "", "  ")
	if err != nil {
		return Response{}, fmt.Errorf("encode scene: %w", err)
	}
	return Response{JSON: string(b), Statements: g.Narrative}, nil
}

// Play runs pair extraction, layout and narrative generation in sequence. AI
// failures are absorbed; only a cancelled ctx is returned as an error.
func (s *Service) Play(ctx context.Context, documentText string) (*Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pairs := s.ExtractPairs(ctx, documentText)
	scene := NewBuilder(s.palette(), s.ids, s.log).Build(pairs)
	narrative := s.Narrate(ctx, pairs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Game{Pairs: pairs, Scene: scene, Narrative: narrative}, nil
}

func (s *Service) palette() []string {
	if len(s.fixed) > 0 {
		return s.fixed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return ShufflePalette(s.rng)
}

func (s *Service) callJSON(ctx context.Context, prompt string, schema *genai.Schema) (json.RawMessage, error) {
	raw, err := s.gateway.JSON(ctx, prompt, schema)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ai.ErrEmptyResponse
	}
	return raw, nil
}
