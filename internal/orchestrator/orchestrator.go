// Package orchestrator talks to the AI services: it turns a chat transcript
// into a game spec and generates the spec's image assets concurrently.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arcade-studio/internal/assets"
	"github.com/vovakirdan/arcade-studio/internal/round"
	"github.com/vovakirdan/arcade-studio/internal/spec"
)

var (
	// ErrNotConfigured is returned when a service has no endpoint or key.
	ErrNotConfigured = errors.New("orchestrator: AI service not configured")
	// ErrAttemptsExhausted is returned when every retry failed.
	ErrAttemptsExhausted = errors.New("orchestrator: attempts exhausted")
	// ErrNoJSON is returned when a reply carries no JSON object.
	ErrNoJSON = errors.New("orchestrator: no JSON object in reply")
)

// DefaultReply is used when the assistant answers without a reply text.
const DefaultReply = "I have drafted the game spec."

// Options configures an Orchestrator.
type Options struct {
	Chat             ChatClient
	Images           ImageClient
	Remover          BackgroundRemover
	RemoveBackground bool
	Style            string
	MaxAttempts      int
	Backoff          time.Duration // wait before the second attempt, doubled after
	Logger           *log.Logger
}

// Orchestrator drives the AI collaborators.
type Orchestrator struct {
	opts   Options
	logger *log.Logger

	mu    sync.RWMutex
	style string
}

// New creates an orchestrator.
func New(opts Options) *Orchestrator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Orchestrator{opts: opts, logger: logger, style: opts.Style}
}

// SetStyle sets the art style prepended to image prompts.
func (o *Orchestrator) SetStyle(style string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.style = strings.TrimSpace(style)
}

// Style returns the current art style.
func (o *Orchestrator) Style() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.style
}

// Reply is the assistant's answer to a user message.
type Reply struct {
	Message string
	Spec    spec.GameSpec
	Assets  bool // whether the assistant asked for image generation
}

// decision is the JSON shape the assistant is told to answer with.
type decision struct {
	Reply            string         `json:"reply"`
	UpdatedSpec      *spec.GameSpec `json:"updatedSpec"`
	TriggerAllImages bool           `json:"triggerAllImages"`
}

// Generate asks the assistant for an updated spec given the transcript.
// Malformed replies are retried like transport failures.
func (o *Orchestrator) Generate(ctx context.Context, transcript []spec.Message, current spec.GameSpec) (Reply, error) {
	if o.opts.Chat == nil {
		return Reply{}, fmt.Errorf("%w: chat", ErrNotConfigured)
	}
	messages, err := buildMessages(transcript, current)
	if err != nil {
		return Reply{}, err
	}

	var out Reply
	err = o.retry(ctx, "chat", func() error {
		text, err := o.opts.Chat.Complete(ctx, messages)
		if err != nil {
			return err
		}
		d, err := parseDecision(text)
		if err != nil {
			return err
		}
		out = Reply{Message: d.Reply, Spec: current.Clone(), Assets: d.TriggerAllImages}
		if d.UpdatedSpec != nil {
			out.Spec = d.UpdatedSpec.Normalize()
		}
		if strings.TrimSpace(out.Message) == "" {
			out.Message = DefaultReply
		}
		return nil
	})
	if err != nil {
		return Reply{}, err
	}
	return out, nil
}

// Deliver receives the outcome of one slot.
type Deliver func(roundID string, slot assets.Slot, o round.Outcome)

// GenerateAssets generates every pending slot of r concurrently and calls
// deliver once per slot. Sprites are background-stripped when enabled;
// a failed strip keeps the original image. The background slot is never
// stripped. It returns once every slot has been delivered.
func (o *Orchestrator) GenerateAssets(ctx context.Context, r round.Round, deliver Deliver) {
	var wg sync.WaitGroup
	for _, slot := range r.Expected {
		if r.Spec.Asset(slot).HasURL() {
			continue
		}
		prompt := strings.TrimSpace(r.Spec.Prompt(slot))
		if prompt == "" {
			prompt = r.Spec.Asset(slot).NameOr(string(slot))
		}

		wg.Add(1)
		go func(slot assets.Slot, prompt string) {
			defer wg.Done()
			deliver(r.ID, slot, o.generateSlot(ctx, r.ID, slot, prompt))
		}(slot, prompt)
	}
	wg.Wait()
}

func (o *Orchestrator) generateSlot(ctx context.Context, roundID string, slot assets.Slot, prompt string) round.Outcome {
	if o.opts.Images == nil {
		return round.Failed(fmt.Errorf("%w: images", ErrNotConfigured))
	}
	prompt = o.stylePrompt(prompt)

	var image string
	err := o.retry(ctx, "image "+string(slot), func() error {
		var err error
		image, err = o.opts.Images.Generate(ctx, prompt)
		return err
	})
	if err != nil {
		o.logger.Warn("asset generation failed", "round", roundID, "slot", slot, "error", err)
		return round.Failed(err)
	}

	if slot == assets.SlotBackground || !o.opts.RemoveBackground || o.opts.Remover == nil {
		return round.Resolved(image)
	}
	stripped, err := o.opts.Remover.Remove(ctx, image)
	if err != nil {
		o.logger.Warn("background removal failed, keeping original", "round", roundID, "slot", slot, "error", err)
		return round.Resolved(image)
	}
	return round.Resolved(stripped)
}

func (o *Orchestrator) stylePrompt(prompt string) string {
	if style := o.Style(); style != "" {
		return style + ", " + prompt
	}
	return prompt
}

// retry runs fn up to MaxAttempts times. ErrNotConfigured and context
// errors stop immediately.
func (o *Orchestrator) retry(ctx context.Context, what string, fn func() error) error {
	var last error
	wait := o.opts.Backoff
	for attempt := 1; attempt <= o.opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		last = fn()
		if last == nil {
			return nil
		}
		if errors.Is(last, ErrNotConfigured) || errors.Is(last, context.Canceled) || errors.Is(last, context.DeadlineExceeded) {
			return last
		}
		o.logger.Debug("attempt failed", "call", what, "attempt", attempt, "error", last)

		if attempt < o.opts.MaxAttempts && wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
		}
	}
	return fmt.Errorf("%w: %s failed %d times: %v", ErrAttemptsExhausted, what, o.opts.MaxAttempts, last)
}

// parseDecision reads the assistant's JSON, tolerating prose around it.
func parseDecision(text string) (decision, error) {
	var d decision
	if err := json.Unmarshal([]byte(text), &d); err == nil {
		return d, nil
	}
	obj, err := ExtractJSON(text)
	if err != nil {
		return d, err
	}
	if err := json.Unmarshal([]byte(obj), &d); err != nil {
		return d, fmt.Errorf("orchestrator: cannot decode reply: %w", err)
	}
	return d, nil
}

// ExtractJSON returns the span from the first '{' to the last '}'.
func ExtractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}

func buildMessages(transcript []spec.Message, current spec.GameSpec) ([]ChatMessage, error) {
	cur, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: cannot encode current spec: %w", err)
	}

	msgs := []ChatMessage{{Role: "system", Content: systemPrompt(string(cur))}}
	for _, m := range transcript {
		switch m.Role {
		case spec.RoleUser:
			msgs = append(msgs, ChatMessage{Role: "user", Content: m.Content})
		case spec.RoleAI:
			msgs = append(msgs, ChatMessage{Role: "assistant", Content: m.Content})
		}
	}
	return msgs, nil
}

func systemPrompt(current string) string {
	names := make([]string, 0, len(spec.Templates()))
	for _, t := range spec.Templates() {
		names = append(names, `"`+string(t)+`"`)
	}
	return `You are an autonomous game development assistant.
Fill out the entire GameSpec JSON for the user's request in one step.
Reply with a single JSON object and nothing else, in the language of the user's last message.

Steps:
1. Pick the best template: ` + strings.Join(names, ", ") + `.
2. Invent names for the sprites and a theme.
3. Write image prompts in "imagePrompts". Sprite prompts must end with "white background, isolated".
4. Set "triggerAllImages" to true when images should be generated.

Current spec:
` + current + `

Reply format:
{
  "reply": "Sure! A pixel-art racing game coming up.",
  "updatedSpec": {
    "template": "racing",
    "playerSprite": {"name": "Red Kart", "url": null, "scale": 0.5},
    "obstacleSprite": {"name": "Rock", "url": null, "scale": 0.5},
    "backgroundImage": {"name": "Desert Track", "url": null},
    "control": "keyboard",
    "theme": "desert",
    "imagePrompts": {
      "player": "pixel art of a red racing kart, top down view, white background, isolated",
      "obstacle": "pixel art of a grey rock, white background, isolated",
      "background": "pixel art of a desert racing track, top down view"
    }
  },
  "triggerAllImages": true
}`
}
