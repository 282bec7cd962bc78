package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/code-companion/backend/internal/config"
	"github.com/zhouzirui/code-companion/backend/internal/model/chat"
)

// ModelFactory builds the chat model serving one model identifier.
type ModelFactory func(ctx context.Context, modelID string) (model.BaseChatModel, error)

// Option customizes a Service.
type Option func(*Service)

// WithProbe installs the endpoint health probe used by Ping.
func WithProbe(probe func(ctx context.Context) error) Option {
	return func(s *Service) {
		s.probe = probe
	}
}

// Service submits assembled prompts to the completion capability.
type Service struct {
	factory     ModelFactory
	temperature float32
	probe       func(ctx context.Context) error

	mu     sync.Mutex
	chains map[string]compose.Runnable[[]*schema.Message, string]
}

// NewService creates the dispatcher for the configured provider. Chat models
// are built lazily, one per selected model id.
func NewService(_ context.Context, cfg config.AIConfig) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ai config: %w", err)
	}

	var opts []Option
	if cfg.Provider == config.ProviderOllama {
		client, err := cfg.NewOllamaClient()
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		opts = append(opts, WithProbe(func(ctx context.Context) error {
			version, err := client.Version(ctx)
			if err != nil {
				return err
			}
			log.Printf("[ai] ollama %s reachable at %s", version, cfg.BaseURL)
			return nil
		}))
	}

	return NewServiceWithFactory(cfg.NewChatModel, cfg.Temperature, opts...), nil
}

// NewServiceWithFactory creates a dispatcher around an arbitrary model factory.
func NewServiceWithFactory(factory ModelFactory, temperature float32, opts ...Option) *Service {
	s := &Service{
		factory:     factory,
		temperature: temperature,
		chains:      make(map[string]compose.Runnable[[]*schema.Message, string]),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks that the completion endpoint is reachable. Providers without a
// probe always succeed.
func (s *Service) Ping(ctx context.Context) error {
	if s.probe == nil {
		return nil
	}
	return classify(s.probe(ctx))
}

// Complete assembles the prompt from the transcript snapshot, runs it through
// the model chain and returns the generated text. Failures are *Error values.
func (s *Service) Complete(ctx context.Context, modelID string, turns []chat.Turn) (string, error) {
	runnable, err := s.chainFor(ctx, modelID)
	if err != nil {
		return "", classify(err)
	}

	messages := Assemble(turns)
	text, err := runnable.Invoke(ctx, messages, compose.WithChatModelOption(model.WithTemperature(s.temperature)))
	if err != nil {
		classified := classify(err)
		log.Printf("[ai] completion failed model=%s kind=%s: %v", modelID, KindOf(classified), err)
		return "", classified
	}

	log.Printf("[ai] generated response model=%s prompt_messages=%d length=%d", modelID, len(messages), len(text))
	return text, nil
}

func (s *Service) chainFor(ctx context.Context, modelID string) (compose.Runnable[[]*schema.Message, string], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if runnable, ok := s.chains[modelID]; ok {
		return runnable, nil
	}

	chatModel, err := s.factory(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model %s: %w", modelID, err)
	}

	chain := compose.NewChain[[]*schema.Message, string]()
	chain.AppendChatModel(chatModel)
	chain.AppendLambda(compose.InvokableLambda(outputText))

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	s.chains[modelID] = runnable
	return runnable, nil
}

var errEmptyResponse = errors.New("model returned an empty response")

// outputText reduces the model reply to its text content.
func outputText(_ context.Context, msg *schema.Message) (string, error) {
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", errEmptyResponse
	}
	return msg.Content, nil
}
