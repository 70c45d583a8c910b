package openai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kirillkom/fichepro/internal/core/ports"
	"github.com/kirillkom/fichepro/internal/infrastructure/resilience"
)

// Client wraps the OpenAI SDK for one configured chat model and one
// embedding model. Retry behavior is decided by the wrappers below,
// not here.
type Client struct {
	api        openai.Client
	model      string
	embedModel string
}

func New(apiKey, baseURL, model, embedModel string) *Client {
	// The SDK's internal retry loop stays off, retry policy lives in
	// the resilience executor.
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{
		api:        openai.NewClient(opts...),
		model:      model,
		embedModel: embedModel,
	}
}

func (c *Client) WithModel(model string) *Client {
	if model == "" || model == c.model {
		return c
	}
	clone := *c
	clone.model = model
	return &clone
}

func (c *Client) complete(ctx context.Context, system, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty choices in completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.embedModel),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(resp.Data))
	for _, item := range resp.Data {
		vector := make([]float32, len(item.Embedding))
		for i, v := range item.Embedding {
			vector[i] = float32(v)
		}
		if int(item.Index) < len(vectors) {
			vectors[item.Index] = vector
		}
	}
	return vectors, nil
}

// Generator is a TextGenerator bound to a resilience policy. The
// description pipeline uses a retrying policy, everything else runs
// single-attempt.
type Generator struct {
	client   *Client
	executor *resilience.Executor
}

func NewGenerator(client *Client, policy resilience.Policy) *Generator {
	return &Generator{
		client:   client,
		executor: resilience.NewExecutor(policy),
	}
}

// ForModel rebinds the generator to another chat model while keeping
// the same circuit breakers and retry policy.
func (g *Generator) ForModel(model string) ports.TextGenerator {
	client := g.client.WithModel(model)
	if client == g.client {
		return g
	}
	return &Generator{client: client, executor: g.executor}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	var out string
	call := func(callCtx context.Context) error {
		text, err := g.client.complete(callCtx, "", prompt)
		if err != nil {
			return err
		}
		out = text
		return nil
	}
	if err := g.executor.Execute(ctx, "openai.generate", call, classifyAPIError); err != nil {
		return "", wrapTemporaryIfNeeded("openai generate", err)
	}
	return out, nil
}

func (g *Generator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	const system = "Tu réponds uniquement avec un objet JSON valide, sans texte autour."

	var out string
	call := func(callCtx context.Context) error {
		text, err := g.client.complete(callCtx, system, prompt)
		if err != nil {
			return err
		}
		out = text
		return nil
	}
	if err := g.executor.Execute(ctx, "openai.generate_json", call, classifyAPIError); err != nil {
		return "", wrapTemporaryIfNeeded("openai generate json", err)
	}
	return ExtractJSONObject(out), nil
}

type Embedder struct {
	client   *Client
	executor *resilience.Executor
}

func NewEmbedder(client *Client, policy resilience.Policy) *Embedder {
	return &Embedder{
		client:   client,
		executor: resilience.NewExecutor(policy),
	}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var out [][]float32
	call := func(callCtx context.Context) error {
		vectors, err := e.client.embed(callCtx, texts)
		if err != nil {
			return err
		}
		out = vectors
		return nil
	}
	if err := e.executor.Execute(ctx, "openai.embed", call, classifyAPIError); err != nil {
		return nil, wrapTemporaryIfNeeded("openai embed", err)
	}
	return out, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("empty embedding result")
	}
	return vectors[0], nil
}

// ExtractJSONObject trims leading/trailing prose around the first
// top-level JSON object in a completion.
func ExtractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
