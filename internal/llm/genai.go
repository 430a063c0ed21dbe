package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/bimmerbailey/surprise/internal/config"
	"google.golang.org/genai"
)

const (
	defaultGeminiModel = "gemini-2.5-flash"
	defaultImagenModel = "imagen-3.0-generate-002"
)

// geminiProvider implements Provider and ImageGenerator on Google's GenAI SDK.
type geminiProvider struct {
	client     *genai.Client
	model      string
	imageModel string
	logger     *slog.Logger
}

func newGeminiProvider(ctx context.Context, cfg config.GeminiConfig, logger *slog.Logger) (*geminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf(
			"%w: gemini api key missing: set GEMINI_API_KEY, [gemini] api_key in secrets.toml, or llm.gemini.api_key in config",
			ErrNotConfigured,
		)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	p := &geminiProvider{
		client:     client,
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
		logger:     logger,
	}
	if p.model == "" {
		p.model = defaultGeminiModel
	}
	if p.imageModel == "" {
		p.imageModel = defaultImagenModel
	}

	logger.Info("initialized gemini provider", "model", p.model, "image_model", p.imageModel)
	return p, nil
}

// splitSystem pulls system messages into a single system instruction since
// Gemini carries it outside the turn list.
func splitSystem(messages []Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return strings.Join(system, "\n\n"), contents
}

func (p *geminiProvider) request(messages []Message, opts *ChatOptions) (string, []*genai.Content, *genai.GenerateContentConfig) {
	system, contents := splitSystem(messages)

	model := p.model
	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if opts != nil {
		if opts.Model != "" {
			model = opts.Model
		}
		cfg.Temperature = genai.Ptr(opts.Temperature)
		if opts.MaxTokens > 0 {
			cfg.MaxOutputTokens = int32(opts.MaxTokens)
		}
	}
	return model, contents, cfg
}

func (p *geminiProvider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	if len(messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}

	model, contents, cfg := p.request(messages, opts)
	p.logger.Debug("sending chat request", "provider", "gemini", "model", model, "messages", len(messages))

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		p.logger.Error("chat request failed", "provider", "gemini", "error", err)
		return nil, wrapGenAIError(err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: empty completion from gemini", ErrInvalidResponse)
	}

	out := &Response{Content: text, Model: model}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if resp.UsageMetadata != nil {
		out.TokensPrompt = int(resp.UsageMetadata.PromptTokenCount)
		out.TokensTotal = int(resp.UsageMetadata.TotalTokenCount)
	}
	return out, nil
}

func (p *geminiProvider) ChatStream(ctx context.Context, messages []Message, opts *ChatOptions) (<-chan StreamEvent, error) {
	if len(messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}

	model, contents, cfg := p.request(messages, opts)
	eventChan := make(chan StreamEvent, 10)

	go func() {
		defer close(eventChan)
		for resp, err := range p.client.Models.GenerateContentStream(ctx, model, contents, cfg) {
			if err != nil {
				eventChan <- StreamEvent{Error: wrapGenAIError(err), Done: true}
				return
			}
			if chunk := resp.Text(); chunk != "" {
				select {
				case eventChan <- StreamEvent{Content: chunk}:
				case <-ctx.Done():
					eventChan <- StreamEvent{Error: fmt.Errorf("%w: %v", ErrContextCanceled, ctx.Err()), Done: true}
					return
				}
			}
		}
		eventChan <- StreamEvent{Done: true}
	}()

	return eventChan, nil
}

func (p *geminiProvider) Heartbeat(ctx context.Context) error {
	if _, err := p.client.Models.Get(ctx, p.model, nil); err != nil {
		return wrapGenAIError(err)
	}
	return nil
}

func (p *geminiProvider) ModelAvailable(ctx context.Context, model string) (bool, error) {
	_, err := p.client.Models.Get(ctx, model, nil)
	if err == nil {
		return true, nil
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return false, nil
	}
	return false, wrapGenAIError(err)
}

// GenerateImage renders a single image with the configured Imagen model.
func (p *geminiProvider) GenerateImage(ctx context.Context, prompt, size string) (*Image, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("image prompt cannot be empty")
	}

	aspect := AspectRatio(size)
	p.logger.Debug("generating image", "model", p.imageModel, "aspect_ratio", aspect)

	resp, err := p.client.Models.GenerateImages(ctx, p.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    aspect,
	})
	if err != nil {
		return nil, wrapGenAIError(err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("%w: no image returned", ErrInvalidResponse)
	}

	img := resp.GeneratedImages[0].Image
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return &Image{Data: img.ImageBytes, MIMEType: mime, Prompt: prompt}, nil
}

var supportedAspects = []struct {
	name  string
	ratio float64
}{
	{"1:1", 1},
	{"3:4", 0.75},
	{"4:3", 4.0 / 3.0},
	{"9:16", 9.0 / 16.0},
	{"16:9", 16.0 / 9.0},
}

// AspectRatio maps a size specification ("1024x1792", "16:9", "square") to
// the closest aspect ratio Imagen accepts. Anything unparseable is square.
func AspectRatio(size string) string {
	size = strings.ToLower(strings.TrimSpace(size))
	var w, h float64

	switch {
	case size == "" || size == "square":
		return "1:1"
	case size == "landscape":
		return "16:9"
	case size == "portrait":
		return "9:16"
	case strings.Contains(size, "x"):
		w, h = parsePair(size, "x")
	case strings.Contains(size, ":"):
		w, h = parsePair(size, ":")
	}
	if w <= 0 || h <= 0 {
		return "1:1"
	}

	want := w / h
	best := supportedAspects[0]
	bestDiff := abs(want - best.ratio)
	for _, a := range supportedAspects[1:] {
		if d := abs(want - a.ratio); d < bestDiff {
			best, bestDiff = a, d
		}
	}
	return best.name
}

func parsePair(s, sep string) (float64, float64) {
	a, b, ok := strings.Cut(s, sep)
	if !ok {
		return 0, 0
	}
	w, err1 := strconv.ParseFloat(strings.TrimSpace(a), 64)
	h, err2 := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err1 != nil || err2 != nil {
		return 0, 0
	}
	return w, h
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func wrapGenAIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusNotFound:
			return fmt.Errorf("%w: %v", ErrModelNotFound, err)
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return fmt.Errorf("%w: authentication failed (check API key): %v", ErrNotConfigured, err)
		case apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500:
			return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
	}
	return wrapError(err)
}
