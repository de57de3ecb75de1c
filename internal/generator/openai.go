// Package generator adapts OpenAI-compatible image endpoints to the retry
// loop's Generator interface.
package generator

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"pose-gate/internal/genloop"

	"github.com/sashabaranov/go-openai"
)

// Config configures the image generation client.
type Config struct {
	// BaseURL overrides the API endpoint, pointing at self-hosted
	// diffusion gateways that speak the OpenAI image API.
	BaseURL string `yaml:"base_url"`

	// Model is the image model identifier.
	Model string `yaml:"model"`

	// Size is the requested output size.
	Size string `yaml:"size"`

	// APIKeyFile is read when the OPENAI_API_KEY environment variable is
	// unset.
	APIKeyFile string `yaml:"api_key_file"`
}

// DefaultConfig returns client defaults.
func DefaultConfig() Config {
	return Config{
		Model: openai.CreateImageModelDallE3,
		Size:  openai.CreateImageSize1024x1024,
	}
}

// OpenAI implements genloop.Generator over the images/edits endpoint.
type OpenAI struct {
	client *openai.Client
	cfg    Config
}

var _ genloop.Generator = (*OpenAI)(nil)

// NewOpenAI builds the client. The API key comes from OPENAI_API_KEY or,
// failing that, the configured key file.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" && cfg.APIKeyFile != "" {
		data, err := os.ReadFile(cfg.APIKeyFile)
		if err != nil {
			return nil, fmt.Errorf("OPENAI_API_KEY not set and key file unreadable: %w", err)
		}
		apiKey = strings.TrimSpace(string(data))
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
		slog.Info("using custom image endpoint", "base_url", cfg.BaseURL)
	}
	return &OpenAI{client: openai.NewClientWithConfig(clientCfg), cfg: cfg}, nil
}

// Generate runs one image edit conditioned on the reference, with the edge
// map as the conditioning mask when present. The seed travels in the user
// field: hosted endpoints ignore it, self-hosted gateways read it as the
// sampler seed.
func (g *OpenAI) Generate(ctx context.Context, req genloop.Request) ([]byte, error) {
	edit := openai.ImageEditRequest{
		Image:          openai.WrapReader(bytes.NewReader(req.Reference), "reference.png", "image/png"),
		Prompt:         req.Prompt,
		Model:          g.cfg.Model,
		Size:           g.cfg.Size,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
		User:           strconv.FormatInt(req.Seed, 10),
	}
	if req.EdgeMap != nil {
		edit.Mask = openai.WrapReader(bytes.NewReader(req.EdgeMap), "edges.png", "image/png")
	}

	resp, err := g.client.CreateEditImage(ctx, edit)
	if err != nil {
		return nil, fmt.Errorf("image edit call failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("image endpoint returned no data")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return data, nil
}
