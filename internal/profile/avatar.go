package profile

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// AvatarGenerator produces profile avatars from a short text hint.
type AvatarGenerator struct {
	client openai.Client
}

// NewAvatarGenerator creates a generator backed by the OpenAI image API.
func NewAvatarGenerator(apiKey string) *AvatarGenerator {
	return &AvatarGenerator{client: openai.NewClient(option.WithAPIKey(apiKey))}
}

// Generate returns the avatar as a data URL suitable for storing in the
// profile's avatar field.
func (g *AvatarGenerator) Generate(ctx context.Context, hint string) (string, error) {
	prompt := fmt.Sprintf(
		"Generate a modern, minimalist, circular profile avatar. The avatar should be a creative interpretation of the following idea: %q", hint)

	resp, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModelDallE3,
		Size:           openai.ImageGenerateParamsSize1024x1024,
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
		N:              openai.Int(1),
	})
	if err != nil {
		return "", fmt.Errorf("generate avatar: %w", err)
	}

	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", fmt.Errorf("image generation produced no output")
	}

	return "data:image/png;base64," + resp.Data[0].B64JSON, nil
}
