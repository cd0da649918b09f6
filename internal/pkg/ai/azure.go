package ai

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sashabaranov/go-openai"

	"github.com/mft-data/fitmenthub/internal/pkg/env"
)

// AzureClient talks to one Azure OpenAI chat deployment.
type AzureClient struct {
	client     *openai.Client
	deployment string
}

// NewAzureClientFromEnv builds the client from AZURE_OPENAI_* variables, with
// the older AIFOUNDRY_* names accepted as fallbacks.
func NewAzureClientFromEnv() (*AzureClient, error) {
	apiKey := env.GetEnv("AZURE_OPENAI_API_KEY", env.GetEnv("AIFOUNDRY_API_KEY", ""))
	endpoint := env.GetEnv("AZURE_OPENAI_ENDPOINT", env.GetEnv("AIFOUNDRY_API_BASE", ""))
	deployment := env.GetEnv("AZURE_OPENAI_DEPLOYMENT_NAME", env.GetEnv("AIFOUNDRY_DEPLOYMENT", "gpt-4o"))
	apiVersion := env.GetEnv("AZURE_OPENAI_API_VERSION", "2024-06-01")

	if apiKey == "" || endpoint == "" {
		return nil, fmt.Errorf("AZURE_OPENAI_API_KEY and AZURE_OPENAI_ENDPOINT are required")
	}

	cfg := openai.DefaultAzureConfig(apiKey, endpoint)
	cfg.APIVersion = apiVersion

	log.Infof("[AI] Initialized Azure OpenAI client for deployment %s", deployment)
	return &AzureClient{
		client:     openai.NewClientWithConfig(cfg),
		deployment: deployment,
	}, nil
}

// Complete runs one chat completion against the deployment.
func (c *AzureClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.deployment,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
