package gateway

import (
	openai "github.com/sashabaranov/go-openai"

	"github.com/mgsg-dev/mgsg-bot/pkg/config"
)

// NewOpenAIClient builds the real upstream client from configuration.
func NewOpenAIClient(cfg config.OpenAIConfig) CompletionClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.OrgID != "" {
		clientConfig.OrgID = cfg.OrgID
	}

	return openai.NewClientWithConfig(clientConfig)
}
