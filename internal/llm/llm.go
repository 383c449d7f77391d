package llm

import (
	"github.com/sashabaranov/go-openai"

	"chartchat/internal/config"
)

// NewClient creates a new OpenAI client from the LLM configuration.
// An empty BaseURL keeps the library default endpoint.
func NewClient(cfg config.LLMConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}
