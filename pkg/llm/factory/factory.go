package factory

import (
	"fmt"

	"ops-assistant-be/pkg/llm"
	"ops-assistant-be/pkg/llm/azure"
	"ops-assistant-be/pkg/llm/ollama"
)

type AzureConfig struct {
	Endpoint   string
	APIKey     string
	APIVersion string
	Deployment string
}

func NewLLMProvider(providerType, modelName, ollamaBaseURL string, azureCfg AzureConfig) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if ollamaBaseURL == "" {
			ollamaBaseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(ollamaBaseURL, modelName), nil
	case "azure":
		if azureCfg.Endpoint == "" || azureCfg.APIKey == "" || azureCfg.Deployment == "" {
			return nil, fmt.Errorf("azure llm provider requires endpoint, key and deployment")
		}
		return azure.NewAzureProvider(azureCfg.Endpoint, azureCfg.APIKey, azureCfg.APIVersion, azureCfg.Deployment), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
