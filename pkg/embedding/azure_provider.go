package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AzureProvider implements EmbeddingProvider against an Azure OpenAI
// embeddings deployment.
type AzureProvider struct {
	Endpoint   string
	APIKey     string
	APIVersion string
	Deployment string
	Client     *http.Client
}

func NewAzureProvider(endpoint, apiKey, apiVersion, deployment string) EmbeddingProvider {
	return &AzureProvider{
		Endpoint:   endpoint,
		APIKey:     apiKey,
		APIVersion: apiVersion,
		Deployment: deployment,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type azureEmbeddingRequest struct {
	Input []string `json:"input"`
}

type azureEmbeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

func (p *AzureProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	reqBody := azureEmbeddingRequest{Input: []string{text}}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/embeddings?api-version=%s",
		p.Endpoint, p.Deployment, p.APIVersion)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("api-key", p.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("azure embedding error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var azureResp azureEmbeddingResponse
	if err := json.Unmarshal(bodyBytes, &azureResp); err != nil {
		return nil, err
	}
	if len(azureResp.Data) == 0 {
		return nil, fmt.Errorf("azure embedding error: empty data")
	}

	values := make([]float32, len(azureResp.Data[0].Embedding))
	for i, v := range azureResp.Data[0].Embedding {
		values[i] = float32(v)
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{
			Values: normalizeVector(values),
		},
	}, nil
}
