package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/crm_backend/utils"
)

const (
	voyageBaseURL      = "https://api.voyageai.com/v1/embeddings"
	voyageModel        = "voyage-3"
	voyageBatchSize    = 100
	voyageMaxRetries   = 3
	voyageInitialDelay = 1 * time.Second
)

// Provider generates embeddings for job canonical texts. Satisfied by the
// Voyage client and by test fakes.
type Provider interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type VoyageClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type voyageRequest struct {
	Input     []string `json:"input"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
}

type voyageResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func NewVoyageClient(apiKey string) *VoyageClient {
	return &VoyageClient{
		apiKey:  apiKey,
		baseURL: voyageBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// EmbedBatch embeds job texts for storage, splitting the input into
// provider-sized batches.
func (c *VoyageClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if len(texts) <= voyageBatchSize {
		return c.embed(ctx, texts, "document")
	}

	var all [][]float32
	for i := 0; i < len(texts); i += voyageBatchSize {
		end := i + voyageBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		embeddings, err := c.embed(ctx, texts[i:end], "document")
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d failed: %w", i, end, err)
		}
		all = append(all, embeddings...)
	}
	return all, nil
}

// EmbedQuery embeds a single text for similarity search.
func (c *VoyageClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.embed(ctx, []string{text}, "query")
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return embeddings[0], nil
}

func (c *VoyageClient) embed(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("VOYAGE_API_KEY not set")
	}

	body, err := json.Marshal(voyageRequest{
		Input:     texts,
		Model:     voyageModel,
		InputType: inputType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < voyageMaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt))) * voyageInitialDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			continue
		}
		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = utils.NewRemoteApiError(resp.StatusCode, respBody, "embedding provider")
			// Retry on rate limits and server errors only.
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return nil, lastErr
		}

		var voyageResp voyageResponse
		if err := json.Unmarshal(respBody, &voyageResp); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		if len(voyageResp.Data) != len(texts) {
			return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(voyageResp.Data))
		}
		embeddings := make([][]float32, len(voyageResp.Data))
		for i, d := range voyageResp.Data {
			embeddings[i] = d.Embedding
		}
		return embeddings, nil
	}
	return nil, fmt.Errorf("max retries (%d) exceeded: %w", voyageMaxRetries, lastErr)
}
