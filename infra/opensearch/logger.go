package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// PaymentEvent represents a structured payment lifecycle event
type PaymentEvent struct {
	Timestamp        time.Time `json:"timestamp"`
	Provider         string    `json:"provider"`
	Operation        string    `json:"operation"`
	TransactionID    string    `json:"transaction_id,omitempty"`
	Reference        string    `json:"reference,omitempty"`
	RequestID        string    `json:"request_id"`
	Amount           float64   `json:"amount,omitempty"`
	Currency         string    `json:"currency,omitempty"`
	Status           string    `json:"status,omitempty"`
	Success          bool      `json:"success"`
	Error            string    `json:"error,omitempty"`
	Payload          string    `json:"payload,omitempty"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
}

// Logger handles OpenSearch logging operations
type Logger struct {
	client *Client
}

// NewLogger creates a new OpenSearch logger
func NewLogger(client *Client) *Logger {
	return &Logger{
		client: client,
	}
}

// LogEvent logs a payment lifecycle event to OpenSearch
func (l *Logger) LogEvent(ctx context.Context, event PaymentEvent) error {
	if !l.client.IsEnabled() {
		return nil // Logging disabled
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if event.RequestID == "" {
		event.RequestID = uuid.New().String()
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index: EventIndexName,
		Body:  bytes.NewReader(eventJSON),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to index event: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch error: %s", res.String())
	}

	return nil
}

// SearchEvents searches for payment events based on criteria
func (l *Logger) SearchEvents(ctx context.Context, query map[string]any) ([]PaymentEvent, error) {
	if !l.client.IsEnabled() {
		return nil, fmt.Errorf("logging is disabled")
	}

	searchQuery := map[string]any{
		"query": query,
		"sort": []map[string]any{
			{"timestamp": map[string]string{"order": "desc"}},
		},
		"size": 100, // Limit results
	}

	queryJSON, err := json.Marshal(searchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{EventIndexName},
		Body:  bytes.NewReader(queryJSON),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("opensearch search error: %s", res.String())
	}

	var searchResult struct {
		Hits struct {
			Hits []struct {
				Source PaymentEvent `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}

	events := make([]PaymentEvent, len(searchResult.Hits.Hits))
	for i, hit := range searchResult.Hits.Hits {
		events[i] = hit.Source
	}

	return events, nil
}

// GetTransactionEvents retrieves events for a specific transaction ID
func (l *Logger) GetTransactionEvents(ctx context.Context, transactionID string) ([]PaymentEvent, error) {
	query := map[string]any{
		"match": map[string]any{
			"transaction_id": transactionID,
		},
	}

	return l.SearchEvents(ctx, query)
}

// GetRecentErrorEvents retrieves recent failed events for a provider
func (l *Logger) GetRecentErrorEvents(ctx context.Context, provider string, hours int) ([]PaymentEvent, error) {
	query := map[string]any{
		"bool": map[string]any{
			"must": []map[string]any{
				{
					"term": map[string]any{
						"provider": provider,
					},
				},
				{
					"range": map[string]any{
						"timestamp": map[string]any{
							"gte": fmt.Sprintf("now-%dh", hours),
						},
					},
				},
				{
					"term": map[string]any{
						"success": false,
					},
				},
			},
		},
	}

	return l.SearchEvents(ctx, query)
}

// SanitizeForLog removes sensitive information from data before logging
func SanitizeForLog(data string) string {
	sensitiveFields := []string{
		"serviceKey", "service_key", "pciVaultKey", "pci_vault_key",
		"webhookSecret", "webhook_secret", "apiKey", "api_key",
		"secretKey", "secret_key", "password", "token",
		"authorization", "x-api-key",
	}

	result := data
	for _, field := range sensitiveFields {
		patterns := []string{
			fmt.Sprintf(`"%s"\s*:\s*"[^"]*"`, field), // JSON format with double quotes
			fmt.Sprintf(`%s=\w+`, field),             // URL parameter format
		}

		for _, pattern := range patterns {
			re := regexp.MustCompile(pattern)
			result = re.ReplaceAllString(result, fmt.Sprintf(`"%s":"***REDACTED***"`, field))
		}
	}

	return result
}

// LogSystemEvent logs a system event to OpenSearch
func (l *Logger) LogSystemEvent(ctx context.Context, log any) error {
	if !l.client.IsEnabled() {
		return nil // Logging disabled
	}

	logJSON, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("failed to marshal system log: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index: SystemIndexName,
		Body:  bytes.NewReader(logJSON),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to index system log: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch system log error: %s", res.String())
	}

	return nil
}
