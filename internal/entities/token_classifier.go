package entities

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jonathan/resume-extractor/internal/types"
)

// TokenClassifierName identifies the HTTP token-classification backend in logs and metrics.
const TokenClassifierName = "token-classifier"

// TokenClassifierLabels are the CoNLL labels returned by token-classification models.
var TokenClassifierLabels = LabelMap{
	"PER":  types.GroupPerson,
	"ORG":  types.GroupOrganization,
	"LOC":  types.GroupLocation,
	"DATE": types.GroupDate,
}

// TokenClassifierConfig configures the HTTP token-classification backend.
type TokenClassifierConfig struct {
	Endpoint   string
	APIKey     string
	Timeout    time.Duration
	RetryCount int
	// Aggregation is passed as aggregation_strategy. Empty means the model's default.
	Aggregation string
}

// TokenClassifier calls an inference endpoint speaking the Hugging Face
// token-classification format.
type TokenClassifier struct {
	client   *resty.Client
	endpoint string
	params   *classifierParams
}

type classifierRequest struct {
	Inputs     string            `json:"inputs"`
	Parameters *classifierParams `json:"parameters,omitempty"`
}

type classifierParams struct {
	AggregationStrategy string `json:"aggregation_strategy"`
}

// classifierToken is one element of the response array. Aggregated responses carry
// entity_group; raw ones carry a BIO-prefixed entity.
type classifierToken struct {
	EntityGroup string  `json:"entity_group"`
	Entity      string  `json:"entity"`
	Word        string  `json:"word"`
	Score       float64 `json:"score"`
}

type classifierError struct {
	Error string `json:"error"`
}

// NewTokenClassifier builds the backend client.
func NewTokenClassifier(cfg TokenClassifierConfig) (*TokenClassifier, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("token classifier endpoint is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(retryCondition)
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	tc := &TokenClassifier{client: client, endpoint: cfg.Endpoint}
	if cfg.Aggregation != "" {
		tc.params = &classifierParams{AggregationStrategy: cfg.Aggregation}
	}
	return tc, nil
}

func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == 429 || code == 408
}

// Backend wraps the classifier with its label table and "##" sub-word continuation.
func (c *TokenClassifier) Backend() Backend {
	return Backend{
		Name:               TokenClassifierName,
		Tagger:             c,
		Labels:             TokenClassifierLabels,
		ContinuationPrefix: "##",
	}
}

// Tag posts text to the endpoint and returns the spans in response order.
func (c *TokenClassifier) Tag(ctx context.Context, text string) ([]RawSpan, error) {
	var tokens []classifierToken
	var apiErr classifierError

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(classifierRequest{Inputs: text, Parameters: c.params}).
		SetResult(&tokens).
		SetError(&apiErr).
		Post(c.endpoint)
	if err != nil {
		return nil, &BackendError{Backend: TokenClassifierName, Message: "request failed", Cause: err}
	}
	if resp.IsError() {
		msg := fmt.Sprintf("status %d", resp.StatusCode())
		if apiErr.Error != "" {
			msg += ": " + apiErr.Error
		}
		return nil, &BackendError{Backend: TokenClassifierName, Message: msg}
	}

	spans := make([]RawSpan, 0, len(tokens))
	for _, tok := range tokens {
		spans = append(spans, RawSpan{Label: tokenLabel(tok), Text: tok.Word})
	}
	return spans, nil
}

func tokenLabel(tok classifierToken) string {
	if tok.EntityGroup != "" {
		return tok.EntityGroup
	}
	label := tok.Entity
	if len(label) > 2 && (strings.HasPrefix(label, "B-") || strings.HasPrefix(label, "I-")) {
		label = label[2:]
	}
	return label
}
