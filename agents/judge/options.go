/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"errors"
	"fmt"
	"net/http"

	"chainguard.dev/crisiseval/agents/metrics"
)

// Default sampling favors scoring consistency over variety.
const (
	DefaultTemperature = 0.1
	DefaultTopP        = 0.9
	DefaultMaxTokens   = 8192
)

type config struct {
	projectID   string
	region      string
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	temperature float64
	topP        float64
	maxTokens   int64
	enricher    metrics.AttributeEnricher
}

func defaultConfig() config {
	return config{
		temperature: DefaultTemperature,
		topP:        DefaultTopP,
		maxTokens:   DefaultMaxTokens,
	}
}

// Option configures a judge.
type Option func(*config) error

// WithVertex routes Claude and Gemini models through Vertex AI in the given
// project and region using application default credentials.
func WithVertex(projectID, region string) Option {
	return func(c *config) error {
		if projectID == "" || region == "" {
			return errors.New("vertex requires both project and region")
		}
		c.projectID, c.region = projectID, region
		return nil
	}
}

// WithAPIKey authenticates against the provider's public API.
func WithAPIKey(key string) Option {
	return func(c *config) error {
		if key == "" {
			return errors.New("api key cannot be empty")
		}
		c.apiKey = key
		return nil
	}
}

// WithBaseURL overrides the provider endpoint.
func WithBaseURL(url string) Option {
	return func(c *config) error {
		c.baseURL = url
		return nil
	}
}

// WithHTTPClient sets the transport used for model requests. Its timeout
// bounds each invocation.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) error {
		if client == nil {
			return errors.New("http client cannot be nil")
		}
		c.httpClient = client
		return nil
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temp float64) Option {
	return func(c *config) error {
		if temp < 0.0 || temp > 1.0 {
			return fmt.Errorf("temperature must be between 0.0 and 1.0, got %f", temp)
		}
		c.temperature = temp
		return nil
	}
}

// WithTopP sets nucleus sampling.
func WithTopP(topP float64) Option {
	return func(c *config) error {
		if topP <= 0.0 || topP > 1.0 {
			return fmt.Errorf("top_p must be in (0.0, 1.0], got %f", topP)
		}
		c.topP = topP
		return nil
	}
}

// WithMaxTokens sets the maximum tokens for responses.
func WithMaxTokens(tokens int64) Option {
	return func(c *config) error {
		if tokens <= 0 {
			return fmt.Errorf("max tokens must be positive, got %d", tokens)
		}
		if tokens > 32000 {
			return fmt.Errorf("max tokens %d exceeds maximum of 32000", tokens)
		}
		c.maxTokens = tokens
		return nil
	}
}

// WithAttributeEnricher adds contextual attributes to recorded metrics.
func WithAttributeEnricher(enricher metrics.AttributeEnricher) Option {
	return func(c *config) error {
		c.enricher = enricher
		return nil
	}
}
