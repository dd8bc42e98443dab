package orchestrator

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/vovakirdan/arcade-studio/internal/config"
)

// ChatMessage is one entry of a chat completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatClient completes a conversation and returns the assistant's text.
type ChatClient interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// ImageClient turns a prompt into an image reference (a data URI).
type ImageClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// BackgroundRemover strips the background of an image reference.
type BackgroundRemover interface {
	Remove(ctx context.Context, image string) (string, error)
}

// StatusError is a non-2xx reply from an AI service.
type StatusError struct {
	Service string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("orchestrator: %s returned %d: %s", e.Service, e.Code, e.Body)
}

// AzureChat calls an Azure OpenAI chat deployment in JSON mode.
type AzureChat struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string
	HTTP       *http.Client
}

type chatRequest struct {
	Messages       []ChatMessage  `json:"messages"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

// Complete implements ChatClient.
func (c *AzureChat) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	if c == nil || c.Endpoint == "" || c.APIKey == "" || c.Deployment == "" {
		return "", fmt.Errorf("%w: chat", ErrNotConfigured)
	}

	body := chatRequest{
		Messages:       messages,
		ResponseFormat: map[string]any{"type": "json_object"},
	}
	var resp chatResponse
	if err := postJSON(ctx, c.HTTP, "chat", deploymentURL(c.Endpoint, c.Deployment, "chat/completions", c.APIVersion), c.APIKey, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("orchestrator: chat returned no content")
	}
	return resp.Choices[0].Message.Content, nil
}

// AzureImage calls an Azure OpenAI image deployment.
type AzureImage struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string
	Size       string
	HTTP       *http.Client
}

type imageRequest struct {
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// Generate implements ImageClient. The image comes back as a PNG data URI.
func (c *AzureImage) Generate(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.Endpoint == "" || c.APIKey == "" || c.Deployment == "" {
		return "", fmt.Errorf("%w: images", ErrNotConfigured)
	}

	size := c.Size
	if size == "" {
		size = "1024x1024"
	}
	body := imageRequest{Prompt: prompt, N: 1, Size: size, ResponseFormat: "b64_json"}
	var resp imageResponse
	if err := postJSON(ctx, c.HTTP, "images", deploymentURL(c.Endpoint, c.Deployment, "images/generations", c.APIVersion), c.APIKey, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", fmt.Errorf("orchestrator: image generation returned no image")
	}
	return DataURI("image/png", resp.Data[0].B64JSON), nil
}

// HTTPRemover posts the image as multipart field "image" and expects PNG
// bytes back.
type HTTPRemover struct {
	Endpoint string
	APIKey   string
	HTTP     *http.Client
}

// Remove implements BackgroundRemover.
func (c *HTTPRemover) Remove(ctx context.Context, image string) (string, error) {
	if c == nil || c.Endpoint == "" {
		return "", fmt.Errorf("%w: background removal", ErrNotConfigured)
	}
	raw, err := decodeDataURI(image)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "image.png")
	if err != nil {
		return "", fmt.Errorf("orchestrator: cannot build upload: %w", err)
	}
	if _, err := part.Write(raw); err != nil {
		return "", fmt.Errorf("orchestrator: cannot build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("orchestrator: cannot build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("orchestrator: cannot create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.APIKey != "" {
		req.Header.Set("X-Api-Key", c.APIKey)
	}

	out, err := do(httpClient(c.HTTP), req, "background removal")
	if err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", fmt.Errorf("orchestrator: background removal returned an empty image")
	}
	return DataURI("image/png", base64.StdEncoding.EncodeToString(out)), nil
}

// ClientsFrom builds the Azure clients from configuration. A client whose
// settings are missing reports ErrNotConfigured when called.
func ClientsFrom(cfg config.AIConfig) (*AzureChat, *AzureImage, *HTTPRemover) {
	hc := &http.Client{Timeout: cfg.Timeout()}
	imageEndpoint, imageKey := cfg.ImageEndpoint, cfg.ImageAPIKey
	if imageEndpoint == "" {
		imageEndpoint = cfg.Endpoint
	}
	if imageKey == "" {
		imageKey = cfg.APIKey
	}
	chat := &AzureChat{
		Endpoint:   cfg.Endpoint,
		APIKey:     cfg.APIKey,
		Deployment: cfg.ChatDeployment,
		APIVersion: cfg.ChatAPIVersion,
		HTTP:       hc,
	}
	images := &AzureImage{
		Endpoint:   imageEndpoint,
		APIKey:     imageKey,
		Deployment: cfg.ImageDeployment,
		APIVersion: cfg.ImageAPIVersion,
		Size:       cfg.ImageSize,
		HTTP:       hc,
	}
	remover := &HTTPRemover{
		Endpoint: cfg.BgRemovalEndpoint,
		APIKey:   cfg.BgRemovalAPIKey,
		HTTP:     hc,
	}
	return chat, images, remover
}

// DataURI wraps base64 data in a data URI.
func DataURI(mime, b64 string) string {
	return "data:" + mime + ";base64," + b64
}

func decodeDataURI(uri string) ([]byte, error) {
	i := strings.Index(uri, ";base64,")
	if !strings.HasPrefix(uri, "data:") || i < 0 {
		return nil, fmt.Errorf("orchestrator: not a base64 data URI")
	}
	raw, err := base64.StdEncoding.DecodeString(uri[i+len(";base64,"):])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: bad data URI: %w", err)
	}
	return raw, nil
}

func deploymentURL(endpoint, deployment, op, version string) string {
	u := strings.TrimRight(endpoint, "/") + "/openai/deployments/" + url.PathEscape(deployment) + "/" + op
	if version != "" {
		u += "?api-version=" + url.QueryEscape(version)
	}
	return u
}

func postJSON(ctx context.Context, hc *http.Client, service, u, key string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("orchestrator: cannot encode %s request: %w", service, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("orchestrator: cannot create %s request: %w", service, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", key)

	body, err := do(httpClient(hc), req, service)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("orchestrator: cannot decode %s response: %w", service, err)
	}
	return nil
}

func do(hc *http.Client, req *http.Request, service string) ([]byte, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %s request failed: %w", service, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("orchestrator: cannot read %s response: %w", service, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{Service: service, Code: resp.StatusCode, Body: snippet}
	}
	return body, nil
}

func httpClient(hc *http.Client) *http.Client {
	if hc == nil {
		return http.DefaultClient
	}
	return hc
}
