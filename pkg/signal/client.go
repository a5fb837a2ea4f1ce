package signal

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"sigcast/internal/security"

	"github.com/sirupsen/logrus"
)

type Client interface {
	SendMessage(ctx context.Context, recipient, message string, attachments []string) (*SendMessageResponse, error)
	ReceiveMessages(ctx context.Context, timeoutSeconds int) ([]SignalMessage, error)
	ProbeConnection(ctx context.Context) error
}

type RestClient struct {
	baseURL        string
	authToken      string
	client         *http.Client
	phoneNumber    string
	attachmentsDir string
	logger         *logrus.Logger
	mu             sync.Mutex // Prevent concurrent operations per account
}

func NewClient(baseURL, authToken, phoneNumber, attachmentsDir string, httpClient *http.Client) Client {
	return NewClientWithLogger(baseURL, authToken, phoneNumber, attachmentsDir, httpClient, nil)
}

func NewClientWithLogger(baseURL, authToken, phoneNumber, attachmentsDir string, httpClient *http.Client, logger *logrus.Logger) Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}

	return &RestClient{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		authToken:      authToken,
		phoneNumber:    phoneNumber,
		attachmentsDir: attachmentsDir,
		client:         httpClient,
		logger:         logger,
	}
}

func (c *RestClient) SendMessage(ctx context.Context, recipient, message string, attachments []string) (*SendMessageResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := SendMessageRequest{
		Message:    message,
		Number:     c.phoneNumber,
		Recipients: []string{recipient},
	}

	if len(attachments) > 0 {
		payload.Base64Attachments = make([]string, len(attachments))
		for i, attachment := range attachments {
			encoded, err := c.encodeAttachment(attachment)
			if err != nil {
				return nil, fmt.Errorf("failed to encode attachment %s: %w", attachment, err)
			}
			payload.Base64Attachments[i] = encoded
		}
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/send", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("signal API error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var result SendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	timestamp := result.Timestamp.Int64()
	return &SendMessageResponse{
		Timestamp: timestamp,
		MessageID: fmt.Sprintf("%d", timestamp),
	}, nil
}

func (c *RestClient) ReceiveMessages(ctx context.Context, timeoutSeconds int) ([]SignalMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	endpoint := fmt.Sprintf("%s/v1/receive/%s", c.baseURL, url.QueryEscape(c.phoneNumber))
	if timeoutSeconds > 0 {
		endpoint += fmt.Sprintf("?timeout=%d", timeoutSeconds)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("signal API error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var messages []RestMessage
	if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	result := make([]SignalMessage, 0, len(messages))
	for _, msg := range messages {
		// Skip receipts, typing indicators and sync traffic
		if msg.Envelope.DataMessage == nil {
			continue
		}

		result = append(result, SignalMessage{
			Timestamp:   msg.Envelope.Timestamp,
			Sender:      msg.Envelope.Source,
			MessageID:   fmt.Sprintf("%d", msg.Envelope.Timestamp),
			Message:     msg.Envelope.DataMessage.Message,
			Attachments: c.saveAttachments(ctx, msg.Envelope.DataMessage.Attachments),
		})
	}

	return result, nil
}

// ProbeConnection checks the API is reachable via the about endpoint.
func (c *RestClient) ProbeConnection(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/v1/about", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach signal API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("signal API error: status %d", resp.StatusCode)
	}

	var about AboutResponse
	if err := json.NewDecoder(resp.Body).Decode(&about); err != nil {
		return fmt.Errorf("failed to decode about response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"version": about.Version,
		"mode":    about.Mode,
	}).Debug("Signal API reachable")

	return nil
}

func (c *RestClient) setAuth(req *http.Request) {
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
}

func (c *RestClient) saveAttachments(ctx context.Context, attachments []RestMessageAttachment) []MessageAttachment {
	if len(attachments) == 0 {
		return nil
	}

	result := make([]MessageAttachment, 0, len(attachments))
	for _, att := range attachments {
		stored, err := c.downloadAndSaveAttachment(ctx, att)
		if err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"attachment": att.ID,
			}).Warn("Failed to download attachment")
		}
		result = append(result, MessageAttachment{
			ID:          att.ID,
			ContentType: att.ContentType,
			Filename:    att.Filename,
			Size:        att.Size,
			StoredPath:  stored,
		})
	}
	return result
}

func (c *RestClient) downloadAndSaveAttachment(ctx context.Context, att RestMessageAttachment) (string, error) {
	if c.attachmentsDir == "" {
		return "", fmt.Errorf("attachments directory not configured")
	}

	endpoint := fmt.Sprintf("%s/v1/attachments/%s", c.baseURL, url.PathEscape(att.ID))
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("signal API error: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read attachment body: %w", err)
	}

	if err := os.MkdirAll(c.attachmentsDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create attachments directory: %w", err)
	}

	name := filepath.Base(att.ID)
	if ext := c.fileExtension(att.ContentType, att.Filename); ext != "" && !strings.HasSuffix(name, ext) {
		name += ext
	}
	if err := security.ValidateFilePathWithBase(name, c.attachmentsDir); err != nil {
		return "", fmt.Errorf("unsafe attachment name: %w", err)
	}

	path := filepath.Join(c.attachmentsDir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to save attachment: %w", err)
	}

	return path, nil
}

func (c *RestClient) fileExtension(contentType, filename string) string {
	if ext := filepath.Ext(filename); ext != "" {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

func (c *RestClient) encodeAttachment(filePath string) (string, error) {
	data, err := os.ReadFile(filePath) // #nosec G304 - path comes from our own attachments store
	if err != nil {
		return "", fmt.Errorf("failed to read attachment file: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
