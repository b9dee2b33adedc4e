package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"nova/app/config"
	"time"

	"github.com/samber/do"
	"github.com/samber/oops"
)

const apiBaseURL = "https://slack.com/api"

type Client struct {
	cfg        *config.Config
	httpClient *http.Client
}

func NewClient(di *do.Injector) (*Client, error) {
	return &Client{
		cfg: do.MustInvoke[*config.Config](di),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Reply posts a message into the given thread.
func (c *Client) Reply(ctx context.Context, channelID, threadTS, text string) error {
	if c.cfg.Slack.DisableNotifications {
		slog.Info("Replied to thread (notifications disabled)",
			"thread_ts", threadTS,
			"text", text,
			"telegram", true)
		return nil
	}

	body, err := json.Marshal(map[string]string{
		"channel":   channelID,
		"thread_ts": threadTS,
		"text":      text,
	})
	if err != nil {
		return oops.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBaseURL+"/chat.postMessage", bytes.NewReader(body))
	if err != nil {
		return oops.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Slack.BotToken)

	return c.do(req)
}

// UploadFile attaches a binary file to the given thread.
func (c *Client) UploadFile(ctx context.Context, channelID, threadTS, filename, title, initialComment string, data []byte) error {
	if c.cfg.Slack.DisableNotifications {
		slog.Info("Uploaded file (notifications disabled)",
			"thread_ts", threadTS,
			"filename", filename,
			"size", len(data),
			"telegram", true)
		return nil
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"channels":        channelID,
		"thread_ts":       threadTS,
		"filename":        filename,
		"title":           title,
		"initial_comment": initialComment,
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return oops.Errorf("failed to write form field: %w", err)
		}
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return oops.Errorf("failed to create form file: %w", err)
	}
	if _, err = part.Write(data); err != nil {
		return oops.Errorf("failed to write file data: %w", err)
	}
	if err = writer.Close(); err != nil {
		return oops.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBaseURL+"/files.upload", &buf)
	if err != nil {
		return oops.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.cfg.Slack.BotToken)

	return c.do(req)
}

func (c *Client) do(req *http.Request) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return oops.Errorf("slack request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return oops.Errorf("failed to read slack response: %w", err)
	}

	var parsed apiResponse
	if err = json.Unmarshal(respBody, &parsed); err != nil {
		return oops.Errorf("failed to parse slack response: %w", err)
	}

	if !parsed.OK {
		return oops.Errorf("slack API error: %s", parsed.Error)
	}

	return nil
}
