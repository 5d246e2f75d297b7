package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"

	cfg "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/pkg/retry"
)

// EmailService sends approval requests and outcome notifications through a
// transactional email HTTP API. Sends are retried with backoff because the
// provider occasionally drops a request.
type EmailService interface {
	SendApprovalRequest(ctx context.Context, post *models.Post, emailToken string) (string, error)
	SendSuccessNotification(ctx context.Context, post *models.Post, mediaID string) error
	SendFailureNotification(ctx context.Context, post *models.Post, reason string) error
}

type emailService struct {
	config        cfg.Email
	publicBaseURL string
	client        *http.Client
	policy        retry.Policy
}

func NewEmailService(config cfg.Email, publicBaseURL string) EmailService {
	return &emailService{
		config:        config,
		publicBaseURL: publicBaseURL,
		client:        http.DefaultClient,
		policy:        retry.DefaultPolicy(),
	}
}

// SendApprovalRequest emails the approver a preview plus accept, decline
// and retry links. Returns the provider's message id.
func (s *emailService) SendApprovalRequest(ctx context.Context, post *models.Post, emailToken string) (string, error) {
	actionURL := func(action string) string {
		return fmt.Sprintf("%s/approve/%d/%s/%s", s.publicBaseURL, post.ID, emailToken, action)
	}

	subject := fmt.Sprintf("Approve post: %s", post.Topic)
	htmlBody := fmt.Sprintf(`<h2>%s</h2>
<pre style="white-space:pre-wrap;font-family:inherit">%s</pre>
<p>
<a href="%s">Approve</a> &middot;
<a href="%s">Decline</a> &middot;
<a href="%s">Regenerate</a>
</p>`,
		html.EscapeString(post.Topic),
		html.EscapeString(post.Content),
		actionURL("accept"),
		actionURL("decline"),
		actionURL("retry"),
	)
	textBody := fmt.Sprintf("%s\n\n%s\n\nApprove: %s\nDecline: %s\nRegenerate: %s\n",
		post.Topic, post.Content, actionURL("accept"), actionURL("decline"), actionURL("retry"))

	return s.send(ctx, subject, htmlBody, textBody)
}

func (s *emailService) SendSuccessNotification(ctx context.Context, post *models.Post, mediaID string) error {
	subject := fmt.Sprintf("Published: %s", post.Topic)
	body := fmt.Sprintf("<p>Post %d was published successfully. Media id: %s</p>", post.ID, html.EscapeString(mediaID))
	text := fmt.Sprintf("Post %d was published successfully. Media id: %s", post.ID, mediaID)

	_, err := s.send(ctx, subject, body, text)
	return err
}

func (s *emailService) SendFailureNotification(ctx context.Context, post *models.Post, reason string) error {
	subject := fmt.Sprintf("Publish failed: %s", post.Topic)
	body := fmt.Sprintf("<p>Post %d failed to publish.</p><pre>%s</pre>", post.ID, html.EscapeString(reason))
	text := fmt.Sprintf("Post %d failed to publish: %s", post.ID, reason)

	_, err := s.send(ctx, subject, body, text)
	return err
}

func (s *emailService) send(ctx context.Context, subject, htmlBody, textBody string) (string, error) {
	payload := map[string]any{
		"from":    s.config.FromAddress,
		"to":      []string{s.config.ApproverTo},
		"subject": subject,
		"html":    htmlBody,
		"text":    textBody,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshalling email payload: %w", err)
	}

	var messageID string
	err = s.policy.Do(ctx, func(ctx context.Context) error {
		id, err := s.post(ctx, body)
		if err != nil {
			slog.Warn("email send attempt failed", "subject", subject, "error", err)
			return err
		}
		messageID = id
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	return messageID, nil
}

func (s *emailService) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIURL+"/emails", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d from email provider: %s", resp.StatusCode, respBody)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("error parsing email response: %w", err)
	}
	return result.ID, nil
}
