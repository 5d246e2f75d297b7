package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	cfg "github.com/maheshrc27/postpilot/configs"
)

const (
	containerStatusInProgress = "IN_PROGRESS"
	containerStatusFinished   = "FINISHED"
	containerStatusError      = "ERROR"

	defaultPollInterval = 5 * time.Second
	defaultMaxPollWait  = 5 * time.Minute
)

// SocialPublisher drives the platform's asynchronous media-container
// protocol: create a container, poll it until ready, publish it.
type SocialPublisher interface {
	PublishSingle(ctx context.Context, imageURL, caption string) (string, error)
	PublishCarousel(ctx context.Context, imageURLs []string, caption string) (string, error)
}

type instagramService struct {
	config       cfg.Instagram
	client       *http.Client
	pollInterval time.Duration
	maxPollWait  time.Duration
}

func NewInstagramService(config cfg.Instagram) SocialPublisher {
	return &instagramService{
		config:       config,
		client:       http.DefaultClient,
		pollInterval: defaultPollInterval,
		maxPollWait:  defaultMaxPollWait,
	}
}

// PublishSingle creates one image container, waits for it, and publishes
// it. Returns the published media id.
func (s *instagramService) PublishSingle(ctx context.Context, imageURL, caption string) (string, error) {
	containerID, err := s.createContainer(ctx, map[string]any{
		"image_url":    imageURL,
		"caption":      caption,
		"access_token": s.config.AccessToken,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create media container: %w", err)
	}

	if err := s.waitUntilReady(ctx, containerID); err != nil {
		return "", err
	}

	return s.publishContainer(ctx, containerID)
}

// PublishCarousel creates one item container per image, waits for each,
// wraps them in a carousel container carrying the caption, and publishes
// that. Item order is display order; it cannot be changed afterwards.
func (s *instagramService) PublishCarousel(ctx context.Context, imageURLs []string, caption string) (string, error) {
	if len(imageURLs) == 0 {
		return "", NewValidationError("no images to publish")
	}

	itemIDs := make([]string, 0, len(imageURLs))
	for _, imageURL := range imageURLs {
		itemID, err := s.createContainer(ctx, map[string]any{
			"image_url":        imageURL,
			"is_carousel_item": true,
			"access_token":     s.config.AccessToken,
		})
		if err != nil {
			return "", fmt.Errorf("failed to create carousel item container: %w", err)
		}

		if err := s.waitUntilReady(ctx, itemID); err != nil {
			return "", err
		}
		itemIDs = append(itemIDs, itemID)
	}

	carouselID, err := s.createContainer(ctx, map[string]any{
		"media_type":   "CAROUSEL",
		"caption":      caption,
		"children":     itemIDs,
		"access_token": s.config.AccessToken,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create carousel container: %w", err)
	}

	if err := s.waitUntilReady(ctx, carouselID); err != nil {
		return "", err
	}

	return s.publishContainer(ctx, carouselID)
}

func (s *instagramService) createContainer(ctx context.Context, payload map[string]any) (string, error) {
	url := fmt.Sprintf("%s/%s/media", s.config.GraphAPIURL, s.config.AccountID)

	result, err := s.postJSON(ctx, url, payload)
	if err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("no container ID returned from Instagram")
	}
	return result.ID, nil
}

// waitUntilReady polls the container status at a fixed interval until it
// reaches FINISHED, reports ERROR, or the wait budget runs out. Abandoned
// containers are not cleaned up on timeout.
func (s *instagramService) waitUntilReady(ctx context.Context, containerID string) error {
	deadline := time.Now().Add(s.maxPollWait)

	for {
		status, err := s.containerStatus(ctx, containerID)
		if err != nil {
			return err
		}

		switch status {
		case containerStatusFinished:
			return nil
		case containerStatusError:
			return fmt.Errorf("container %s reported ERROR status", containerID)
		}

		if time.Now().After(deadline) {
			return &TimeoutError{
				Operation: fmt.Sprintf("polling container %s", containerID),
				Waited:    s.maxPollWait.String(),
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}
}

func (s *instagramService) containerStatus(ctx context.Context, containerID string) (string, error) {
	url := fmt.Sprintf("%s/%s?fields=status_code&access_token=%s", s.config.GraphAPIURL, containerID, s.config.AccessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("error creating status request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("unexpected status code %d from Instagram: %s", resp.StatusCode, body)
	}

	var result struct {
		StatusCode string `json:"status_code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("error parsing status response: %w", err)
	}
	return result.StatusCode, nil
}

func (s *instagramService) publishContainer(ctx context.Context, containerID string) (string, error) {
	url := fmt.Sprintf("%s/%s/media_publish", s.config.GraphAPIURL, s.config.AccountID)

	result, err := s.postJSON(ctx, url, map[string]any{
		"creation_id":  containerID,
		"access_token": s.config.AccessToken,
	})
	if err != nil {
		return "", fmt.Errorf("failed to publish container %s: %w", containerID, err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("no media ID returned from Instagram")
	}

	slog.Info("published media", "media_id", result.ID)
	return result.ID, nil
}

type graphResponse struct {
	ID string `json:"id"`
}

func (s *instagramService) postJSON(ctx context.Context, url string, payload map[string]any) (*graphResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from Instagram: %s", resp.StatusCode, respBody)
	}

	var result graphResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}
	return &result, nil
}
