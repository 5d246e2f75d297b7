package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/maheshrc27/postpilot/internal/transfer"
)

const generatorModel = "gemini-1.5-flash"

// GeneratorService produces post content from a prompt. The daily prompt
// yields one topic/content pair; the listing prompt yields a batch of job
// listings with upstream ids.
type GeneratorService interface {
	Generate(ctx context.Context, prompt string) (*transfer.GeneratedContent, error)
	GenerateJobListings(ctx context.Context, prompt string) ([]*transfer.JobListing, error)
}

type geminiService struct {
	apiKey string
}

func NewGeneratorService(apiKey string) GeneratorService {
	return &geminiService{apiKey: apiKey}
}

func (g *geminiService) Generate(ctx context.Context, prompt string) (*transfer.GeneratedContent, error) {
	raw, err := g.generateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	topic, content := splitTopicHeader(raw)
	if content == "" {
		return nil, fmt.Errorf("generator returned empty content")
	}

	return &transfer.GeneratedContent{Topic: topic, Content: content}, nil
}

// GenerateJobListings expects the model output to contain one block per
// listing, blocks separated by a line of ===, each starting with an
// "ID: ..." line.
func (g *geminiService) GenerateJobListings(ctx context.Context, prompt string) ([]*transfer.JobListing, error) {
	raw, err := g.generateText(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseListings(raw), nil
}

func (g *geminiService) generateText(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create generator client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(generatorModel)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("content generation failed: %w", err)
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("generator returned no text")
	}
	return out, nil
}

// splitTopicHeader peels an optional leading "Topic: ..." line off the
// generated text.
func splitTopicHeader(raw string) (topic, content string) {
	first, rest, found := strings.Cut(raw, "\n")
	if after, ok := strings.CutPrefix(strings.TrimSpace(first), "Topic:"); ok && found {
		return strings.TrimSpace(after), strings.TrimSpace(rest)
	}
	return "", strings.TrimSpace(raw)
}

func parseListings(raw string) []*transfer.JobListing {
	var listings []*transfer.JobListing

	for _, block := range strings.Split(raw, "\n===\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		var listing transfer.JobListing
		for _, line := range strings.Split(block, "\n") {
			if after, ok := strings.CutPrefix(strings.TrimSpace(line), "ID:"); ok && listing.ExternalID == "" {
				listing.ExternalID = strings.TrimSpace(after)
			}
			if after, ok := strings.CutPrefix(strings.TrimSpace(line), "Topic:"); ok && listing.Topic == "" {
				listing.Topic = strings.TrimSpace(after)
			}
		}
		listing.Content = block
		if listing.ExternalID == "" {
			continue
		}
		listings = append(listings, &listing)
	}

	return listings
}
