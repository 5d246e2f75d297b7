package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/render"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/pkg/dedup"
)

const dailyPrompt = `Topic: pick a practical software engineering interview topic.
Write a short interview-style question, then the delimiter |||SPLIT|||, then a
step-by-step solution with bullet points where useful.`

const listingPrompt = `Produce up to five current remote software job listings.
Separate listings with a line containing ===. Start each listing with an
"ID: <stable listing id>" line and a "Topic: <role and company>" line.`

const captionSuffix = "\n\n#coding #interviewprep #softwareengineering"

// Paginator and CardRenderer are the pagination/rendering seams, satisfied
// by pagination.Engine and render.Renderer.
type Paginator interface {
	Paginate(ctx context.Context, text string) ([]string, error)
}

type CardRenderer interface {
	Render(ctx context.Context, chunk, topic string, page, pageCount int, kind render.Kind) (string, error)
}

// PostService owns the post state machine and the approved->posted publish
// sequence.
type PostService interface {
	RunDaily(ctx context.Context) (*models.Post, error)
	RunJobListings(ctx context.Context) ([]*models.Post, error)
	Approve(ctx context.Context, postID int64, emailToken string) (*models.Post, error)
	Decline(ctx context.Context, postID int64, emailToken string) error
	Retry(ctx context.Context, postID int64, emailToken string) (*models.Post, error)
	Publish(ctx context.Context, postID int64) error
	RemindStalePending(ctx context.Context, olderThan time.Duration) (int, error)
	List(ctx context.Context) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID int64) (*models.Post, error)
}

type postService struct {
	pr         repository.PostRepository
	ar         repository.ApprovalRepository
	ir         repository.PostImageRepository
	hr         repository.PostingHistoryRepository
	paginator  Paginator
	renderer   CardRenderer
	storage    StorageService
	publisher  SocialPublisher
	email      EmailService
	generator  GeneratorService
	recent     *dedup.RecentSet
	maxRetries int
}

func NewPostService(
	pr repository.PostRepository,
	ar repository.ApprovalRepository,
	ir repository.PostImageRepository,
	hr repository.PostingHistoryRepository,
	paginator Paginator,
	renderer CardRenderer,
	storage StorageService,
	publisher SocialPublisher,
	email EmailService,
	generator GeneratorService,
	maxRetries int) PostService {
	return &postService{
		pr:         pr,
		ar:         ar,
		ir:         ir,
		hr:         hr,
		paginator:  paginator,
		renderer:   renderer,
		storage:    storage,
		publisher:  publisher,
		email:      email,
		generator:  generator,
		recent:     dedup.NewRecentSet(),
		maxRetries: maxRetries,
	}
}

// RunDaily generates one daily post and emails the approval request. At
// most one daily post may exist per calendar day.
func (s *postService) RunDaily(ctx context.Context) (*models.Post, error) {
	exists, err := s.pr.ExistsForDay(ctx, models.ContentTypeDaily, time.Now())
	if err != nil {
		return nil, fmt.Errorf("error checking daily post: %w", err)
	}
	if exists {
		return nil, NewValidationError("a daily post was already generated today")
	}

	generated, err := s.generator.Generate(ctx, dailyPrompt)
	if err != nil {
		return nil, fmt.Errorf("content generation failed: %w", err)
	}

	post := &models.Post{
		Topic:       generated.Topic,
		ContentType: models.ContentTypeDaily,
		Content:     generated.Content,
		Status:      models.PostStatusPending,
		MaxRetries:  s.maxRetries,
		GeneratedAt: time.Now(),
	}
	post.ID, err = s.pr.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	if err := s.issueApprovalEmail(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// RunJobListings generates job-listing posts, skips listings already
// published by this process, and auto-approves the rest for publishing.
func (s *postService) RunJobListings(ctx context.Context) ([]*models.Post, error) {
	listings, err := s.generator.GenerateJobListings(ctx, listingPrompt)
	if err != nil {
		return nil, fmt.Errorf("listing generation failed: %w", err)
	}

	var posts []*models.Post
	for _, listing := range listings {
		if s.recent.Contains(listing.ExternalID) {
			slog.Info("skipping recently published listing", "external_id", listing.ExternalID)
			continue
		}

		status, err := models.PostStatusPending.Transition(models.PostStatusApproved)
		if err != nil {
			return nil, err
		}
		post := &models.Post{
			Topic:       listing.Topic,
			ContentType: models.ContentTypeJobListing,
			Content:     listing.Content,
			ExternalID:  sql.NullString{String: listing.ExternalID, Valid: true},
			Status:      status,
			MaxRetries:  s.maxRetries,
			GeneratedAt: time.Now(),
			ApprovedAt:  sql.NullTime{Time: time.Now(), Valid: true},
		}
		post.ID, err = s.pr.Create(ctx, post)
		if err != nil {
			return nil, fmt.Errorf("error creating listing post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// Approve moves a post to approved. Approving a failed post is the manual
// re-approval escape hatch and is allowed on purpose.
func (s *postService) Approve(ctx context.Context, postID int64, emailToken string) (*models.Post, error) {
	post, approval, err := s.lookupAction(ctx, postID, emailToken)
	if err != nil {
		return nil, err
	}

	status, err := post.Status.Transition(models.PostStatusApproved)
	if err != nil {
		return nil, NewValidationError("post %d cannot be approved from status %s", postID, post.Status)
	}

	if err := s.ar.MarkAction(ctx, approval.ID, models.ApprovalActionAccept); err != nil {
		return nil, fmt.Errorf("error recording approval action: %w", err)
	}
	if err := s.pr.SetApproved(ctx, postID); err != nil {
		return nil, fmt.Errorf("error updating post status: %w", err)
	}

	post.Status = status
	post.ApprovedAt = sql.NullTime{Time: time.Now(), Valid: true}
	return post, nil
}

func (s *postService) Decline(ctx context.Context, postID int64, emailToken string) error {
	post, approval, err := s.lookupAction(ctx, postID, emailToken)
	if err != nil {
		return err
	}

	if _, err := post.Status.Transition(models.PostStatusDeclined); err != nil {
		return NewValidationError("post %d cannot be declined from status %s", postID, post.Status)
	}

	if err := s.ar.MarkAction(ctx, approval.ID, models.ApprovalActionDecline); err != nil {
		return fmt.Errorf("error recording decline action: %w", err)
	}
	if err := s.pr.UpdateStatus(ctx, models.PostStatusDeclined, postID); err != nil {
		return fmt.Errorf("error updating post status: %w", err)
	}
	return nil
}

// Retry regenerates content for a pending post and issues a fresh approval
// email. Rejected without any state change once the retry budget is spent.
func (s *postService) Retry(ctx context.Context, postID int64, emailToken string) (*models.Post, error) {
	post, approval, err := s.lookupAction(ctx, postID, emailToken)
	if err != nil {
		return nil, err
	}

	if post.RetryCount >= post.MaxRetries {
		return nil, ErrRetryLimitReached
	}
	if _, err := post.Status.Transition(models.PostStatusRetry); err != nil {
		return nil, NewValidationError("post %d cannot be retried from status %s", postID, post.Status)
	}

	generated, err := s.generator.Generate(ctx, dailyPrompt)
	if err != nil {
		return nil, fmt.Errorf("content regeneration failed: %w", err)
	}

	if err := s.ar.MarkAction(ctx, approval.ID, models.ApprovalActionRetry); err != nil {
		return nil, fmt.Errorf("error recording retry action: %w", err)
	}

	post.Topic = generated.Topic
	post.Content = generated.Content
	post.RetryCount++
	post.Status = models.PostStatusPending
	if err := s.pr.ReplaceContent(ctx, post.ID, post.Topic, post.Content, post.RetryCount); err != nil {
		return nil, fmt.Errorf("error storing regenerated content: %w", err)
	}

	if err := s.issueApprovalEmail(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Publish runs the approved->posted sequence: paginate, render, upload
// redundantly, publish with backup-URL fallback, persist the outcome. Any
// failure flips the post to failed, notifies, and is re-raised.
func (s *postService) Publish(ctx context.Context, postID int64) error {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("error fetching post %d: %w", postID, err)
	}
	if post == nil {
		return NewValidationError("post %d not found", postID)
	}
	if post.Status != models.PostStatusApproved {
		return NewValidationError("post %d is not approved (status %s)", postID, post.Status)
	}

	mediaID, usedBackup, err := s.publishApproved(ctx, post)

	history := &models.PostingHistory{
		PostID:     postID,
		MediaID:    mediaID,
		UsedBackup: usedBackup,
	}
	if err != nil {
		history.ErrorMessage = err.Error()
	}
	if _, herr := s.hr.Create(ctx, history); herr != nil {
		slog.Error("error saving posting history", "post_id", postID, "error", herr)
	}

	if err != nil {
		s.markFailed(ctx, post, err)
		return err
	}

	if err := s.pr.SetPosted(ctx, postID, mediaID); err != nil {
		return fmt.Errorf("post %d published as %s but status update failed: %w", postID, mediaID, err)
	}
	if post.ExternalID.Valid {
		s.recent.Add(post.ExternalID.String)
	}
	if err := s.email.SendSuccessNotification(ctx, post, mediaID); err != nil {
		slog.Warn("success notification failed", "post_id", postID, "error", err)
	}
	return nil
}

func (s *postService) publishApproved(ctx context.Context, post *models.Post) (string, bool, error) {
	paths, err := s.materializeImages(ctx, post)
	if err != nil {
		return "", false, err
	}
	if len(paths) == 0 {
		return "", false, NewValidationError("no images to publish")
	}

	results, err := s.storage.UploadImages(ctx, paths)
	if err != nil {
		return "", false, err
	}

	if err := s.ir.ReplaceForPost(ctx, post.ID, toPostImages(post.ID, results)); err != nil {
		return "", false, fmt.Errorf("error saving image descriptors: %w", err)
	}

	caption := buildCaption(post)
	return s.publishWithFallback(ctx, results, caption)
}

// materializeImages paginates the post content and renders one card per
// chunk. Question chunks and solution chunks share one page numbering.
func (s *postService) materializeImages(ctx context.Context, post *models.Post) ([]string, error) {
	question, solution := models.SplitContent(post.Content)

	type part struct {
		text string
		kind render.Kind
	}
	parts := []part{}
	if solution == "" {
		parts = append(parts, part{text: question, kind: render.KindCard})
	} else {
		parts = append(parts, part{text: question, kind: render.KindQuestion})
		parts = append(parts, part{text: solution, kind: render.KindSolution})
	}

	type page struct {
		chunk string
		kind  render.Kind
	}
	var pages []page
	for _, p := range parts {
		chunks, err := s.paginator.Paginate(ctx, p.text)
		if err != nil {
			return nil, err
		}
		for _, chunk := range chunks {
			pages = append(pages, page{chunk: chunk, kind: p.kind})
		}
	}

	paths := make([]string, 0, len(pages))
	for i, pg := range pages {
		path, err := s.renderer.Render(ctx, pg.chunk, post.Topic, i+1, len(pages), pg.kind)
		if err != nil {
			return nil, fmt.Errorf("error rendering card %d: %w", i+1, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// publishWithFallback tries primary URLs first. If that attempt fails and
// at least one backup URL exists, the whole publish is retried once with
// backup URLs substituted wherever available.
func (s *postService) publishWithFallback(ctx context.Context, results []*UploadResult, caption string) (string, bool, error) {
	primaryURLs := make([]string, len(results))
	for i, r := range results {
		primaryURLs[i] = r.PrimaryURL
	}

	mediaID, err := s.publishURLs(ctx, primaryURLs, caption)
	if err == nil {
		return mediaID, false, nil
	}

	hasBackup := false
	fallbackURLs := make([]string, len(results))
	for i, r := range results {
		if r.HasBackup() {
			fallbackURLs[i] = r.BackupURL
			hasBackup = true
		} else {
			fallbackURLs[i] = r.PrimaryURL
		}
	}
	if !hasBackup {
		return "", false, err
	}

	slog.Warn("primary publish failed, retrying with backup URLs", "error", err)
	mediaID, fbErr := s.publishURLs(ctx, fallbackURLs, caption)
	if fbErr != nil {
		return "", false, fmt.Errorf("publish failed on primary (%v) and backup: %w", err, fbErr)
	}
	return mediaID, true, nil
}

func (s *postService) publishURLs(ctx context.Context, urls []string, caption string) (string, error) {
	if len(urls) == 1 {
		return s.publisher.PublishSingle(ctx, urls[0], caption)
	}
	return s.publisher.PublishCarousel(ctx, urls, caption)
}

// markFailed persists the failed status and sends a best-effort failure
// notification. The triggering error is reported by the caller.
func (s *postService) markFailed(ctx context.Context, post *models.Post, cause error) {
	if _, terr := post.Status.Transition(models.PostStatusFailed); terr != nil {
		slog.Error("cannot mark post failed", "post_id", post.ID, "status", post.Status)
		return
	}
	if err := s.pr.SetFailed(ctx, post.ID, cause.Error()); err != nil {
		slog.Error("error persisting failed status", "post_id", post.ID, "error", err)
	}
	if err := s.email.SendFailureNotification(ctx, post, cause.Error()); err != nil {
		slog.Warn("failure notification failed", "post_id", post.ID, "error", err)
	}
}

// RemindStalePending re-issues the approval email for posts that have sat
// in pending beyond olderThan. Each reminder supersedes the prior email
// logically; the old record stays behind as history.
func (s *postService) RemindStalePending(ctx context.Context, olderThan time.Duration) (int, error) {
	posts, err := s.pr.ListPendingOlderThan(ctx, olderThan)
	if err != nil {
		return 0, fmt.Errorf("error listing stale pending posts: %w", err)
	}

	sent := 0
	for _, post := range posts {
		if err := s.issueApprovalEmail(ctx, post); err != nil {
			slog.Warn("reminder email failed", "post_id", post.ID, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *postService) List(ctx context.Context) ([]*models.Post, error) {
	return s.pr.List(ctx)
}

func (s *postService) PostInfo(ctx context.Context, postID int64) (*models.Post, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, NewValidationError("post %d not found", postID)
	}
	return post, nil
}

// lookupAction resolves a post and the approval record an emailed action
// link refers to. Acted-on records are rejected so stale links cannot
// replay decisions.
func (s *postService) lookupAction(ctx context.Context, postID int64, emailToken string) (*models.Post, *models.Approval, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, nil, fmt.Errorf("error fetching post %d: %w", postID, err)
	}
	if post == nil {
		return nil, nil, NewValidationError("post %d not found", postID)
	}

	approval, err := s.ar.GetByPostAndToken(ctx, postID, emailToken)
	if err != nil {
		return nil, nil, fmt.Errorf("error fetching approval record: %w", err)
	}
	if approval == nil {
		return nil, nil, NewValidationError("approval link is not valid for post %d", postID)
	}
	if approval.Action != models.ApprovalActionPending && post.Status != models.PostStatusFailed {
		return nil, nil, NewValidationError("approval link for post %d was already used", postID)
	}

	// A fresh email supersedes earlier ones; only the newest record's links
	// act. Older rows stay behind as history.
	latest, err := s.ar.GetLatestByPostID(ctx, postID)
	if err != nil {
		return nil, nil, fmt.Errorf("error fetching latest approval record: %w", err)
	}
	if latest == nil || latest.ID != approval.ID {
		return nil, nil, NewValidationError("approval link for post %d was superseded by a newer email", postID)
	}

	return post, approval, nil
}

// issueApprovalEmail creates a fresh approval record and emails its action
// links. Older records for the post stay behind as history.
func (s *postService) issueApprovalEmail(ctx context.Context, post *models.Post) error {
	token, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate approval token: %w", err)
	}

	approval := &models.Approval{
		PostID:     post.ID,
		EmailToken: token,
		Action:     models.ApprovalActionPending,
	}
	if _, err := s.ar.Create(ctx, approval); err != nil {
		return fmt.Errorf("error creating approval record: %w", err)
	}

	if _, err := s.email.SendApprovalRequest(ctx, post, token); err != nil {
		return err
	}
	return nil
}

func buildCaption(post *models.Post) string {
	question, _ := models.SplitContent(post.Content)
	firstLine := question
	if idx := strings.Index(firstLine, "\n"); idx >= 0 {
		firstLine = firstLine[:idx]
	}

	if post.Topic != "" && !strings.EqualFold(post.Topic, firstLine) {
		return post.Topic + "\n\n" + firstLine + captionSuffix
	}
	return firstLine + captionSuffix
}

func toPostImages(postID int64, results []*UploadResult) []*models.PostImage {
	images := make([]*models.PostImage, len(results))
	for i, r := range results {
		images[i] = &models.PostImage{
			PostID:       postID,
			DisplayOrder: i,
			LocalPath:    r.LocalPath,
			PrimaryID:    r.PrimaryID,
			PrimaryURL:   r.PrimaryURL,
			BackupID:     sql.NullString{String: r.BackupID, Valid: r.BackupID != ""},
			BackupURL:    sql.NullString{String: r.BackupURL, Valid: r.BackupURL != ""},
		}
	}
	return images
}
