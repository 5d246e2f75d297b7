package transfer

// GeneratedContent is what the content generator returns for one post.
// Content may contain models.ContentDelimiter to separate a question part
// from a solution part.
type GeneratedContent struct {
	Topic   string
	Content string
}

// JobListing is one upstream job listing turned into postable content.
// ExternalID is the upstream identifier used for cross-run deduplication.
type JobListing struct {
	ExternalID string
	Topic      string
	Content    string
}
