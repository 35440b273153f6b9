package history

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stgm/chantier/internal/issue"
)

func TestBestImage_FileBeatsMarkup(t *testing.T) {
	events := []Event{
		{Kind: KindMarkup, Created: "2026-03-05T09:00:00Z", At: issue.ParseCreated("2026-03-05T09:00:00Z"), PreviewOriginal: "markup.png"},
		{Kind: KindFile, Mimetype: "image/jpeg", Created: "2026-03-01T09:00:00Z", At: issue.ParseCreated("2026-03-01T09:00:00Z"), PreviewOriginal: "photo.jpg"},
	}

	got := BestImage(issue.Issue{Preview: "issue.png"}, events)
	assert.Equal(t, "photo.jpg", got)
}

func TestBestImage_NewestFileWins(t *testing.T) {
	events := []Event{
		{Kind: KindFile, Mimetype: "image/png", At: issue.ParseCreated("2026-03-01T09:00:00Z"), PreviewOriginal: "old.png"},
		{Kind: KindFile, Mimetype: "image/png", At: issue.ParseCreated("2026-03-04T09:00:00Z"), PreviewOriginal: "new.png"},
	}

	assert.Equal(t, "new.png", BestImage(issue.Issue{}, events))
}

func TestBestImage_OriginalBeatsMiddle(t *testing.T) {
	events := []Event{
		{Kind: KindFile, Mimetype: "image/png", PreviewOriginal: "o.png", PreviewMiddle: "m.png"},
	}
	assert.Equal(t, "o.png", BestImage(issue.Issue{}, events))

	events[0].PreviewOriginal = ""
	assert.Equal(t, "m.png", BestImage(issue.Issue{}, events))
}

func TestBestImage_NonImageFileSkipped(t *testing.T) {
	events := []Event{
		{Kind: KindFile, Mimetype: "application/pdf", PreviewOriginal: "doc.pdf"},
		{Kind: KindMarkup, PreviewOriginal: "markup.png"},
	}

	assert.Equal(t, "markup.png", BestImage(issue.Issue{}, events))
}

func TestBestImage_IssuePreviewFallback(t *testing.T) {
	events := []Event{
		{Kind: KindText, Text: "rien à voir"},
		{Kind: KindFile, Mimetype: "image/png"},
	}

	assert.Equal(t, "issue.png", BestImage(issue.Issue{Preview: "issue.png"}, events))
}

func TestBestImage_Empty(t *testing.T) {
	assert.Equal(t, "", BestImage(issue.Issue{}, nil))
}

func TestBestImage_DoesNotMutateInput(t *testing.T) {
	events := []Event{
		{Kind: KindFile, Mimetype: "image/png", At: issue.ParseCreated("2026-03-01T09:00:00Z"), PreviewOriginal: "old.png"},
		{Kind: KindFile, Mimetype: "image/png", At: issue.ParseCreated("2026-03-04T09:00:00Z"), PreviewOriginal: "new.png"},
	}

	_ = BestImage(issue.Issue{}, events)
	assert.Equal(t, "old.png", events[0].PreviewOriginal)
	assert.Equal(t, "new.png", events[1].PreviewOriginal)
}
