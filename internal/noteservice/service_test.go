package noteservice

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/eldrid/munin/internal/apperr"
	"github.com/eldrid/munin/internal/models"
	"github.com/eldrid/munin/internal/testutil"
)

func testService(t *testing.T) *Service {
	t.Helper()
	_, store := testutil.TestVault(t)
	return NewService(store, testutil.TestDB(t))
}

func TestCreateUpdateConflict(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	created, err := svc.CreateNote(ctx, "daily/a.md", []byte("v1"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.UpdateNote(ctx, "daily/a.md", []byte("v2"), created.Checksum); err != nil {
		t.Fatalf("update with fresh checksum: %v", err)
	}
	if _, err := svc.UpdateNote(ctx, "daily/a.md", []byte("v3"), created.Checksum); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("stale update err = %v, want ErrConflict", err)
	}
}

func TestDeleteLongTermProtected(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, models.LongTermPath, []byte("keep")); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteNote(ctx, models.LongTermPath); !errors.Is(err, apperr.ErrProtected) {
		t.Errorf("err = %v, want ErrProtected", err)
	}
	if err := svc.DeleteNote(ctx, "missing.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestNoteDetailCarriesAnnotations(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	content := "Met @Jane Doe re #sales\n\n- [ ] send quote by Friday\n\nSee [[Project Alpha]]"
	note, err := svc.CreateNote(ctx, "daily/a.md", []byte(content))
	if err != nil {
		t.Fatal(err)
	}
	if len(note.Contacts) != 1 || note.Contacts[0] != "Jane Doe" {
		t.Errorf("contacts = %v", note.Contacts)
	}
	if len(note.ActionItems) != 1 || note.ActionItems[0].DueDate != "Friday" {
		t.Errorf("action items = %+v", note.ActionItems)
	}

	// A second note linking to the first shows up as a backlink.
	if _, err := svc.CreateNote(ctx, "daily/b.md", []byte("More on [[a]]")); err != nil {
		t.Fatal(err)
	}
	got, err := svc.GetNote(ctx, "daily/a.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Backlinks) != 1 || got.Backlinks[0] != "daily/b.md" {
		t.Errorf("backlinks = %v", got.Backlinks)
	}
}

func TestStructureTranscriptSavesToDaily(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	_, path, err := svc.StructureTranscript(ctx, "Remind me to renew the domain tomorrow.", true, now)
	if err != nil {
		t.Fatal(err)
	}
	if path != "daily/2026-08-28.md" {
		t.Errorf("saved path = %q", path)
	}

	// A second capture on the same day appends with a separator.
	_, _, err = svc.StructureTranscript(ctx, "Idea: what if the dashboard had offline mode.", true, now)
	if err != nil {
		t.Fatal(err)
	}
	note, err := svc.GetNote(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(note.Content, "\n---\n") != 1 {
		t.Errorf("content = %q, want one separator", note.Content)
	}
}

func TestAttachmentRefRoundTrip(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "daily/a.md", []byte("body")); err != nil {
		t.Fatal(err)
	}
	if err := svc.AppendAttachmentRef(ctx, "daily/a.md", "photo.png"); err != nil {
		t.Fatal(err)
	}
	note, err := svc.GetNote(ctx, "daily/a.md")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(note.Content, "![photo.png](/attachments/photo.png)") {
		t.Errorf("content = %q, missing ref", note.Content)
	}

	if err := svc.RemoveAttachmentRef(ctx, "daily/a.md", "photo.png"); err != nil {
		t.Fatal(err)
	}
	note, err = svc.GetNote(ctx, "daily/a.md")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(note.Content, "photo.png") {
		t.Errorf("content = %q, ref not removed", note.Content)
	}
}

func TestWeeklySummaryOverVault(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	notes := map[string]string{
		"daily/a.md": "Meeting with @Jane Doe about #sales",
		"daily/b.md": "More #sales and a call with @Bob",
	}
	for p, c := range notes {
		if _, err := svc.CreateNote(ctx, p, []byte(c)); err != nil {
			t.Fatal(err)
		}
	}

	sum, err := svc.WeeklySummary(ctx, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalMemories != 2 {
		t.Errorf("total memories = %d", sum.TotalMemories)
	}
	if len(sum.TopTags) == 0 || sum.TopTags[0].Name != "sales" || sum.TopTags[0].Count != 2 {
		t.Errorf("top tags = %+v", sum.TopTags)
	}
}
