package index

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/eldrid/munin/internal/apperr"
	"github.com/eldrid/munin/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "munin-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func row(path string, tags []string, updatedAt time.Time) NoteRow {
	return NoteRow{
		Path:      path,
		Name:      models.NameForPath(path),
		Category:  models.CategoryForPath(path),
		Checksum:  "cs-" + path,
		Tags:      tags,
		WordCount: 10,
		UpdatedAt: updatedAt,
	}
}

func TestUpsertAndGetNote(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC().Truncate(time.Second)

	if err := db.UpsertNote(row("daily/2026-08-28.md", []string{"iot"}, now), []string{"Alpha"}); err != nil {
		t.Fatal(err)
	}

	n, err := db.GetNote("daily/2026-08-28.md")
	if err != nil {
		t.Fatal(err)
	}
	if n.Name != "2026-08-28" || n.Category != models.CategoryDaily {
		t.Errorf("note = %+v", n)
	}
	if len(n.Tags) != 1 || n.Tags[0] != "iot" {
		t.Errorf("tags = %v", n.Tags)
	}
}

func TestGetNote_NotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.GetNote("missing.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListNotes_TagFilterAndPagination(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC()
	paths := []string{"daily/a.md", "daily/b.md", "long-term.md"}
	for i, p := range paths {
		tags := []string{"misc"}
		if i < 2 {
			tags = []string{"iot"}
		}
		if err := db.UpsertNote(row(p, tags, now.Add(time.Duration(i)*time.Minute)), nil); err != nil {
			t.Fatal(err)
		}
	}

	rows, total, err := db.ListNotes(10, 0, "iot", "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(rows) != 2 {
		t.Errorf("total = %d rows = %d", total, len(rows))
	}

	rows, total, err = db.ListNotes(1, 1, "", "path")
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(rows) != 1 || rows[0].Path != "daily/b.md" {
		t.Errorf("total = %d rows = %v", total, rows)
	}
}

func TestBacklinks_CaseInsensitive(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC()
	if err := db.UpsertNote(row("daily/a.md", nil, now), []string{"Project Alpha"}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertNote(row("daily/b.md", nil, now), []string{"other"}); err != nil {
		t.Fatal(err)
	}

	sources, err := db.Backlinks("project alpha")
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 1 || sources[0] != "daily/a.md" {
		t.Errorf("sources = %v", sources)
	}
}

func TestDeleteNote_RemovesLinks(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC()
	if err := db.UpsertNote(row("daily/a.md", nil, now), []string{"Target"}); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteNote("daily/a.md"); err != nil {
		t.Fatal(err)
	}
	sources, err := db.Backlinks("Target")
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 0 {
		t.Errorf("sources = %v, want none", sources)
	}
	cs, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	if len(cs) != 0 {
		t.Errorf("checksums = %v, want empty", cs)
	}
}

func TestContactCRUD(t *testing.T) {
	db := testDB(t)
	c := models.Contact{ID: "c1", FirstName: "Jane", LastName: "Doe"}
	if err := db.UpsertContact(c); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetContact("c1")
	if err != nil {
		t.Fatal(err)
	}
	if got.FullName() != "Jane Doe" {
		t.Errorf("contact = %+v", got)
	}

	c.LastName = "Smith"
	if err := db.UpsertContact(c); err != nil {
		t.Fatal(err)
	}
	all, err := db.ListContacts()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].LastName != "Smith" {
		t.Errorf("contacts = %v", all)
	}

	if err := db.DeleteContact("c1"); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteContact("c1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
