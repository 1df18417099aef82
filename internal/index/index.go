package index

import "github.com/eldrid/munin/internal/models"

// NoteIndex defines the interface for derived-metadata cache operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type NoteIndex interface {
	UpsertNote(n NoteRow, links []string) error
	DeleteNote(path string) error
	GetNote(path string) (*NoteRow, error)
	ListNotes(limit, offset int, tag, sort string) ([]NoteRow, int, error)
	Backlinks(targetTitle string) ([]string, error)
	AllChecksums() (map[string]string, error)
	ListContacts() ([]models.Contact, error)
	GetContact(id string) (*models.Contact, error)
	UpsertContact(c models.Contact) error
	DeleteContact(id string) error
	Close() error
}

// Verify *DB satisfies NoteIndex at compile time.
var _ NoteIndex = (*DB)(nil)
