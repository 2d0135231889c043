package store

// Persisted state is a handful of independent key -> JSON snapshot blobs.
// Whole collections are rewritten on every mutation; there are no deltas
// and no schema versioning. Absent keys mean "first run".
const (
	BlobTasks            = "tasks"
	BlobProjects         = "projects"
	BlobDarkMode         = "dark_mode"
	BlobCustomTags       = "custom_tags"
	BlobCustomCategories = "custom_categories"
)

// BlobStore is the persistence port behind the Store. Implementations must
// be safe for one writer plus concurrent readers.
type BlobStore interface {
	// Get returns the stored blob, or found=false if the key was never
	// written.
	Get(key string) (data []byte, found bool, err error)
	Put(key string, data []byte) error
	Close() error
}
