package updater

import (
	"github.com/agentx-labs/bootkeeper/internal/digest"
	"github.com/agentx-labs/bootkeeper/internal/storage"
	"github.com/agentx-labs/bootkeeper/internal/transport"
	"github.com/rs/zerolog"
)

// TrackedFile pairs an installed file with its remote source.
type TrackedFile struct {
	// LocalPath is where the file is installed.
	LocalPath string
	// RemotePath is relative to the manifest base URL.
	RemotePath string
}

// Status is the result of processing one TrackedFile.
type Status int

const (
	// Unchanged means the local file was left as it was.
	Unchanged Status = iota
	// Replaced means the local file now holds the remote content.
	Replaced
	// Failed means the file could not be processed; see Outcome.Err.
	Failed
)

func (s Status) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Replaced:
		return "replaced"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome reports what happened to one TrackedFile.
type Outcome struct {
	File   TrackedFile
	Status Status
	// OldDigest is nil when no local file existed.
	OldDigest *digest.Digest
	// NewDigest is nil when the download failed.
	NewDigest *digest.Digest
	// Err is set for Failed outcomes, and for Unchanged outcomes whose
	// download failed with no local file present.
	Err error
	// DryRun marks a Replaced outcome that was planned but not written.
	DryRun bool
}

// Updater applies remote content to tracked files.
type Updater struct {
	transport transport.Transport
	store     storage.Storage
	logger    zerolog.Logger
	dryRun    bool
}

// Option configures an Updater.
type Option func(*Updater)

// WithLogger sets the logger for per-file progress.
func WithLogger(l zerolog.Logger) Option {
	return func(u *Updater) {
		u.logger = l
	}
}

// WithDryRun makes Apply report planned replacements without writing.
func WithDryRun(dryRun bool) Option {
	return func(u *Updater) {
		u.dryRun = dryRun
	}
}

// New creates an Updater downloading through t and writing through store.
func New(t transport.Transport, store storage.Storage, opts ...Option) *Updater {
	u := &Updater{
		transport: t,
		store:     store,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// DryRun reports whether the updater only plans.
func (u *Updater) DryRun() bool {
	return u.dryRun
}
