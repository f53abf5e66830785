package compositor

import "fmt"

// Flusher writes buffered requests to the compositor.
type Flusher interface {
	Flush() error
}

// Committer applies pending changes atomically on the compositor side.
type Committer interface {
	CommitChanges()
}

// CommitBatcher finishes one mutating operation: every request the
// operation issued is applied by a single commit, then the transport is
// flushed. Requests of separate operations are never merged into one
// commit.
type CommitBatcher struct {
	committer Committer
	flusher   Flusher
}

func NewCommitBatcher(c Committer, f Flusher) *CommitBatcher {
	return &CommitBatcher{committer: c, flusher: f}
}

// CommitAndFlush issues one commit request and flushes the transport.
func (b *CommitBatcher) CommitAndFlush() error {
	b.committer.CommitChanges()
	if err := b.flusher.Flush(); err != nil {
		return fmt.Errorf("flush controller changes: %w", err)
	}
	return nil
}
