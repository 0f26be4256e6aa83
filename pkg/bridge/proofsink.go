package bridge

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// ProofSink receives the proof payload of each fast withdrawal so the
// settlement stays provably linked to a rollup state root. The real sink is
// the rollup's proving pipeline; the in-memory log backs the simulator and
// tests.
type ProofSink interface {
	Push(blockRef common.Hash, payload []byte) error
}

// ProofEntry is one recorded proof submission.
type ProofEntry struct {
	BlockRef common.Hash
	Payload  []byte
}

// ProofLog is an in-memory ProofSink.
type ProofLog struct {
	mu      sync.Mutex
	entries []ProofEntry
}

// NewProofLog creates an empty proof log.
func NewProofLog() *ProofLog {
	return &ProofLog{}
}

// Push appends a proof entry.
func (p *ProofLog) Push(blockRef common.Hash, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]byte, len(payload))
	copy(cp, payload)
	p.entries = append(p.entries, ProofEntry{BlockRef: blockRef, Payload: cp})
	return nil
}

// Entries returns a snapshot of recorded proofs.
func (p *ProofLog) Entries() []ProofEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ProofEntry, len(p.entries))
	copy(out, p.entries)
	return out
}
