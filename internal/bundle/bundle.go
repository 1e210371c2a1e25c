// Package bundle implements the deterministic export/verify protocol. An
// export gathers a corpus's entities, renders each to a canonical JSON
// file, hashes every file into a path-sorted manifest, and streams the
// result as a ZIP whose bytes are stable across repeated exports of
// unchanged state. Verification works from the ZIP alone: no database,
// no API access.
package bundle

import (
	"time"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/internal/anchors"
	"github.com/tmoresby/veracity/internal/claims"
	"github.com/tmoresby/veracity/internal/corpora"
	"github.com/tmoresby/veracity/internal/ledger"
	"github.com/tmoresby/veracity/internal/packets"
	"github.com/tmoresby/veracity/internal/snapshots"
	"github.com/tmoresby/veracity/internal/sources"
)

// ManifestName is the manifest's fixed path inside the archive.
const ManifestName = "MANIFEST.json"

// MaxLedgerEvents caps exportable audit trails. A corpus over the cap is
// refused outright, never truncated.
const MaxLedgerEvents = ledger.MaxListLimit

// Options controls an export run.
type Options struct {
	// IncludeRawSources adds the original uploaded bytes under
	// sources_raw/.
	IncludeRawSources bool
	// Deterministic excludes generated_at from hashed content and fixes
	// ZIP member timestamps, so unchanged state exports byte-identically.
	Deterministic bool
}

// File is one archive member.
type File struct {
	Path string
	Data []byte
}

// ManifestEntry records one file's content hash.
type ManifestEntry struct {
	Path      string `json:"path"`
	SHA256Hex string `json:"sha256_hex"`
}

// Manifest roots the bundle: every emitted file's hash, path-sorted, plus
// a hash over that list. GeneratedAt is present only in non-deterministic
// exports and is never covered by ManifestHashHex.
type Manifest struct {
	Canon           int             `json:"canon"`
	GeneratedAt     *time.Time      `json:"generated_at,omitempty"`
	Files           []ManifestEntry `json:"files"`
	ManifestHashHex string          `json:"manifest_hash_hex"`
}

// Archive is a fully assembled bundle: members in their final ZIP order
// with the manifest last.
type Archive struct {
	Files    []File
	Manifest Manifest
}

// CorpusData is everything an export reads. The assembler is pure over
// this snapshot of state; gathering it is the service's job.
type CorpusData struct {
	Corpus      corpora.Corpus
	Sources     []sources.Source
	Pages       map[uuid.UUID][]sources.PageRecord
	PageImages  map[string][]byte
	Anchors     []anchors.Anchor
	Claims      []claims.Claim
	Snapshots   []snapshots.Snapshot
	Packets     []packets.Packet
	Events      []ledger.Event
	RawSources  map[string][]byte
	GeneratedAt time.Time
}

// VerifyFileResult is one file's verification outcome.
type VerifyFileResult struct {
	Path     string `json:"path"`
	OK       bool   `json:"ok"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// VerifyResult is the full bundle verification outcome. Mismatches are
// reported here, never as errors.
type VerifyResult struct {
	BundleOK    bool               `json:"bundle_ok"`
	ManifestOK  bool               `json:"manifest_ok"`
	FileResults []VerifyFileResult `json:"file_results"`
}
