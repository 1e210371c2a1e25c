package bundle

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/internal/anchors"
	"github.com/tmoresby/veracity/internal/extraction"
	"github.com/tmoresby/veracity/internal/ledger"
	"github.com/tmoresby/veracity/internal/packets"
	"github.com/tmoresby/veracity/internal/snapshots"
	"github.com/tmoresby/veracity/internal/sources"
	"github.com/tmoresby/veracity/pkg/canonical"
)

// Assemble renders a corpus's state into the complete bundle file set and
// its manifest. It is pure: identical CorpusData and options yield
// byte-identical archives.
func Assemble(data CorpusData, opts Options) (*Archive, error) {
	if len(data.Events) > MaxLedgerEvents {
		return nil, fmt.Errorf("%w: %d events, cap %d", ErrTooManyEvents, len(data.Events), MaxLedgerEvents)
	}

	sortedSources := sortByID(data.Sources, func(s sources.Source) string { return s.ID.String() })
	sortedEvents := slices.Clone(data.Events)
	slices.SortFunc(sortedEvents, func(a, b ledger.Event) int {
		if c := a.OccurredAt.Compare(b.OccurredAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	files := make([]File, 0, 16)
	add := func(path string, v any) error {
		encoded, err := canonical.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		files = append(files, File{Path: path, Data: encoded})
		return nil
	}

	if err := add("corpus.json", data.Corpus); err != nil {
		return nil, err
	}
	if err := add("sources.json", sortedSources); err != nil {
		return nil, err
	}
	if err := add("ledger.json", sortedEvents); err != nil {
		return nil, err
	}

	for _, s := range sortByID(data.Snapshots, snapshotID) {
		if err := add(fmt.Sprintf("snapshots/%s.json", s.ID), s); err != nil {
			return nil, err
		}
	}
	for _, p := range sortByID(data.Packets, packetID) {
		if err := add(fmt.Sprintf("packets/%s.json", p.ID), p); err != nil {
			return nil, err
		}
	}

	if err := appendPageFiles(&files, add, data); err != nil {
		return nil, err
	}

	if err := add("anchors_proof_index.json", anchorProofIndex(data)); err != nil {
		return nil, err
	}
	if err := add("audit_summary.json", auditSummary(data, sortedSources)); err != nil {
		return nil, err
	}
	if err := add("packet_proof_index.json", packetProofIndex(data)); err != nil {
		return nil, err
	}
	if err := add("snapshot_proof_index.json", snapshotProofIndex(data)); err != nil {
		return nil, err
	}
	if err := add("ledger_proof_index.json", ledgerProofIndex(sortedEvents)); err != nil {
		return nil, err
	}

	files = append(files, File{Path: "audit_lines.txt", Data: []byte(AuditLines(data))})

	if opts.IncludeRawSources {
		for _, path := range sortedKeys(data.RawSources) {
			files = append(files, File{Path: path, Data: data.RawSources[path]})
		}
	}

	manifest, err := buildManifest(files, data, opts)
	if err != nil {
		return nil, err
	}

	manifestJSON, err := canonical.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	// Members ship in manifest path order with the manifest itself last.
	slices.SortFunc(files, func(a, b File) int { return cmp.Compare(a.Path, b.Path) })
	files = append(files, File{Path: ManifestName, Data: manifestJSON})

	return &Archive{Files: files, Manifest: *manifest}, nil
}

// buildManifest hashes every emitted file, sorts by path, and computes the
// manifest hash over the canonicalized list. The hash never covers
// generated_at or the manifest_hash_hex field itself.
func buildManifest(files []File, data CorpusData, opts Options) (*Manifest, error) {
	entries := make([]ManifestEntry, 0, len(files))
	for _, f := range files {
		entries = append(entries, ManifestEntry{
			Path:      f.Path,
			SHA256Hex: canonical.DigestBytes(f.Data),
		})
	}
	slices.SortFunc(entries, func(a, b ManifestEntry) int { return cmp.Compare(a.Path, b.Path) })

	hashHex, err := ManifestHash(entries)
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{
		Canon:           canonical.Version,
		Files:           entries,
		ManifestHashHex: hashHex,
	}
	if !opts.Deterministic {
		at := data.GeneratedAt
		manifest.GeneratedAt = &at
	}
	return manifest, nil
}

// ManifestHash computes the hash over a path-sorted manifest file list.
func ManifestHash(entries []ManifestEntry) (string, error) {
	return canonical.Hash(map[string]any{
		"canon": canonical.Version,
		"files": entries,
	})
}

// pageFile is the exported per-page artifact: the text hash only, never
// the text.
type pageFile struct {
	SourceID          string  `json:"source_id"`
	PageIndex         int     `json:"page_index"`
	PageTextSHA256Hex string  `json:"page_text_sha256_hex"`
	PagePNGPath       *string `json:"page_png_path,omitempty"`
}

func appendPageFiles(files *[]File, add func(string, any) error, data CorpusData) error {
	for _, srcID := range sortedUUIDKeys(data.Pages) {
		for _, page := range data.Pages[srcID] {
			path := fmt.Sprintf("pages/%s/page-%d.json", page.SourceID, page.PageIndex)
			if err := add(path, pageFile{
				SourceID:          page.SourceID.String(),
				PageIndex:         page.PageIndex,
				PageTextSHA256Hex: page.PageTextSHA256Hex,
				PagePNGPath:       page.PagePNGPath,
			}); err != nil {
				return err
			}

			imagePath := fmt.Sprintf("pages/%s/page-%d.png", page.SourceID, page.PageIndex)
			if img, ok := data.PageImages[imagePath]; ok {
				*files = append(*files, File{Path: imagePath, Data: img})
			}
		}
	}
	return nil
}

// anchorProofEntry carries what a verifier needs to re-run an anchor
// proof against independently obtained page text.
type anchorProofEntry struct {
	AnchorID          string `json:"anchor_id"`
	SourceID          string `json:"source_id"`
	PageIndex         int    `json:"page_index"`
	QuoteStartChar    int    `json:"quote_start_char"`
	QuoteEndChar      int    `json:"quote_end_char"`
	PageTextSHA256Hex string `json:"page_text_sha256_hex"`
}

func anchorProofIndex(data CorpusData) []anchorProofEntry {
	entries := make([]anchorProofEntry, 0, len(data.Anchors))
	for _, a := range data.Anchors {
		page, ok := provenancedPage(data, a)
		if !ok {
			continue
		}
		entries = append(entries, anchorProofEntry{
			AnchorID:          a.ID.String(),
			SourceID:          a.Provenance.SourceID.String(),
			PageIndex:         a.Provenance.PageIndex,
			QuoteStartChar:    a.Provenance.QuoteStartChar,
			QuoteEndChar:      a.Provenance.QuoteEndChar,
			PageTextSHA256Hex: page.PageTextSHA256Hex,
		})
	}
	slices.SortFunc(entries, func(a, b anchorProofEntry) int { return cmp.Compare(a.AnchorID, b.AnchorID) })
	return entries
}

// AuditLines renders the flat, diffable proof ledger: one pipe-delimited
// line per provenanced anchor, sorted by anchor id, with the substring
// hash recomputed live from stored page text.
func AuditLines(data CorpusData) string {
	lines := make([]string, 0, len(data.Anchors))
	for _, a := range data.Anchors {
		page, ok := provenancedPage(data, a)
		if !ok {
			continue
		}

		proof := anchors.Prove(page.PageText, a.Provenance.QuoteStartChar, a.Provenance.QuoteEndChar, a.Quote)
		lines = append(lines, strings.Join([]string{
			a.ID.String(),
			a.Provenance.SourceID.String(),
			fmt.Sprintf("%d", a.Provenance.PageIndex),
			fmt.Sprintf("%d", a.Provenance.QuoteStartChar),
			fmt.Sprintf("%d", a.Provenance.QuoteEndChar),
			page.PageTextSHA256Hex,
			proof.SubstringSHA256,
		}, "|"))
	}
	slices.Sort(lines)

	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// provenancedPage resolves the page record behind an anchor's provenance.
// Anchors without valid supported-extractor provenance, or whose page was
// never persisted, are excluded from proof artifacts.
func provenancedPage(data CorpusData, a anchors.Anchor) (sources.PageRecord, bool) {
	if !a.Provable(extraction.SupportedExtractor) {
		return sources.PageRecord{}, false
	}
	for _, page := range data.Pages[a.Provenance.SourceID] {
		if page.PageIndex == a.Provenance.PageIndex {
			return page, true
		}
	}
	return sources.PageRecord{}, false
}

func auditSummary(data CorpusData, sortedSources []sources.Source) map[string]any {
	byRole := map[string]int{}
	for _, s := range sortedSources {
		byRole[string(s.Role)]++
	}

	pageCount := 0
	for _, pages := range data.Pages {
		pageCount += len(pages)
	}

	anchorsBySource := map[string]int{}
	for _, a := range data.Anchors {
		anchorsBySource[a.SourceID.String()]++
	}

	claimsByClassification := map[string]int{}
	for _, c := range data.Claims {
		claimsByClassification[string(c.Classification)]++
	}

	eventsByType := map[string]int{}
	for _, e := range data.Events {
		eventsByType[string(e.EventType)]++
	}

	return map[string]any{
		"sources_by_role":          byRole,
		"pages":                    pageCount,
		"anchors_by_source":        anchorsBySource,
		"claims_by_classification": claimsByClassification,
		"snapshots":                len(data.Snapshots),
		"packets":                  len(data.Packets),
		"ledger_events_by_type":    eventsByType,
	}
}

type packetProofEntry struct {
	PacketID        string `json:"packet_id"`
	CorpusID        string `json:"corpus_id"`
	ClaimID         string `json:"claim_id"`
	SnapshotID      string `json:"snapshot_id"`
	SnapshotHashHex string `json:"snapshot_hash_hex"`
	HashHex         string `json:"hash_hex"`
}

func packetProofIndex(data CorpusData) []packetProofEntry {
	entries := make([]packetProofEntry, 0, len(data.Packets))
	for _, p := range data.Packets {
		entries = append(entries, packetProofEntry{
			PacketID:        p.ID.String(),
			CorpusID:        p.CorpusID.String(),
			ClaimID:         p.ClaimID.String(),
			SnapshotID:      p.SnapshotID.String(),
			SnapshotHashHex: p.SnapshotHashHex,
			HashHex:         p.HashHex,
		})
	}
	slices.SortFunc(entries, func(a, b packetProofEntry) int { return cmp.Compare(a.PacketID, b.PacketID) })
	return entries
}

type snapshotProofEntry struct {
	SnapshotID string `json:"snapshot_id"`
	CorpusID   string `json:"corpus_id"`
	ClaimCount int    `json:"claim_count"`
	HashHex    string `json:"hash_hex"`
}

func snapshotProofIndex(data CorpusData) []snapshotProofEntry {
	entries := make([]snapshotProofEntry, 0, len(data.Snapshots))
	for _, s := range data.Snapshots {
		entries = append(entries, snapshotProofEntry{
			SnapshotID: s.ID.String(),
			CorpusID:   s.CorpusID.String(),
			ClaimCount: len(s.Claims),
			HashHex:    s.HashHex,
		})
	}
	slices.SortFunc(entries, func(a, b snapshotProofEntry) int { return cmp.Compare(a.SnapshotID, b.SnapshotID) })
	return entries
}

type ledgerProofEntry struct {
	EventID    string `json:"event_id"`
	CorpusID   string `json:"corpus_id"`
	EventType  string `json:"event_type"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	HashHex    string `json:"hash_hex"`
}

func ledgerProofIndex(events []ledger.Event) []ledgerProofEntry {
	entries := make([]ledgerProofEntry, 0, len(events))
	for _, e := range events {
		entries = append(entries, ledgerProofEntry{
			EventID:    e.ID.String(),
			CorpusID:   e.CorpusID.String(),
			EventType:  string(e.EventType),
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			HashHex:    e.HashHex,
		})
	}
	slices.SortFunc(entries, func(a, b ledgerProofEntry) int { return cmp.Compare(a.EventID, b.EventID) })
	return entries
}

func sortByID[T any](in []T, id func(T) string) []T {
	out := slices.Clone(in)
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(id(a), id(b)) })
	return out
}

func snapshotID(s snapshots.Snapshot) string { return s.ID.String() }

func packetID(p packets.Packet) string { return p.ID.String() }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func sortedUUIDKeys[V any](m map[uuid.UUID]V) []uuid.UUID {
	keys := make([]uuid.UUID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b uuid.UUID) int { return cmp.Compare(a.String(), b.String()) })
	return keys
}
