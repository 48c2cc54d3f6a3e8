// Package finder is the Finder Facade of spec.md §4.6: session lifecycle,
// chunk partitioning, the pass loop, and the global result list.
package finder

import (
	"context"
	"io"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/kshedden/binfinder/internal/bytesource"
	"github.com/kshedden/binfinder/internal/candidate"
	"github.com/kshedden/binfinder/internal/catalog"
	"github.com/kshedden/binfinder/internal/fit"
	"github.com/kshedden/binfinder/internal/model"
	"github.com/kshedden/binfinder/internal/overlap"
	"github.com/kshedden/binfinder/internal/report"
	"github.com/kshedden/binfinder/internal/scanner"
	"github.com/kshedden/binfinder/internal/streak"
)

// Session owns one scanning run over a byte source: its config, logger,
// session id, verdict cache, and the global result list guarded by a
// single mutex (spec.md §5).
type Session struct {
	id     uuid.UUID
	src    *bytesource.Source
	cfg    Config
	logger *log.Logger
	cache  *candidate.Cache

	mu      sync.Mutex
	results []model.Streak
	byOffset map[int64]int
}

// NewSession constructs a session over src. A nil logOut discards all log
// output. The logger mirrors muscato_screen.setupLogger's
// log.New(w, "", log.Ltime) shape.
func NewSession(src *bytesource.Source, cfg Config, logOut io.Writer) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logOut == nil {
		logOut = io.Discard
	}
	return &Session{
		id:       uuid.New(),
		src:      src,
		cfg:      cfg,
		logger:   log.New(logOut, "", log.Ltime),
		cache:    candidate.NewCache(),
		byOffset: make(map[int64]int),
	}, nil
}

// ID returns the session's uuid, stamped into every log line.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// WriteResultsToFile writes the current result set to path as a plain
// JSON report (spec.md §6).
func (s *Session) WriteResultsToFile(path string) error {
	return report.Write(path, s.Results())
}

// WriteResultsToFileCompressed writes the current result set to path as a
// snappy-compressed JSON report.
func (s *Session) WriteResultsToFileCompressed(path string) error {
	return report.WriteCompressed(path, s.Results())
}

// LoadResultsFromFile replaces the session's result set with the streaks
// decoded from a previously written plain JSON report.
func (s *Session) LoadResultsFromFile(path string) error {
	streaks, err := report.Load(path, catalog.ByTag)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = streaks
	s.byOffset = make(map[int64]int, len(streaks))
	for i, r := range streaks {
		s.byOffset[r.Offset] = i
	}
	return nil
}

// Results returns a snapshot of the current global result list.
func (s *Session) Results() []model.Streak {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Streak, len(s.results))
	copy(out, s.results)
	return out
}

// SetResults replaces the session's result set wholesale, re-keying the
// offset index. Used by callers that post-process Results() (e.g.
// internal/extract, which attaches decoded values) and want the session's
// view to reflect the enriched copies before writing a report.
func (s *Session) SetResults(results []model.Streak) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append([]model.Streak(nil), results...)
	s.byOffset = make(map[int64]int, len(s.results))
	for i, r := range s.results {
		s.byOffset[r.Offset] = i
	}
}

// Run executes the pass loop of spec.md §4.2/§4.6 to completion or until
// ctx is cancelled (spec.md §5 "SessionAborted... partial results are
// still returned").
func (s *Session) Run(ctx context.Context) error {
	fileSize := s.src.Size()

	chunks, testChunkSize := partitionChunks(s.src, s.cfg)
	rowBound := scanner.RowBound(s.cfg.valueInRow())
	hyps := scanner.Hypotheses(catalog.Filter(s.cfg.DataTypes), s.cfg.endians())

	numWorkers := s.cfg.NumberOfThreads
	if numWorkers < 1 {
		numWorkers = 1
	}

	s.logger.Printf("session %s: %d chunks, test_chunk_size=%d, %d workers", s.id, len(chunks), testChunkSize, numWorkers)

	// The pass loop is bounded by one chunk's own length, not the file
	// size: windowOffset in scanner.Pass is relative to each chunk's
	// Data slice (scanner.go's windowSlice/chunk.Base+windowOffset), and
	// data_finder.py's find_data loops the same way, over self._chunk_size
	// (a single chunk's length), never total file size.
	var chunkSize int64
	if len(chunks) > 0 {
		chunkSize = int64(len(chunks[0].Data))
	}

	// A window only runs when a full test_chunk_size still fits in the
	// chunk; once the remaining tail is smaller, the loop stops and
	// finalize's two overlap-resolution passes take over (spec.md §4.2),
	// matching data_finder.py's `chunk_size - offset < test_chunk_size`
	// break check.
	offset := int64(0)
	for chunkSize-offset >= testChunkSize {
		select {
		case <-ctx.Done():
			s.logger.Printf("session %s: cancelled at pass offset %d", s.id, offset)
			return s.finalize(fileSize)
		default:
		}

		seeds := scanner.Pass(ctx, chunks, offset, int(testChunkSize), rowBound, hyps, numWorkers, s.cache)
		s.logger.Printf("session %s: pass at offset %d produced %d seeds", s.id, offset, len(seeds))
		s.ingest(seeds, fileSize)

		offset += testChunkSize
	}

	return s.finalize(fileSize)
}

// partitionChunks implements spec.md §4.2's partitioning loop: N starts at
// threads+1 and is decremented until the first chunk reaches
// test_chunk_size = 5*min_length_data, or N hits 1, at which point
// test_chunk_size clamps to the actual chunk size.
func partitionChunks(src *bytesource.Source, cfg Config) ([]scanner.Chunk, int64) {
	testChunkSize := int64(5 * cfg.MinLengthData)

	n := cfg.NumberOfThreads + 1
	if n < 1 {
		n = 1
	}

	var raw [][]byte
	for {
		raw = src.Chunks(n)
		if len(raw) == 0 {
			break
		}
		if int64(len(raw[0])) >= testChunkSize || n == 1 {
			if n == 1 {
				testChunkSize = int64(len(raw[0]))
			}
			break
		}
		n--
	}

	chunks := make([]scanner.Chunk, len(raw))
	base := int64(0)
	for i, c := range raw {
		chunks[i] = scanner.Chunk{Base: base, Data: c}
		base += int64(len(c))
	}
	return chunks, testChunkSize
}

// ingest implements spec.md §4.6's seed-ingestion steps 1-5 for one pass's
// batch of seeds.
func (s *Session) ingest(seeds []model.Seed, fileSize int64) {
	deduped := scanner.DedupSeeds(seeds)

	grown := make([]model.Streak, 0, len(deduped))
	for _, seed := range deduped {
		st := streak.Grow(s.src, seed, fileSize)
		if st.QualityIndex >= fit.MaxValidationError {
			continue
		}
		grown = append(grown, st)
	}

	resolved := overlap.Resolve(grown)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range resolved {
		if idx, ok := s.byOffset[st.Offset]; ok {
			if st.QualityIndex < s.results[idx].QualityIndex {
				s.results[idx] = st
			}
			continue
		}
		s.byOffset[st.Offset] = len(s.results)
		s.results = append(s.results, st)
	}
}

// finalize runs the two end-of-scan overlap-resolution passes and clips
// every surviving streak to the file size (spec.md §4.2's pass-loop tail).
func (s *Session) finalize(fileSize int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	resolved := overlap.Resolve(s.results)
	resolved = overlap.Resolve(resolved)

	clipped := make([]model.Streak, 0, len(resolved))
	for _, st := range resolved {
		st = st.ClipToFileSize(fileSize)
		if err := st.Validate(fileSize); err != nil {
			// Best-effort discovery (spec.md §7): a streak that fails its
			// own invariants after clipping is discarded, not fatal.
			s.logger.Printf("session %s: dropping invalid streak at offset %d: %v", s.id, st.Offset, err)
			continue
		}
		clipped = append(clipped, st)
	}

	s.results = clipped
	s.byOffset = make(map[int64]int, len(clipped))
	for i, r := range clipped {
		s.byOffset[r.Offset] = i
	}
	return nil
}
