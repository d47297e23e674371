// Package library is the operator-facing song loader: it hashes a file for
// cache lookup, delegates decoding to the external ffmpeg boundary,
// analyzes (or reuses a cached) bpm/offset, and assembles a song.Song. This
// is ambient infrastructure around the pure Analyzer, grounded in the
// teacher's content-hash cache and bounded-concurrency batch pattern.
package library

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/sscholbe/autodj/internal/analyze"
	"github.com/sscholbe/autodj/internal/audio"
	"github.com/sscholbe/autodj/internal/decode"
	"github.com/sscholbe/autodj/internal/song"
)

// maxBatchConcurrency bounds how many songs are analyzed in parallel, the
// same ceiling the teacher's worker-pool batch analyzer used.
const maxBatchConcurrency = 4

// cachedAnalysis is the on-disk representation of an analysis result, keyed
// by file content hash so re-encodes of the same audio skip reanalysis.
type cachedAnalysis struct {
	BPM    float64 `json:"bpm"`
	Offset int64   `json:"offset"`
}

// Loader loads songs from disk, decoding through Decoder and caching
// analysis results under CacheDir (if non-empty).
type Loader struct {
	Decoder  decode.Decoder
	CacheDir string
}

// Load decodes and analyzes a song file, reusing a cached analysis result
// keyed by content hash when available.
func (l *Loader) Load(ctx context.Context, path string) (*song.Song, error) {
	hash, hashErr := fileHash(path)

	if hashErr == nil && l.CacheDir != "" {
		if cached, ok := l.loadCache(hash); ok {
			pcm, frames, err := l.Decoder.Decode(ctx, path)
			if err != nil {
				return nil, fmt.Errorf("library: decode %s: %w", path, err)
			}
			src := audio.NewSource(pcm, frames)
			return song.New(path, src, cached.BPM, cached.Offset), nil
		}
	}

	pcm, frames, err := l.Decoder.Decode(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("library: decode %s: %w", path, err)
	}
	src := audio.NewSource(pcm, frames)

	bpm, offset, err := analyze.Analyze(src)
	if err != nil {
		return nil, fmt.Errorf("library: analyze %s: %w", path, err)
	}

	if hashErr == nil && l.CacheDir != "" {
		l.saveCache(hash, cachedAnalysis{BPM: bpm, Offset: offset})
	}
	return song.New(path, src, bpm, offset), nil
}

// LoadBatch loads many songs concurrently, bounded to maxBatchConcurrency
// in flight at once. Results are returned in input order; a failed load
// leaves a nil Song at that index with the error recorded separately.
func (l *Loader) LoadBatch(ctx context.Context, paths []string) ([]*song.Song, []error) {
	songs := make([]*song.Song, len(paths))
	errs := make([]error, len(paths))
	sem := make(chan struct{}, maxBatchConcurrency)
	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, p string) {
			defer wg.Done()
			defer func() { <-sem }()
			s, err := l.Load(ctx, p)
			songs[i] = s
			errs[i] = err
		}(i, p)
	}
	wg.Wait()
	return songs, errs
}

func (l *Loader) cachePath(hash string) string {
	return filepath.Join(l.CacheDir, hash+".json")
}

func (l *Loader) loadCache(hash string) (cachedAnalysis, bool) {
	data, err := os.ReadFile(l.cachePath(hash))
	if err != nil {
		return cachedAnalysis{}, false
	}
	var c cachedAnalysis
	if err := json.Unmarshal(data, &c); err != nil {
		return cachedAnalysis{}, false
	}
	return c, true
}

func (l *Loader) saveCache(hash string, c cachedAnalysis) {
	if err := os.MkdirAll(l.CacheDir, 0o755); err != nil {
		log.Printf("[cache] mkdir %s: %v", l.CacheDir, err)
		return
	}
	data, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := os.WriteFile(l.cachePath(hash), data, 0o644); err != nil {
		log.Printf("[cache] write %s: %v", l.cachePath(hash), err)
	}
}

// fileHash hashes a file's size plus its first and last 1MiB, avoiding a
// full read of large audio files while still being sensitive to content
// changes for cache invalidation.
func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	size := info.Size()

	const chunk = 1 << 20
	h := md5.New()
	fmt.Fprintf(h, "%d", size)

	head := make([]byte, chunk)
	n, _ := f.ReadAt(head, 0)
	h.Write(head[:n])

	if size > chunk {
		tailStart := size - chunk
		if tailStart < int64(n) {
			tailStart = int64(n)
		}
		tail := make([]byte, size-tailStart)
		m, _ := f.ReadAt(tail, tailStart)
		h.Write(tail[:m])
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
