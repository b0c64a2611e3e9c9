package chunkset

import (
	"context"
	"net/http"
	"os"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/guiyumin/rangedl/internal/archive"
	"github.com/guiyumin/rangedl/internal/hashsum"
	"github.com/guiyumin/rangedl/internal/vreader"
)

// Chunks is an ordered-by-Begin collection covering [0, length) without
// overlaps once sorted.
type Chunks struct {
	chunks []*Chunk
}

// New partitions length into threads ranges: size = ceil(length/threads),
// ranges [size*i, min(size*(i+1), length)) for i in [0, threads). The last
// chunk's End always equals length.
func New(threads int, length int64) *Chunks {
	t := int64(threads)
	size := (length + t - 1) / t
	if size == 0 {
		size = 1
	}
	chunks := make([]*Chunk, 0, threads)
	for i := int64(0); i < t; i++ {
		begin := size * i
		if begin >= length {
			break
		}
		end := begin + size
		if end > length {
			end = length
		}
		chunks = append(chunks, &Chunk{Begin: begin, End: end, Length: length})
	}
	if len(chunks) == 0 {
		// length == 0: a single empty chunk, matching the L=0 boundary case.
		chunks = append(chunks, &Chunk{Begin: 0, End: 0, Length: 0})
	}
	return &Chunks{chunks: chunks}
}

// ProgressSink receives byte-count increments and a terminal Finish call.
type ProgressSink interface {
	Inc(delta int64)
	Finish()
}

// Download fans out all chunk transfers in parallel, awaiting all of them
// and propagating the first error. On success, chunks are sorted by Begin —
// tolerant of whatever order the fan-out actually completed in.
func (c *Chunks) Download(ctx context.Context, client *http.Client, url string, headers http.Header, progress ProgressSink, log *zap.Logger) error {
	var onProgress func(int64)
	if progress != nil {
		onProgress = progress.Inc
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, chunk := range c.chunks {
		chunk := chunk
		g.Go(func() error {
			return chunk.Download(gctx, client, url, headers, onProgress, log)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(c.chunks, func(i, j int) bool { return c.chunks[i].Begin < c.chunks[j].Begin })
	if progress != nil {
		progress.Finish()
	}
	return nil
}

// Save duplicates the output file handle once per chunk and writes each
// chunk at its own offset; ranges are disjoint, so write order between
// chunks never matters. Flushes to storage once all chunks are written.
func (c *Chunks) Save(output *os.File) error {
	for _, chunk := range c.chunks {
		dup, err := dupFile(output)
		if err != nil {
			return &FileError{Op: "dup", Err: err}
		}
		err = chunk.Save(dup)
		closeErr := dup.Close()
		if err != nil {
			return err
		}
		if closeErr != nil {
			return &FileError{Op: "close", Err: closeErr}
		}
	}
	if err := output.Sync(); err != nil {
		return &FileError{Op: "sync", Err: err}
	}
	return nil
}

// SaveArchive builds the ordered list of chunk payload slices and runs the
// decompress/extract pipeline over a virtual reader of them.
func (c *Chunks) SaveArchive(format archive.Format, output *os.File, extractDir string) error {
	slices := make([][]byte, len(c.chunks))
	for i, chunk := range c.chunks {
		slices[i] = chunk.Payload()
	}
	reader := vreader.New(slices)
	return archive.Decompress(format, reader, output, extractDir)
}

// Verify feeds each chunk's payload into the hasher in offset order and
// compares the resulting digest against expected.
func (c *Chunks) Verify(expected string) error {
	h, err := hashsum.NewFromChecksum(expected)
	if err != nil {
		return err
	}
	for _, chunk := range c.chunks {
		h.Update(chunk.Payload())
	}
	return h.Verify(expected)
}

// Len reports the number of chunks — mainly for tests asserting partition invariants.
func (c *Chunks) Len() int { return len(c.chunks) }

// Ranges exposes the (begin, end) pairs in current order, for tests.
func (c *Chunks) Ranges() [][2]int64 {
	out := make([][2]int64, len(c.chunks))
	for i, chunk := range c.chunks {
		out[i] = [2]int64{chunk.Begin, chunk.End}
	}
	return out
}
