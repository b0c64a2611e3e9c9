package rangedl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/guiyumin/rangedl/internal/archive"
	"github.com/guiyumin/rangedl/internal/chunkset"
	"github.com/guiyumin/rangedl/internal/progress"
)

// Download is a plan for fetching one resource: URL, headers, destination,
// threading preference, and optional checksum/archive configuration. It is
// constructed empty, configured via DownloadOptions, and
// consumed exactly once by its owning Downloader's StartDownloads call.
type Download struct {
	url     string
	headers http.Header

	file     *os.File // caller-supplied destination; fillOutput leaves this set once resolved
	dir      string
	filename string // caller-supplied filename override, empty if derived

	preferredThreads int // 0 means "let the heuristic decide"
	contentLength    int64

	checksum      string
	archiveFormat *archive.Format

	chunks *chunkset.Chunks
}

// DownloadOption configures a Download at construction time.
type DownloadOption func(*Download)

// NewDownload builds a Download for rawURL, applying opts in order.
func NewDownload(rawURL string, opts ...DownloadOption) *Download {
	d := &Download{url: rawURL, headers: make(http.Header)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithHeaders merges headers into every request this Download issues
// (preflight and ranged fetches alike).
func WithHeaders(headers http.Header) DownloadOption {
	return func(d *Download) {
		for k, vs := range headers {
			for _, v := range vs {
				d.headers.Add(k, v)
			}
		}
	}
}

// WithThreads overrides the thread-count heuristic with an explicit count in
// [1, 255].
func WithThreads(n int) DownloadOption {
	return func(d *Download) { d.preferredThreads = n }
}

// WithChecksum configures an expected hex digest; the hash algorithm is
// inferred later from its length.
func WithChecksum(expectedHex string) DownloadOption {
	return func(d *Download) { d.checksum = expectedHex }
}

// WithArchiveFormat configures the decompress/extract pipeline for this
// Download's payload.
func WithArchiveFormat(format archive.Format) DownloadOption {
	return func(d *Download) { d.archiveFormat = &format }
}

// WithDestination sets the destination directory and filename explicitly,
// overriding the derived-from-URL default.
func WithDestination(dir, filename string) DownloadOption {
	return func(d *Download) {
		d.dir = dir
		d.filename = filename
	}
}

// WithFile supplies an already-open destination file handle directly,
// bypassing filename derivation and exclusive-create entirely.
func WithFile(f *os.File) DownloadOption {
	return func(d *Download) { d.file = f }
}

// fillOutput resolves d.file if the caller didn't supply one directly:
// derives the effective filename, rejects the multi-entry/explicit-filename
// combination, strips a single-file codec's conventional extension, and
// creates the file with exclusive-create semantics.
func (d *Download) fillOutput(startupDir string) error {
	if d.file != nil {
		return nil
	}

	filename := d.filename
	if filename == "" {
		filename = deriveFilename(d.url)
	} else if d.archiveFormat != nil && d.archiveFormat.IsMultiEntry() {
		return newError(ErrUnsupportedFileName, fmt.Errorf("filename %q supplied alongside multi-entry archive format", filename))
	}

	if d.archiveFormat != nil {
		if ext, ok := d.archiveFormat.CodecExtension(); ok {
			filename = stripCodecExtension(filename, ext)
		}
	}

	dir := d.dir
	if dir == "" {
		dir = startupDir
	}
	d.dir = dir
	d.filename = filename

	full := path.Join(dir, filename)
	f, err := os.OpenFile(full, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return newError(ErrFileError, err)
	}
	d.file = f
	return nil
}

// deriveFilename returns the last non-empty path segment of rawURL, or
// "download" if the path has none (per §8 invariant 2).
func deriveFilename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "download"
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	last := segments[len(segments)-1]
	if last == "" {
		return "download"
	}
	return last
}

// stripCodecExtension removes "."+ext from the end of filename, but only
// when filename actually ends with that suffix — guarding against the
// underflow §9 flags for a filename literally equal to "."+ext.
func stripCodecExtension(filename, ext string) string {
	suffix := "." + ext
	if len(filename) > len(suffix) && strings.HasSuffix(filename, suffix) {
		return strings.TrimSuffix(filename, suffix)
	}
	return filename
}

// preflight issues a GET against d.url, consumes only headers and the final
// (redirect-canonicalised) URL, and records content length.
func (d *Download) preflight(ctx context.Context, client *http.Client, log *zap.Logger) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return newError(ErrURLParse, err)
	}
	for k, vs := range d.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return newError(ErrRequestError, err)
	}
	resp.Body.Close()

	if resp.ContentLength < 0 {
		return newError(ErrContentLength, fmt.Errorf("no content length advertised for %s", d.url))
	}

	d.contentLength = resp.ContentLength
	if resp.Request != nil && resp.Request.URL != nil {
		d.url = resp.Request.URL.String()
	}
	log.Debug("preflight complete", zap.String("url", d.url), zap.Int64("length", d.contentLength))
	return nil
}

// host returns the canonical URL's host component, or "" if unparsable.
func (d *Download) host() string {
	u, err := url.Parse(d.url)
	if err != nil {
		return ""
	}
	return u.Host
}

// chooseThreads applies §4.7 step 4's heuristic when no explicit thread
// count was requested.
func (d *Download) chooseThreads(singletonHosts map[string]bool) {
	if d.preferredThreads > 0 {
		return
	}
	if singletonHosts[d.host()] {
		d.preferredThreads = 1
		return
	}
	switch {
	case d.contentLength >= 2<<30:
		d.preferredThreads = 5
	case d.contentLength >= 1<<30:
		d.preferredThreads = 4
	case d.contentLength >= 250<<20:
		d.preferredThreads = 3
	case d.contentLength >= 100<<20:
		d.preferredThreads = 2
	default:
		d.preferredThreads = 1
	}
}

// classifyDownloadError distinguishes a body-streaming failure (§7:
// ReqwestError — "error while streaming a response body") from a
// transport-level failure (§7: RequestError — "transport-level failure
// after retries exhausted"), per chunkset's own TransportError/StreamError
// split.
func classifyDownloadError(err error) ErrorKind {
	var streamErr *chunkset.StreamError
	if errors.As(err, &streamErr) {
		return ErrReqwestError
	}
	return ErrRequestError
}

// spawn runs this Download's full per-resource pipeline: chunk, transfer,
// verify, and save or save-as-archive.
func (d *Download) spawn(ctx context.Context, client *http.Client, fileProgress progress.Sink, log *zap.Logger) error {
	d.chunks = chunkset.New(d.preferredThreads, d.contentLength)

	if err := d.chunks.Download(ctx, client, d.url, d.headers, sinkAdapter{fileProgress}, log); err != nil {
		return newError(classifyDownloadError(err), err)
	}

	if d.checksum != "" {
		if err := d.chunks.Verify(d.checksum); err != nil {
			// A plain save still writes the unverified bytes to disk before
			// the mismatch is reported; archive formats are not unpacked.
			if d.archiveFormat == nil {
				if saveErr := d.chunks.Save(d.file); saveErr != nil {
					return newError(ErrFileError, saveErr)
				}
			}
			return newError(ErrInvalidChecksum, err)
		}
	}

	if d.archiveFormat != nil {
		extractDir := d.dir
		if err := d.chunks.SaveArchive(*d.archiveFormat, d.file, extractDir); err != nil {
			return newError(ErrArchiveError, err)
		}
		return nil
	}

	if err := d.chunks.Save(d.file); err != nil {
		return newError(ErrFileError, err)
	}
	return nil
}

// sinkAdapter bridges a possibly-nil progress.Sink to chunkset.ProgressSink,
// since a nil *progress.FileBar is itself a valid no-op Sink but an
// interface value wrapping a nil pointer is not == nil.
type sinkAdapter struct {
	sink progress.Sink
}

func (s sinkAdapter) Inc(delta int64) {
	if s.sink == nil {
		return
	}
	s.sink.Inc(delta)
}

func (s sinkAdapter) Finish() {
	if s.sink == nil {
		return
	}
	s.sink.Finish()
}
