// Package rangedl implements a parallel HTTP multi-range download engine: a
// Downloader schedules a bounded-concurrency set of Downloads, each of which
// splits its resource into byte-range Chunks, fetches them in parallel,
// reassembles them in offset order, and optionally verifies a checksum or
// runs the result through a decompress/extract pipeline.
package rangedl

import (
	"context"
	"net/http"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/guiyumin/rangedl/internal/httpclient"
	"github.com/guiyumin/rangedl/internal/progress"
)

// singletonHosts forces a single thread regardless of resource size — hosts
// known to behave poorly under concurrent ranged GETs (§6).
var singletonHosts = map[string]bool{
	"cdimage.ubuntu.com": true,
	"dl.sourceforge.net": true,
}

// Downloader is configuration plus a list of Downloads; it is single-use —
// StartDownloads consumes it once.
type Downloader struct {
	simultaneous int
	retries      int
	downloads    []*Download
	progressCfg  *progress.Config
	logger       *zap.Logger
	startupDir   string
}

// DownloaderOption configures a Downloader at construction time.
type DownloaderOption func(*Downloader)

// WithSimultaneous overrides the default cap of 3 concurrently-active
// downloads.
func WithSimultaneous(n int) DownloaderOption {
	return func(d *Downloader) { d.simultaneous = n }
}

// WithRetries overrides the default of 3 exponential-backoff retries applied
// by the HTTP client's retry middleware.
func WithRetries(n int) DownloaderOption {
	return func(d *Downloader) { d.retries = n }
}

// WithLogger attaches a structured logger; the Downloader is silent
// (zap.NewNop()) if none is supplied.
func WithLogger(log *zap.Logger) DownloaderOption {
	return func(d *Downloader) { d.logger = log }
}

// WithProgress attaches a progress configuration; bars are only created for
// styles actually set, per progress.Config.Enabled().
func WithProgress(cfg *progress.Config) DownloaderOption {
	return func(d *Downloader) { d.progressCfg = cfg }
}

// NewDownloader builds a Downloader with default simultaneous=3, retries=3,
// a no-op logger, and no progress configuration, then applies opts. The
// process's current working directory is captured once here as the default
// destination/extraction directory for every Download that doesn't override
// it.
func NewDownloader(opts ...DownloaderOption) *Downloader {
	startupDir, err := os.Getwd()
	if err != nil {
		startupDir = "."
	}
	d := &Downloader{
		simultaneous: 3,
		retries:      3,
		logger:       zap.NewNop(),
		startupDir:   startupDir,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Add registers Downloads to be run by the next StartDownloads call.
func (d *Downloader) Add(downloads ...*Download) {
	d.downloads = append(d.downloads, downloads...)
}

// StartDownloads runs the full lifecycle from §4.7: client build, parallel
// output resolution, parallel preflight, thread-count decisions, progress
// initialisation, bounded-concurrency dispatch, and finalisation. The first
// failure aborts the aggregated result; outstanding transfers may still
// complete but their outcomes are dropped.
func (d *Downloader) StartDownloads(ctx context.Context) error {
	client := httpclient.New(d.retries, d.logger)

	if err := d.fillOutputs(); err != nil {
		return err
	}
	if err := d.preflightAll(ctx, client); err != nil {
		return err
	}

	for _, dl := range d.downloads {
		dl.chooseThreads(singletonHosts)
	}

	multi := progress.New(d.progressCfg, len(d.downloads))
	defer multi.Finish()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.simultaneous)
	for _, dl := range d.downloads {
		dl := dl
		var bar *progress.FileBar
		if multi != nil {
			bar = multi.NewFileBar(d.progressCfg, dl.filename, dl.contentLength)
		}
		g.Go(func() error {
			if err := dl.spawn(gctx, client, bar, d.logger); err != nil {
				return err
			}
			multi.IncGlobal()
			return nil
		})
	}
	return g.Wait()
}

// fillOutputs resolves every Download's destination file in parallel; the
// first failure aborts the aggregate (no ranged GET is issued for a Download
// whose output couldn't be created).
func (d *Downloader) fillOutputs() error {
	var g errgroup.Group
	for _, dl := range d.downloads {
		dl := dl
		g.Go(func() error { return dl.fillOutput(d.startupDir) })
	}
	return g.Wait()
}

// preflightAll issues every Download's preflight request in parallel.
func (d *Downloader) preflightAll(ctx context.Context, client *http.Client) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, dl := range d.downloads {
		dl := dl
		g.Go(func() error { return dl.preflight(gctx, client, d.logger) })
	}
	return g.Wait()
}
