// Package progress wires the engine's push-only progress observers onto
// vbauerster/mpb multi-bars: one optional global bar tracking completed
// downloads, and one optional per-file bar per Download tracking bytes.
package progress

import (
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Config mirrors the original's feature-gated Progress: styles are either
// present or absent, and their presence drives whether the corresponding bar
// is created at all.
type Config struct {
	// Global, when non-nil, enables the outer multi-download bar.
	Global *BarStyle
	// PerFile, when non-nil, enables a per-Download byte-count bar.
	PerFile *BarStyle
}

// BarStyle is a minimal style knob; callers needing mpb's full decorator set
// can still reach mpb directly, but defaults suffice for typical use.
type BarStyle struct{}

// Enabled reports whether any bar is configured — matching the source's
// `Progress::is_enabled`.
func (c *Config) Enabled() bool {
	return c != nil && (c.Global != nil || c.PerFile != nil)
}

// Sink is a push-only counter: inc(delta), finish(). Satisfies
// chunkset.ProgressSink.
type Sink interface {
	Inc(delta int64)
	Finish()
}

// Multi owns the mpb container and the optional global bar.
type Multi struct {
	progress *mpb.Progress
	global   *mpb.Bar
}

// New creates the multi-bar container and, when cfg enables it and there are
// at least two downloads, the global bar tracking completed downloads.
func New(cfg *Config, downloadCount int) *Multi {
	if !cfg.Enabled() {
		return nil
	}
	m := &Multi{progress: mpb.New(mpb.WithWidth(40))}
	if cfg.Global != nil && downloadCount >= 2 {
		m.global = m.progress.AddBar(int64(downloadCount),
			mpb.PrependDecorators(decor.Name("total")),
			mpb.AppendDecorators(decor.CountersNoUnit("%d / %d")),
		)
	}
	return m
}

// NewFileBar creates a per-file bar tracking byte progress against length,
// iff cfg enables a per-file style. Returns nil otherwise (a nil *FileBar is
// a safe no-op Sink via the methods below).
func (m *Multi) NewFileBar(cfg *Config, name string, length int64) *FileBar {
	if m == nil || cfg == nil || cfg.PerFile == nil {
		return nil
	}
	bar := m.progress.AddBar(length,
		mpb.PrependDecorators(decor.Name(name)),
		mpb.AppendDecorators(decor.CountersKibiByte("% .2f / % .2f"), decor.AverageETA(decor.ET_STYLE_GO)),
	)
	return &FileBar{bar: bar}
}

// IncGlobal advances the global bar by one completed download, a no-op if no
// global bar was created.
func (m *Multi) IncGlobal() {
	if m == nil || m.global == nil {
		return
	}
	m.global.Increment()
}

// Finish marks the global bar complete and waits for the container to drain.
func (m *Multi) Finish() {
	if m == nil {
		return
	}
	if m.global != nil {
		m.global.SetTotal(m.global.Current(), true)
	}
	m.progress.Wait()
}

// FileBar is the per-Download byte-count sink.
type FileBar struct {
	bar *mpb.Bar
}

func (f *FileBar) Inc(delta int64) {
	if f == nil {
		return
	}
	f.bar.IncrBy(int(delta))
}

func (f *FileBar) Finish() {
	if f == nil {
		return
	}
	f.bar.SetTotal(f.bar.Current(), true)
}
