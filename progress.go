package rangedl

import "github.com/guiyumin/rangedl/internal/progress"

// Progress configures the optional multi-bar progress rendering: a style is
// either set or absent, and its presence drives whether the corresponding
// bar gets created at all (Progress.Enabled()).
type Progress = progress.Config

// BarStyle is a minimal style knob distinguishing "this bar should exist"
// from "this bar should not exist"; it carries no fields of its own today.
type BarStyle = progress.BarStyle

// NewProgress builds a Progress config. Pass global=true to enable the
// outer multi-download bar (created only when there are ≥2 downloads) and
// perFile=true to enable a per-Download byte-count bar.
func NewProgress(global, perFile bool) *Progress {
	cfg := &Progress{}
	if global {
		cfg.Global = &BarStyle{}
	}
	if perFile {
		cfg.PerFile = &BarStyle{}
	}
	return cfg
}
