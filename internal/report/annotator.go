// Package report post-processes the HTML reports produced by the regression
// container: it stamps each test report with a banner naming the compared
// branches and writes an index page for batch runs.
package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/pixel/internal/clock"
	"github.com/mrz1836/pixel/internal/constants"
	"github.com/mrz1836/pixel/internal/domain"
	pixelerrors "github.com/mrz1836/pixel/internal/errors"
	"github.com/mrz1836/pixel/internal/runcontext"
)

const filePerm = 0o644

// Request describes one report to annotate.
type Request struct {
	RunType        domain.RunType
	Group          string
	ReportPath     string
	RunID          string
	NonInteractive bool
}

// Annotator injects the run banner into reports.
type Annotator struct {
	store      runcontext.Store
	opener     Opener
	clock      clock.Clock
	marker     string
	staleAfter time.Duration
	dir        string
}

// Config holds the Annotator settings.
type Config struct {
	// Marker is the element the banner is inserted after.
	Marker string
	// StaleAfter is the report age at which the banner is flagged.
	StaleAfter time.Duration
	// Dir is the absolute directory holding the batch index page.
	Dir string
}

// NewAnnotator creates an Annotator. A nil clock uses the system clock.
func NewAnnotator(store runcontext.Store, opener Opener, c clock.Clock, cfg Config) *Annotator {
	if c == nil {
		c = clock.RealClock{}
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = constants.ReportStaleAfter
	}
	return &Annotator{
		store:      store,
		opener:     opener,
		clock:      c,
		marker:     cfg.Marker,
		staleAfter: cfg.StaleAfter,
		dir:        cfg.Dir,
	}
}

// Annotate stamps the report at req.ReportPath with the group's run context
// and opens it unless the run is non-interactive. Reference runs produce no
// report and are ignored.
//
// Every failure wraps ErrReportAnnotation. Failing to open the report is only
// logged.
func (a *Annotator) Annotate(ctx context.Context, req Request) error {
	if req.RunType != domain.RunTypeTest {
		return nil
	}
	logger := zerolog.Ctx(ctx).With().Str("component", "report").Str("group", req.Group).Logger()

	entry, _, err := a.store.Get(ctx, req.Group)
	if err != nil {
		return fmt.Errorf("failed to read run context: %w: %w", pixelerrors.ErrReportAnnotation, err)
	}

	html, err := os.ReadFile(req.ReportPath) //#nosec G304 -- report path comes from the group registry
	if err != nil {
		return fmt.Errorf("failed to read report: %w: %w", pixelerrors.ErrReportAnnotation, err)
	}

	now := a.clock.Now().UTC()
	var banner bytes.Buffer
	if err := bannerTemplate.Execute(&banner, bannerData{
		Group:       req.Group,
		Reference:   entry.Reference,
		Description: entry.Description,
		Test:        entry.Test,
		Generated:   now.Format(time.RFC1123),
		RunID:       req.RunID,
		Millis:      now.UnixMilli(),
		StaleMillis: a.staleAfter.Milliseconds(),
	}); err != nil {
		return fmt.Errorf("failed to render banner: %w: %w", pixelerrors.ErrReportAnnotation, err)
	}

	annotated, err := InsertBanner(string(html), a.marker, bannerStart+banner.String()+bannerEnd)
	if err != nil {
		return fmt.Errorf("%s: %w", req.ReportPath, err)
	}

	if err := atomicWrite(req.ReportPath, []byte(annotated), filePerm); err != nil {
		return fmt.Errorf("failed to write report: %w: %w", pixelerrors.ErrReportAnnotation, err)
	}
	logger.Info().Str("path", req.ReportPath).Msg("report annotated")

	if !req.NonInteractive {
		a.open(ctx, req.ReportPath)
	}
	return nil
}

// InsertBanner places banner right after marker in html, replacing a banner
// inserted by an earlier run.
func InsertBanner(html, marker, banner string) (string, error) {
	html = RemoveBanner(html)

	i := strings.Index(html, marker)
	if i < 0 {
		return "", fmt.Errorf("marker %q not found: %w", marker, pixelerrors.ErrReportAnnotation)
	}
	at := i + len(marker)
	return html[:at] + banner + html[at:], nil
}

// RemoveBanner strips a previously inserted banner block.
func RemoveBanner(html string) string {
	start := strings.Index(html, bannerStart)
	if start < 0 {
		return html
	}
	end := strings.Index(html[start:], bannerEnd)
	if end < 0 {
		return html
	}
	return html[:start] + html[start+end+len(bannerEnd):]
}

// Index entry statuses.
const (
	StatusOK     = "ok"
	StatusDiffs  = "diffs"
	StatusFailed = "failed"
)

// IndexEntry is one group line on the batch index page.
type IndexEntry struct {
	Group      string
	Name       string
	Status     string
	Error      string
	ReportPath string
}

// WriteIndex writes the batch index page into the report directory and opens
// it unless nonInteractive. It returns the path written.
func (a *Annotator) WriteIndex(ctx context.Context, entries []IndexEntry, nonInteractive bool) (string, error) {
	data := indexData{Generated: a.clock.Now().UTC().Format(time.RFC1123)}
	for _, e := range entries {
		row := indexRow{Group: e.Group, Name: e.Name, Status: e.Status, Error: e.Error}
		if row.Name == "" {
			row.Name = e.Group
		}
		if row.Status == "" {
			row.Status = StatusOK
		}
		if e.ReportPath != "" && fileExists(e.ReportPath) {
			if rel, err := filepath.Rel(a.dir, e.ReportPath); err == nil {
				row.Link = filepath.ToSlash(rel)
			}
		}
		data.Entries = append(data.Entries, row)
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render index: %w", err)
	}

	if err := os.MkdirAll(a.dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(a.dir, constants.ReportIndexFileName)
	if err := atomicWrite(path, buf.Bytes(), filePerm); err != nil {
		return "", fmt.Errorf("failed to write index: %w", err)
	}
	zerolog.Ctx(ctx).Info().Str("component", "report").Str("path", path).Msg("batch index written")

	if !nonInteractive {
		a.open(ctx, path)
	}
	return path, nil
}

func (a *Annotator) open(ctx context.Context, path string) {
	if a.opener == nil {
		return
	}
	if err := a.opener.Open(ctx, path); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("could not open report")
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// atomicWrite writes data to a file atomically using write-then-rename,
// so the report server never serves a half-written page.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
