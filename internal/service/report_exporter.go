package service

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ecombi/dashboard/internal/domain"
	"github.com/ecombi/dashboard/pkg/logger"
)

const exportTimestampLayout = "20060102_150405"

// ReportExport is the document written by ReportExporter
type ReportExport struct {
	Snapshot           domain.SnapshotInfo       `json:"snapshot"`
	KPIs               domain.KPIs               `json:"kpis"`
	Reports            map[string]interface{}    `json:"reports"`
	ReviewDistribution []domain.ReviewScoreCount `json:"review_distribution"`
}

// ReportExporter writes snapshots as indented JSON files
type ReportExporter struct {
	dir    string
	logger logger.Logger
	now    func() time.Time
	create func(name string) (io.WriteCloser, error)
}

// NewReportExporter creates an exporter writing into dir
func NewReportExporter(dir string, logger logger.Logger) *ReportExporter {
	return &ReportExporter{dir: dir, logger: logger, now: time.Now, create: createFile}
}

func createFile(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

// TimestampedFilename returns <dir>/<name>_<YYYYMMDD_HHMMSS>.json
func (e *ReportExporter) TimestampedFilename(name string) string {
	return filepath.Join(e.dir, fmt.Sprintf("%s_%s.json", name, e.now().Format(exportTimestampLayout)))
}

// Export writes the snapshot under a timestamped name and returns the path
func (e *ReportExporter) Export(name string, snapshot *domain.Snapshot) (string, error) {
	if snapshot == nil || snapshot.Reports == nil {
		return "", domain.ErrSnapshotNotReady
	}

	filename := e.TimestampedFilename(name)
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return "", fmt.Errorf("failed to create export folder: %w", err)
	}

	file, err := e.create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	doc := ReportExport{
		Snapshot:           snapshot.Info(),
		KPIs:               snapshot.KPIs,
		Reports:            snapshot.Reports.AsMap(),
		ReviewDistribution: snapshot.ReviewDistribution,
	}
	if err := enc.Encode(doc); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("failed to write export JSON: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}

	e.logger.WithField("file", filename).Info("Exported dashboard reports")
	return filename, nil
}
