package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/OCAP2/airfight/pkg/core"
)

// ExportVersion is bumped whenever the export layout changes.
const ExportVersion = 1

// Export is the root JSON structure written on Close.
type Export struct {
	Version   int              `json:"version"`
	StartTime string           `json:"startTime"`
	Campaigns []CampaignExport `json:"campaigns"`
}

// CampaignExport holds the latest save and the full event log of a campaign.
type CampaignExport struct {
	Name   string             `json:"name"`
	Saves  int                `json:"saves"`
	Latest *core.Snapshot     `json:"latest,omitempty"`
	Events []core.CombatEvent `json:"events"`
}

// exportJSON writes all campaigns to a JSON file, gzipped when configured.
// The caller holds the lock.
func (b *Backend) exportJSON() error {
	export, err := b.buildExport()
	if err != nil {
		return err
	}

	name := "airfight"
	if len(b.order) == 1 {
		name = fileSafe(b.order[0])
	}
	filename := fmt.Sprintf("%s_%s.json", name, b.startTime.Format("20060102_150405"))
	if b.cfg.CompressOutput {
		filename += ".gz"
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		err = writeGzipJSON(outputPath, export)
	} else {
		err = writeJSON(outputPath, export)
	}
	if err != nil {
		return err
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() (Export, error) {
	export := Export{
		Version:   ExportVersion,
		StartTime: b.startTime.Format("2006-01-02T15:04:05Z"),
		Campaigns: make([]CampaignExport, 0, len(b.order)),
	}
	for _, name := range b.order {
		r := b.campaigns[name]
		ce := CampaignExport{
			Name:   name,
			Saves:  len(r.Saves),
			Events: r.Events,
		}
		if ce.Events == nil {
			ce.Events = []core.CombatEvent{}
		}
		if n := len(r.Saves); n > 0 {
			ce.Latest = &core.Snapshot{}
			if err := json.Unmarshal(r.Saves[n-1], ce.Latest); err != nil {
				return Export{}, fmt.Errorf("failed to decode save of %s: %w", name, err)
			}
		}
		export.Campaigns = append(export.Campaigns, ce)
	}
	return export, nil
}

// Import loads an export file back into the backend, gzipped or not. The
// latest save of each campaign becomes loadable and its events are appended.
func (b *Backend) Import(path string) error {
	export, err := ReadExport(path)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ce := range export.Campaigns {
		r := b.record(ce.Name)
		if ce.Latest != nil {
			data, err := json.Marshal(ce.Latest)
			if err != nil {
				return fmt.Errorf("failed to encode save of %s: %w", ce.Name, err)
			}
			r.Saves = append(r.Saves, data)
		}
		r.Events = append(r.Events, ce.Events...)
	}
	return nil
}

// ReadExport decodes an export file, gzipped or not.
func ReadExport(path string) (*Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	var export Export
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}
	if export.Version != ExportVersion {
		return nil, fmt.Errorf("unsupported export version %d", export.Version)
	}
	return &export, nil
}

func fileSafe(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, ":", "_")
	return strings.ReplaceAll(name, string(filepath.Separator), "_")
}

func writeJSON(path string, data Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(data)
}

func writeGzipJSON(path string, data Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return gzWriter.Close()
}
