// Package lake manages the date-partitioned flat-file layout shared by the
// pipeline stages: lake/ for raw and intermediate artifacts, warehouse/ for
// extracted records, marts/ for qualified leads.
package lake

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// Store resolves and reads/writes stage artifacts under a data root.
type Store struct {
	root string
}

// New creates a Store rooted at dir.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the data root directory.
func (s *Store) Root() string { return s.root }

// RSSDir is the raw feed partition for a date.
func (s *Store) RSSDir(date string) string {
	return filepath.Join(s.root, "lake", "rss", date)
}

// SignalFeedPath holds one signal's raw feed document.
func (s *Store) SignalFeedPath(date, signal string) string {
	return filepath.Join(s.RSSDir(date), signal+".xml")
}

// ItemsPath is the consolidated, deduplicated item document.
func (s *Store) ItemsPath(date string) string {
	return filepath.Join(s.RSSDir(date), "items.xml")
}

// RawArticlesPath is the normalized feed-item record set.
func (s *Store) RawArticlesPath(date string) string {
	return filepath.Join(s.RSSDir(date), "articles_raw.csv")
}

// HTMLDir holds the raw fetched page content for a date.
func (s *Store) HTMLDir(date string) string {
	return filepath.Join(s.root, "lake", "html", date)
}

// HTMLFileName names a stored page by its input index (1-based).
func HTMLFileName(index int) string {
	return fmt.Sprintf("article_%04d.html", index)
}

// MappingPath correlates fetched items to their stored content.
func (s *Store) MappingPath(date string) string {
	return filepath.Join(s.HTMLDir(date), "mapping.csv")
}

// FilteredMappingPath is the relevance-filtered mapping.
func (s *Store) FilteredMappingPath(date string) string {
	return filepath.Join(s.HTMLDir(date), "mapping_filtered.csv")
}

// WarehousePath is the extracted-text record set for a date.
func (s *Store) WarehousePath(date string) string {
	return filepath.Join(s.root, "warehouse", fmt.Sprintf("articles_%s.csv", date))
}

// ExtractionsDir holds per-article structured-extraction artifacts.
func (s *Store) ExtractionsDir(date string) string {
	return filepath.Join(s.root, "warehouse", "extractions", date)
}

// ExtractionPath names one article's extraction artifact by input index.
func (s *Store) ExtractionPath(date string, index int) string {
	return filepath.Join(s.ExtractionsDir(date), fmt.Sprintf("article_%04d.json", index))
}

// FailuresPath is the side channel for unparsable service responses.
func (s *Store) FailuresPath(date string) string {
	return filepath.Join(s.ExtractionsDir(date), "failures.log")
}

// OrganizationsPath is the aggregated-organizations artifact.
func (s *Store) OrganizationsPath(date string) string {
	return filepath.Join(s.root, "warehouse", fmt.Sprintf("organizations_%s.json", date))
}

// SummariesPath is the per-article summaries artifact.
func (s *Store) SummariesPath(date string) string {
	return filepath.Join(s.root, "warehouse", fmt.Sprintf("summaries_%s.json", date))
}

// LeadsPath is the qualified-leads artifact.
func (s *Store) LeadsPath(date string) string {
	return filepath.Join(s.root, "marts", date, "leads.json")
}

// RequireInput verifies a stage input exists, directing the operator to the
// producing command when it does not.
func (s *Store) RequireInput(path, producedBy string) error {
	if _, err := os.Stat(path); err != nil {
		return eris.Errorf("lake: input %s not found: run `leadgen %s` first", path, producedBy)
	}
	return nil
}

// Exists reports whether an artifact is present.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteFile writes raw bytes, creating parent directories.
func (s *Store) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "lake: mkdir")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "lake: write file")
	}
	return nil
}

// ReadFile reads raw bytes.
func (s *Store) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "lake: read file")
	}
	return data, nil
}

// Remove deletes an artifact if present.
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return eris.Wrap(err, "lake: remove")
	}
	return nil
}

// AppendLine appends a line to a log-style artifact.
func (s *Store) AppendLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "lake: mkdir")
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrap(err, "lake: open append")
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return eris.Wrap(err, "lake: append")
	}
	return nil
}

// WriteCSV marshals a slice of records to a CSV artifact.
func (s *Store) WriteCSV(path string, records any) error {
	data, err := csvutil.Marshal(records)
	if err != nil {
		return eris.Wrap(err, "lake: marshal csv")
	}
	return s.WriteFile(path, data)
}

// ReadCSV unmarshals a CSV artifact into a slice of records.
func (s *Store) ReadCSV(path string, records any) error {
	data, err := s.ReadFile(path)
	if err != nil {
		return err
	}
	if err := csvutil.Unmarshal(data, records); err != nil {
		return eris.Wrap(err, "lake: unmarshal csv")
	}
	return nil
}

// WriteJSON writes an indented JSON artifact.
func (s *Store) WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "lake: marshal json")
	}
	return s.WriteFile(path, data)
}

// ReadJSON unmarshals a JSON artifact.
func (s *Store) ReadJSON(path string, v any) error {
	data, err := s.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return eris.Wrap(err, "lake: unmarshal json")
	}
	return nil
}

// WriteXML writes an XML artifact with header.
func (s *Store) WriteXML(path string, v any) error {
	data, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "lake: marshal xml")
	}
	return s.WriteFile(path, append([]byte(xml.Header), data...))
}

// ReadXML unmarshals an XML artifact.
func (s *Store) ReadXML(path string, v any) error {
	data, err := s.ReadFile(path)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return eris.Wrap(err, "lake: unmarshal xml")
	}
	return nil
}
