// Package catalog holds the classifier's label catalog: the ordered output
// labels, their display translations, species codes and the optional species
// inclusion list. A Catalog is read-only once loaded and safe for concurrent
// readers.
package catalog

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is the static label data shared by aggregation and reporting.
type Catalog struct {
	labels     []string
	translated []string
	index      map[string]int
	codes      map[string]string
	species    map[string]struct{}
}

// Files names the catalog sources. Only LabelsFile is required.
type Files struct {
	LabelsFile      string
	TranslatedFile  string
	CodesFile       string
	SpeciesListFile string
}

// Load reads the catalog from disk.
func Load(f Files) (*Catalog, error) {
	labels, err := readLines(f.LabelsFile)
	if err != nil {
		return nil, fmt.Errorf("catalog: labels: %w", err)
	}

	var translated []string
	if f.TranslatedFile != "" {
		if translated, err = readLines(f.TranslatedFile); err != nil {
			return nil, fmt.Errorf("catalog: translated labels: %w", err)
		}
	}

	var codes map[string]string
	if f.CodesFile != "" {
		data, err := os.ReadFile(f.CodesFile)
		if err != nil {
			return nil, fmt.Errorf("catalog: codes: %w", err)
		}
		// JSON is valid YAML, so eBird code tables load either way.
		if err := yaml.Unmarshal(data, &codes); err != nil {
			return nil, fmt.Errorf("catalog: codes %s: %w", f.CodesFile, err)
		}
	}

	var species []string
	if f.SpeciesListFile != "" {
		if species, err = readLines(f.SpeciesListFile); err != nil {
			return nil, fmt.Errorf("catalog: species list: %w", err)
		}
	}

	return New(labels, translated, codes, species)
}

// New builds a catalog from in-memory data. translated may be nil, in which
// case labels are displayed as-is; otherwise it must align with labels.
func New(labels, translated []string, codes map[string]string, species []string) (*Catalog, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("catalog: empty label list")
	}
	if translated == nil {
		translated = labels
	}
	if len(translated) != len(labels) {
		return nil, fmt.Errorf("catalog: %d translated labels for %d labels", len(translated), len(labels))
	}

	c := &Catalog{
		labels:     append([]string(nil), labels...),
		translated: append([]string(nil), translated...),
		index:      make(map[string]int, len(labels)),
		codes:      make(map[string]string, len(codes)),
	}
	for i, l := range labels {
		if _, dup := c.index[l]; !dup {
			c.index[l] = i
		}
	}
	for k, v := range codes {
		c.codes[k] = v
	}
	if len(species) > 0 {
		c.species = make(map[string]struct{}, len(species))
		for _, s := range species {
			c.species[s] = struct{}{}
		}
	}
	return c, nil
}

// Labels returns the model output labels in score order.
func (c *Catalog) Labels() []string { return c.labels }

// Len is the number of labels, i.e. the expected score vector length.
func (c *Catalog) Len() int { return len(c.labels) }

// Translated returns the display label for label ("Sci_Common" form).
// Unknown labels are returned unchanged.
func (c *Catalog) Translated(label string) string {
	if i, ok := c.index[label]; ok {
		return c.translated[i]
	}
	return label
}

// CommonName is the part of the translated label after the first '_'.
func (c *Catalog) CommonName(label string) string {
	t := c.Translated(label)
	if _, common, ok := strings.Cut(t, "_"); ok {
		return common
	}
	return t
}

// Names splits the translated label into scientific and common name.
func (c *Catalog) Names(label string) (scientific, common string) {
	t := c.Translated(label)
	scientific, common, ok := strings.Cut(t, "_")
	if !ok {
		return t, t
	}
	return scientific, common
}

// Code returns the species code for label, falling back to the label itself.
func (c *Catalog) Code(label string) string {
	if code, ok := c.codes[label]; ok {
		return code
	}
	return label
}

// Included reports whether label passes the species list filter. An empty
// list includes everything.
func (c *Catalog) Included(label string) bool {
	if len(c.species) == 0 {
		return true
	}
	_, ok := c.species[label]
	return ok
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}
