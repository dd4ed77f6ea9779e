// Package catalog maps intent names to candidate reply templates.
//
// Templates are loaded from the same CSV that drives NLU training
// (training_and_responses.csv), so phrasing stays in one place. A default
// copy is embedded for deployments that do not mount the file.
package catalog

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"sync"
)

//go:embed training_and_responses.csv
var defaultCSV string

// OutOfScopeFallback is used when the catalog has no templates for the
// out_of_scope intent.
const OutOfScopeFallback = "I can only assist with banking questions."

// NoTemplateFallback is used when the catalog has no templates for a
// recognized intent.
const NoTemplateFallback = "I don't have a specific response for that yet."

// Catalog returns candidate reply templates for an intent.
type Catalog interface {
	// Templates returns the ordered template list for intent, or nil when
	// the intent is unknown.
	Templates(intent string) []string
}

// Picker selects one template for an intent, falling back to literal strings
// when the catalog has no entry. The randomness source is injected so tests
// can seed it.
type Picker struct {
	catalog Catalog

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPicker creates a Picker over the given catalog and randomness source.
func NewPicker(c Catalog, rng *rand.Rand) *Picker {
	return &Picker{catalog: c, rng: rng}
}

// Pick returns one reply template for intent, chosen uniformly at random
// when multiple candidates exist.
func (p *Picker) Pick(intent string) string {
	templates := p.catalog.Templates(intent)
	if len(templates) == 0 {
		if intent == "out_of_scope" {
			return OutOfScopeFallback
		}
		return NoTemplateFallback
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return templates[p.rng.Intn(len(templates))]
}

// CSVCatalog holds intent→templates parsed from the responses CSV.
type CSVCatalog struct {
	responses map[string][]string
}

// Templates implements Catalog.
func (c *CSVCatalog) Templates(intent string) []string {
	return c.responses[intent]
}

// Intents returns the set of intents the catalog knows about.
func (c *CSVCatalog) Intents() []string {
	intents := make([]string, 0, len(c.responses))
	for intent := range c.responses {
		intents = append(intents, intent)
	}
	return intents
}

// LoadFile parses the responses CSV at path. When the file does not exist,
// the embedded default catalog is used instead.
func LoadFile(path string) (*CSVCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("Responses CSV not found, using embedded catalog", "path", path)
			return Parse(strings.NewReader(defaultCSV))
		}
		return nil, fmt.Errorf("open responses csv: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close responses csv", "error", closeErr)
		}
	}()

	return Parse(f)
}

// Parse reads the responses CSV. Columns: utterance, intent, response,
// entity annotations. The first row is a header. Rows with an empty
// response column contribute training data only and are skipped here.
func Parse(r io.Reader) (*CSVCatalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse responses csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("responses csv is empty")
	}

	responses := make(map[string][]string)
	for _, row := range rows[1:] { // skip header
		if len(row) < 4 {
			continue
		}
		intent := strings.TrimSpace(row[1])
		response := row[2]
		if intent == "" || response == "" {
			continue
		}
		responses[intent] = append(responses[intent], response)
	}

	return &CSVCatalog{responses: responses}, nil
}
