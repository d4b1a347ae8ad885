package classifier

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/use-agent/sitescan/models"
	"gopkg.in/yaml.v3"
)

// TaxonomyFile is the on-disk form of a taxonomy override.
//
//	replace: false
//	categories:
//	  - name: pet_services
//	    display: Pet Services
//	    primary: [groomer, grooming, kennel, vet]
//	    secondary: [dog, cat, puppy]
//	    indicators: [book a groom]
//	    tags:
//	      - name: grooming
//	        keywords: [groom]
type TaxonomyFile struct {
	// Replace discards the built-in taxonomy instead of extending it.
	Replace    bool       `yaml:"replace"`
	Categories []Category `yaml:"categories"`
}

// LoadTaxonomy decodes and validates a taxonomy override.
func LoadTaxonomy(r io.Reader) (*TaxonomyFile, error) {
	var tf TaxonomyFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&tf); err != nil && !errors.Is(err, io.EOF) {
		return nil, models.NewScanError(models.ErrCodeTaxonomyInvalid, "decode taxonomy", err)
	}
	if err := Validate(tf.Categories); err != nil {
		return nil, err
	}
	return &tf, nil
}

// LoadTaxonomyFile reads the override at path and applies it to the
// built-in taxonomy.
func LoadTaxonomyFile(path string) ([]Category, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open taxonomy: %w", err)
	}
	defer f.Close()

	tf, err := LoadTaxonomy(f)
	if err != nil {
		return nil, err
	}
	return tf.Apply(DefaultTaxonomy()), nil
}

// Apply merges the override into base. Entries with a known name replace
// the base entry in place; new names are appended in file order.
func (tf *TaxonomyFile) Apply(base []Category) []Category {
	if tf.Replace {
		out := make([]Category, len(tf.Categories))
		for i, c := range tf.Categories {
			out[i] = c.clone()
		}
		return out
	}

	out := make([]Category, len(base))
	index := make(map[string]int, len(base))
	for i, c := range base {
		out[i] = c.clone()
		index[c.Name] = i
	}
	for _, c := range tf.Categories {
		if i, ok := index[c.Name]; ok {
			out[i] = c.clone()
			continue
		}
		index[c.Name] = len(out)
		out = append(out, c.clone())
	}
	return out
}

// Validate checks that every category is usable: a non-empty unique name
// other than the fallback type, at least one primary keyword, named tags.
func Validate(categories []Category) error {
	seen := make(map[string]bool, len(categories))
	for i, c := range categories {
		name := strings.TrimSpace(c.Name)
		switch {
		case name == "":
			return invalid("category %d has no name", i)
		case name == models.GeneralType:
			return invalid("category name %q is reserved", name)
		case seen[name]:
			return invalid("duplicate category %q", name)
		case len(nonEmpty(c.Primary)) == 0:
			return invalid("category %q has no primary keywords", name)
		}
		for j, t := range c.Tags {
			if strings.TrimSpace(t.Name) == "" {
				return invalid("category %q: tag %d has no name", name, j)
			}
		}
		seen[name] = true
	}
	return nil
}

func invalid(format string, args ...any) error {
	return models.NewScanError(models.ErrCodeTaxonomyInvalid, fmt.Sprintf(format, args...), nil)
}

func nonEmpty(words []string) []string {
	var out []string
	for _, w := range words {
		if strings.TrimSpace(w) != "" {
			out = append(out, w)
		}
	}
	return out
}
