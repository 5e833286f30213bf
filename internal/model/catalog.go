package model

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Option is one selectable value: a slug sent over the wire and the label
// shown to people.
type Option struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

// Catalog lists the industries and time periods the service accepts, in
// display order.
type Catalog struct {
	Industries  []Option `json:"industries"`
	TimePeriods []Option `json:"time_periods"`
}

// DefaultCatalog returns the built-in industries and time periods.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Industries: []Option{
			{Slug: "software-development", Label: "Software Development"},
			{Slug: "marketing", Label: "Marketing"},
			{Slug: "healthcare", Label: "Healthcare"},
			{Slug: "legal", Label: "Legal"},
		},
		TimePeriods: []Option{
			{Slug: "6-months", Label: "6 months"},
			{Slug: "1-year", Label: "1 year"},
			{Slug: "2-3-years", Label: "2-3 years"},
			{Slug: "5-years", Label: "5+ years"},
			{Slug: "10-years", Label: "10+ years"},
		},
	}
}

func (c *Catalog) ValidIndustry(slug string) bool {
	_, ok := find(c.Industries, slug)
	return ok
}

func (c *Catalog) ValidTimePeriod(slug string) bool {
	_, ok := find(c.TimePeriods, slug)
	return ok
}

// IndustryLabel returns the display label for slug, or slug itself if it
// is not in the catalog.
func (c *Catalog) IndustryLabel(slug string) string {
	if o, ok := find(c.Industries, slug); ok {
		return o.Label
	}
	return slug
}

// TimePeriodLabel returns the display label for slug, or slug itself if it
// is not in the catalog.
func (c *Catalog) TimePeriodLabel(slug string) string {
	if o, ok := find(c.TimePeriods, slug); ok {
		return o.Label
	}
	return slug
}

// IndustrySlugs returns the industry slugs joined for use in error details.
func (c *Catalog) IndustrySlugs() string {
	return joinSlugs(c.Industries)
}

// TimePeriodSlugs returns the time period slugs joined for use in error details.
func (c *Catalog) TimePeriodSlugs() string {
	return joinSlugs(c.TimePeriods)
}

func find(opts []Option, slug string) (Option, bool) {
	for _, o := range opts {
		if o.Slug == slug {
			return o, true
		}
	}
	return Option{}, false
}

func joinSlugs(opts []Option) string {
	slugs := make([]string, len(opts))
	for i, o := range opts {
		slugs[i] = o.Slug
	}
	return strings.Join(slugs, ", ")
}

// LoadCatalogFile reads and validates a catalog file.
// Returns an error if the file cannot be read, parsed, or contains invalid entries.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Validate checks that both option lists are non-empty, well-formed and
// free of duplicate slugs.
func (c *Catalog) Validate() error {
	if err := validateOptions("industry", c.Industries); err != nil {
		return err
	}
	return validateOptions("time period", c.TimePeriods)
}

func validateOptions(kind string, opts []Option) error {
	if len(opts) == 0 {
		return fmt.Errorf("catalog must define at least one %s", kind)
	}

	seen := make(map[string]bool, len(opts))
	for i, o := range opts {
		if o.Slug == "" {
			return fmt.Errorf("%s %d: slug must not be empty", kind, i)
		}
		if o.Label == "" {
			return fmt.Errorf("%s %q: label must not be empty", kind, o.Slug)
		}
		if seen[o.Slug] {
			return fmt.Errorf("duplicate %s slug: %q", kind, o.Slug)
		}
		seen[o.Slug] = true
	}

	return nil
}
