package overlay

import (
	"regexp"
	"sync"
)

// FamilyOther is the family of brands no pattern matches.
const FamilyOther = "other"

type familyPattern struct {
	family   string
	patterns []*regexp.Regexp
}

// familyTable is checked in order; the first match wins.
var familyTable = []familyPattern{
	{"azure", []*regexp.Regexp{regexp.MustCompile(`(?i)azure`), regexp.MustCompile(`(?i)^AP$`), regexp.MustCompile(`(?i)^WA$`)}},
	{"office", []*regexp.Regexp{regexp.MustCompile(`(?i)office`), regexp.MustCompile(`(?i)o365`)}},
	{"dynamics", []*regexp.Regexp{regexp.MustCompile(`(?i)dynamics`)}},
	{"onedrive", []*regexp.Regexp{regexp.MustCompile(`(?i)onedrive`)}},
	{"sharepoint", []*regexp.Regexp{regexp.MustCompile(`(?i)sharepoint`)}},
	{"xbox", []*regexp.Regexp{regexp.MustCompile(`(?i)xbox`)}},
	{"exchange", []*regexp.Regexp{regexp.MustCompile(`(?i)exchange`)}},
	{"cosmos", []*regexp.Regexp{regexp.MustCompile(`(?i)cosmos`)}},
}

// FamilyClassifier maps brand names to property group families and
// remembers every answer. It is safe for concurrent use.
type FamilyClassifier struct {
	mu    sync.RWMutex
	cache map[string]string
}

// NewFamilyClassifier creates an empty classifier.
func NewFamilyClassifier() *FamilyClassifier {
	return &FamilyClassifier{cache: make(map[string]string)}
}

// Family returns the family of brand, or FamilyOther.
func (c *FamilyClassifier) Family(brand string) string {
	c.mu.RLock()
	family, ok := c.cache[brand]
	c.mu.RUnlock()
	if ok {
		return family
	}

	family = classify(brand)
	c.mu.Lock()
	c.cache[brand] = family
	c.mu.Unlock()
	return family
}

// CSSClass returns the style class for brand, e.g. "property-group-azure".
func (c *FamilyClassifier) CSSClass(brand string) string {
	return "property-group-" + c.Family(brand)
}

// Len returns the number of memoized brands.
func (c *FamilyClassifier) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func classify(brand string) string {
	for _, fp := range familyTable {
		for _, re := range fp.patterns {
			if re.MatchString(brand) {
				return fp.family
			}
		}
	}
	return FamilyOther
}
