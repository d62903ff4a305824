// Package engine holds the applicability and level-of-effort core.
//
// Everything here is a pure function of its arguments: the catalog is an
// immutable snapshot, answers are plain maps, and every operation returns
// new values. Callers may share a *Catalog between goroutines freely.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"ftareview/internal/model"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

var (
	ErrInvalidRule         = errors.New("invalid rule")
	ErrUnsupportedRuleType = errors.New("unsupported rule type")
	ErrDuplicateID         = errors.New("duplicate id")
)

// CatalogData is the raw reference data a Catalog is built from
type CatalogData struct {
	Questions []model.Question
	Sections  []model.Section
	SubAreas  []model.SubArea
	Rules     []model.Rule
}

// Catalog is an immutable snapshot of questions, sections, sub-areas and rules.
// Slices returned by accessors must be treated as read-only.
type Catalog struct {
	questions      []model.Question
	questionsByKey map[string]int
	sections       []model.Section
	sectionsByID   map[string]int
	subAreas       []model.SubArea
	subAreasByID   map[string]int
	rules          []model.Rule
	fingerprint    string
}

// NewCatalog validates data and builds a snapshot. The input slices are
// copied, so later changes by the caller are not observed.
//
// Rules referencing unknown sub-areas or questions are kept: they simply
// never match.
func NewCatalog(data CatalogData) (*Catalog, error) {
	c := &Catalog{
		questions:      append([]model.Question(nil), data.Questions...),
		questionsByKey: make(map[string]int, len(data.Questions)),
		sections:       append([]model.Section(nil), data.Sections...),
		sectionsByID:   make(map[string]int, len(data.Sections)),
		subAreas:       append([]model.SubArea(nil), data.SubAreas...),
		subAreasByID:   make(map[string]int, len(data.SubAreas)),
		rules:          make([]model.Rule, 0, len(data.Rules)),
	}

	sort.SliceStable(c.questions, func(i, j int) bool {
		if c.questions[i].DisplayOrder != c.questions[j].DisplayOrder {
			return c.questions[i].DisplayOrder < c.questions[j].DisplayOrder
		}
		return c.questions[i].Number < c.questions[j].Number
	})
	for i, q := range c.questions {
		if _, ok := c.questionsByKey[q.Key]; ok {
			return nil, fmt.Errorf("question %q: %w", q.Key, ErrDuplicateID)
		}
		c.questionsByKey[q.Key] = i
	}

	sort.Slice(c.sections, func(i, j int) bool { return c.sections[i].ID < c.sections[j].ID })
	for i, s := range c.sections {
		if _, ok := c.sectionsByID[s.ID]; ok {
			return nil, fmt.Errorf("section %q: %w", s.ID, ErrDuplicateID)
		}
		c.sectionsByID[s.ID] = i
	}

	sort.Slice(c.subAreas, func(i, j int) bool {
		if c.subAreas[i].SectionID != c.subAreas[j].SectionID {
			return c.subAreas[i].SectionID < c.subAreas[j].SectionID
		}
		return c.subAreas[i].ID < c.subAreas[j].ID
	})
	for i, sa := range c.subAreas {
		if _, ok := c.subAreasByID[sa.ID]; ok {
			return nil, fmt.Errorf("sub-area %q: %w", sa.ID, ErrDuplicateID)
		}
		c.subAreasByID[sa.ID] = i
	}

	seen := make(map[string]struct{}, len(data.Rules))
	for i, r := range data.Rules {
		if r.ID == "" {
			r.ID = fmt.Sprintf("%s#%d", r.SubAreaID, i+1)
		}
		if _, ok := seen[r.ID]; ok {
			return nil, fmt.Errorf("rule %q: %w", r.ID, ErrDuplicateID)
		}
		seen[r.ID] = struct{}{}
		if err := validateRule(&r); err != nil {
			return nil, err
		}
		r.Conditions = append([]model.Condition(nil), r.Conditions...)
		c.rules = append(c.rules, r)
	}

	fp, err := fingerprint(c)
	if err != nil {
		return nil, err
	}
	c.fingerprint = fp
	return c, nil
}

// fingerprint hashes the normalized catalog content. Equal content yields
// the same fingerprint in every process.
func fingerprint(c *Catalog) (string, error) {
	// Inactive is not part of a question's JSON form
	inactive := []string{}
	for _, q := range c.questions {
		if q.Inactive {
			inactive = append(inactive, q.Key)
		}
	}

	h := xxhash.New()
	enc := json.NewEncoder(h)
	for _, part := range []interface{}{c.questions, inactive, c.sections, c.subAreas, c.rules} {
		if err := enc.Encode(part); err != nil {
			return "", fmt.Errorf("failed to fingerprint catalog: %w", err)
		}
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

func validateRule(r *model.Rule) error {
	if t := r.EffectiveType(); t != model.RuleTypeInclude {
		return fmt.Errorf("rule %q: %w: %q", r.ID, ErrUnsupportedRuleType, t)
	}
	if strings.TrimSpace(r.SubAreaID) == "" {
		return fmt.Errorf("rule %q: %w: missing sub-area", r.ID, ErrInvalidRule)
	}
	if len(r.Conditions) == 0 {
		return fmt.Errorf("rule %q: %w: no conditions", r.ID, ErrInvalidRule)
	}
	for i, cond := range r.Conditions {
		if strings.TrimSpace(cond.QuestionKey) == "" {
			return fmt.Errorf("rule %q condition %d: %w: missing question", r.ID, i, ErrInvalidRule)
		}
		if !cond.Operator.Valid() {
			return fmt.Errorf("rule %q condition %d: %w: unknown operator %q", r.ID, i, ErrInvalidRule, cond.Operator)
		}
	}
	return nil
}

// Questions returns all questions ordered by display order
func (c *Catalog) Questions() []model.Question {
	return c.questions
}

// ActiveQuestions returns the questions shown to recipients, in display order
func (c *Catalog) ActiveQuestions() []model.Question {
	out := make([]model.Question, 0, len(c.questions))
	for _, q := range c.questions {
		if !q.Inactive {
			out = append(out, q)
		}
	}
	return out
}

// Question looks up a question by key
func (c *Catalog) Question(key string) (model.Question, bool) {
	i, ok := c.questionsByKey[key]
	if !ok {
		return model.Question{}, false
	}
	return c.questions[i], true
}

// Sections returns all sections ordered by ID
func (c *Catalog) Sections() []model.Section {
	return c.sections
}

// Section looks up a section by ID
func (c *Catalog) Section(id string) (model.Section, bool) {
	i, ok := c.sectionsByID[id]
	if !ok {
		return model.Section{}, false
	}
	return c.sections[i], true
}

// SubAreas returns sub-areas ordered by section then ID.
// A non-empty sectionID restricts the result to that section.
func (c *Catalog) SubAreas(sectionID string) []model.SubArea {
	if sectionID == "" {
		return c.subAreas
	}
	var out []model.SubArea
	for _, sa := range c.subAreas {
		if sa.SectionID == sectionID {
			out = append(out, sa)
		}
	}
	return out
}

// SubArea looks up a sub-area by ID
func (c *Catalog) SubArea(id string) (model.SubArea, bool) {
	i, ok := c.subAreasByID[id]
	if !ok {
		return model.SubArea{}, false
	}
	return c.subAreas[i], true
}

// Rules returns the full rule catalog, including inactive rules
func (c *Catalog) Rules() []model.Rule {
	return c.rules
}

// Evaluate runs the rule evaluator against this catalog's rules
func (c *Catalog) Evaluate(answers model.AnswerSet) SubAreaSet {
	return Evaluate(answers, c.rules)
}

// SubAreasWithoutRules lists sub-areas no active rule points at.
// Such sub-areas can never become applicable.
func (c *Catalog) SubAreasWithoutRules() []string {
	covered := make(map[string]struct{}, len(c.rules))
	for _, r := range c.rules {
		if !r.Inactive {
			covered[r.SubAreaID] = struct{}{}
		}
	}
	var out []string
	for _, sa := range c.subAreas {
		if _, ok := covered[sa.ID]; !ok {
			out = append(out, sa.ID)
		}
	}
	sort.Strings(out)
	return out
}

// Stats reports catalog sizes
type Stats struct {
	Questions int `json:"questions"`
	Sections  int `json:"sections"`
	SubAreas  int `json:"sub_areas"`
	Rules     int `json:"rules"`
}

// Fingerprint identifies the catalog content
func (c *Catalog) Fingerprint() string {
	return c.fingerprint
}

// Stats returns the number of entries of each kind
func (c *Catalog) Stats() Stats {
	return Stats{
		Questions: len(c.questions),
		Sections:  len(c.sections),
		SubAreas:  len(c.subAreas),
		Rules:     len(c.rules),
	}
}
