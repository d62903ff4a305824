package engine

import (
	"fmt"
	"ftareview/internal/model"
	"sort"
)

// SectionOrder selects how section summaries are sorted
type SectionOrder string

const (
	// OrderByHoursDesc sorts by descending total hours; sections without
	// any estimated hours come last.
	OrderByHoursDesc SectionOrder = "hours"
	// OrderByChapter sorts by ascending chapter number; unnumbered sections come last.
	OrderByChapter SectionOrder = "chapter"
)

// ParseSectionOrder converts a config value into a SectionOrder
func ParseSectionOrder(s string) (SectionOrder, error) {
	switch SectionOrder(s) {
	case "", OrderByHoursDesc:
		return OrderByHoursDesc, nil
	case OrderByChapter:
		return OrderByChapter, nil
	}
	return "", fmt.Errorf("unknown section order %q (want %q or %q)", s, OrderByHoursDesc, OrderByChapter)
}

type sectionAcc struct {
	summary  model.SectionSummary
	hasHours bool
	scoreSum float64
}

// AggregateBySection rolls applicable sub-areas up per section.
// Absent hours add nothing to the sum; absent scores are left out of the
// average. Sections without applicable sub-areas are not emitted.
func AggregateBySection(subAreas []model.ApplicableSubArea, order SectionOrder) []model.SectionSummary {
	accs := make(map[string]*sectionAcc)
	for _, sa := range subAreas {
		acc, ok := accs[sa.SectionID]
		if !ok {
			acc = &sectionAcc{summary: model.SectionSummary{
				SectionID:     sa.SectionID,
				SectionName:   sa.SectionName,
				ChapterNumber: sa.ChapterNumber,
			}}
			accs[sa.SectionID] = acc
		}
		acc.summary.SubAreaCount++
		if sa.LOEHours != nil {
			acc.summary.TotalHours += *sa.LOEHours
			acc.hasHours = true
		}
		if sa.LOEConfidenceScore != nil {
			acc.summary.ScoredCount++
			acc.scoreSum += float64(*sa.LOEConfidenceScore)
		}
	}

	list := make([]*sectionAcc, 0, len(accs))
	for _, acc := range accs {
		if acc.summary.ScoredCount > 0 {
			acc.summary.AvgConfidenceScore = acc.scoreSum / float64(acc.summary.ScoredCount)
		}
		list = append(list, acc)
	}
	sortSections(list, order)

	out := make([]model.SectionSummary, len(list))
	for i, acc := range list {
		out[i] = acc.summary
	}
	return out
}

func sortSections(list []*sectionAcc, order SectionOrder) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch order {
		case OrderByChapter:
			ca, cb := a.summary.ChapterNumber, b.summary.ChapterNumber
			if (ca == nil) != (cb == nil) {
				return ca != nil
			}
			if ca != nil && *ca != *cb {
				return *ca < *cb
			}
		default:
			if a.hasHours != b.hasHours {
				return a.hasHours
			}
			if a.summary.TotalHours != b.summary.TotalHours {
				return a.summary.TotalHours > b.summary.TotalHours
			}
		}
		return a.summary.SectionID < b.summary.SectionID
	})
}

// Aggregate computes the project-level LOE summary.
//
// The project average is the mean of section averages weighted by how many
// scored sub-areas each section has, which equals the flat mean over every
// scored applicable sub-area.
func Aggregate(subAreas []model.ApplicableSubArea, order SectionOrder) model.LOESummary {
	sections := AggregateBySection(subAreas, order)
	return RollUp(sections)
}

// RollUp combines already computed section summaries into a project summary.
// Section averages are weighted by ScoredCount, which equals the flat mean
// over scored sub-areas. It diverges from a SubAreaCount weighting whenever
// a section has unscored sub-areas.
func RollUp(sections []model.SectionSummary) model.LOESummary {
	summary := model.LOESummary{Sections: sections}
	if summary.Sections == nil {
		summary.Sections = []model.SectionSummary{}
	}

	weighted, scored := 0.0, 0
	for _, s := range sections {
		summary.TotalSubAreas += s.SubAreaCount
		summary.TotalHours += s.TotalHours
		weighted += s.AvgConfidenceScore * float64(s.ScoredCount)
		scored += s.ScoredCount
	}
	if scored > 0 {
		summary.AvgConfidenceScore = weighted / float64(scored)
	}
	return summary
}

// SummarizeCatalog summarises every section of the catalog over all of its
// sub-areas, applicable or not. Sections with no sub-areas are included.
// Ordered by descending hours, sections without hours last.
func SummarizeCatalog(c *Catalog) []model.CatalogSectionSummary {
	type acc struct {
		summary  model.CatalogSectionSummary
		hasHours bool
		scoreSum float64
		scored   int
	}

	list := make([]*acc, 0, len(c.sections))
	byID := make(map[string]*acc, len(c.sections))
	for _, s := range c.sections {
		a := &acc{summary: model.CatalogSectionSummary{
			ID:            s.ID,
			Title:         s.Title,
			ChapterNumber: s.ChapterNumber,
		}}
		list = append(list, a)
		byID[s.ID] = a
	}

	for _, sa := range c.subAreas {
		a, ok := byID[sa.SectionID]
		if !ok {
			continue
		}
		a.summary.TotalSubAreas++
		if sa.Hours != nil {
			a.summary.TotalHours += *sa.Hours
			a.hasHours = true
		}
		if sa.ConfidenceScore != nil {
			a.scoreSum += float64(*sa.ConfidenceScore)
			a.scored++
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].hasHours != list[j].hasHours {
			return list[i].hasHours
		}
		return list[i].summary.TotalHours > list[j].summary.TotalHours
	})

	out := make([]model.CatalogSectionSummary, len(list))
	for i, a := range list {
		if a.scored > 0 {
			avg := a.scoreSum / float64(a.scored)
			a.summary.AvgConfidence = &avg
		}
		out[i] = a.summary
	}
	return out
}
