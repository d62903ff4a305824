package engine

import (
	"ftareview/internal/model"
	"sort"
)

// Enrich hydrates applicable sub-area IDs into report records, sorted by
// chapter number then sub-area ID. IDs missing from the catalog are skipped.
func Enrich(c *Catalog, ids SubAreaSet) []model.ApplicableSubArea {
	out := make([]model.ApplicableSubArea, 0, len(ids))
	for id := range ids {
		sa, ok := c.SubArea(id)
		if !ok {
			continue
		}
		out = append(out, hydrate(c, sa))
	}
	SortApplicable(out)
	return out
}

// SortApplicable orders records by chapter number (unmapped last) then sub-area ID
func SortApplicable(list []model.ApplicableSubArea) {
	sort.Slice(list, func(i, j int) bool {
		ci, cj := list[i].ChapterNumber, list[j].ChapterNumber
		switch {
		case ci == nil && cj != nil:
			return false
		case ci != nil && cj == nil:
			return true
		case ci != nil && *ci != *cj:
			return *ci < *cj
		}
		return list[i].SubAreaID < list[j].SubAreaID
	})
}

func hydrate(c *Catalog, sa model.SubArea) model.ApplicableSubArea {
	rec := model.ApplicableSubArea{
		SectionID:          sa.SectionID,
		SubAreaID:          sa.ID,
		Question:           sa.Question,
		BasicRequirement:   sa.BasicRequirement,
		LOEHours:           sa.Hours,
		LOEConfidence:      sa.Confidence,
		LOEConfidenceScore: sa.ConfidenceScore,
		Indicators:         append([]model.Indicator{}, sa.Indicators...),
		Deficiencies:       append([]model.Deficiency{}, sa.Deficiencies...),
	}
	if sec, ok := c.Section(sa.SectionID); ok {
		rec.SectionName = sec.Title
		rec.ChapterNumber = sec.ChapterNumber
	}
	return rec
}
