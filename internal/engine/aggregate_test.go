package engine

import (
	"ftareview/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applicable(section, id string, hours *float64, score *int) model.ApplicableSubArea {
	return model.ApplicableSubArea{
		SectionID:          section,
		SectionName:        section,
		SubAreaID:          id,
		LOEHours:           hours,
		LOEConfidenceScore: score,
	}
}

func TestAggregateBySection_SkipsMissingValues(t *testing.T) {
	subAreas := []model.ApplicableSubArea{
		applicable("S", "S-1", ptrF(10), ptrI(80)),
		applicable("S", "S-2", ptrF(5), ptrI(60)),
		applicable("S", "S-3", nil, nil),
	}

	got := AggregateBySection(subAreas, OrderByHoursDesc)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].SubAreaCount)
	assert.Equal(t, 2, got[0].ScoredCount)
	assert.InDelta(t, 15.0, got[0].TotalHours, 1e-9)
	assert.InDelta(t, 70.0, got[0].AvgConfidenceScore, 1e-9)
}

func TestAggregateBySection_NoScores(t *testing.T) {
	got := AggregateBySection([]model.ApplicableSubArea{applicable("S", "S-1", ptrF(2), nil)}, OrderByHoursDesc)
	require.Len(t, got, 1)
	assert.Zero(t, got[0].AvgConfidenceScore)
	assert.Zero(t, got[0].ScoredCount)
}

func TestAggregateBySection_Ordering(t *testing.T) {
	subAreas := []model.ApplicableSubArea{
		applicable("NOHOURS", "N-1", nil, ptrI(50)),
		applicable("SMALL", "S-1", ptrF(1), nil),
		applicable("BIG", "B-1", ptrF(20), nil),
		applicable("ZERO", "Z-1", ptrF(0), nil),
	}
	subAreas[0].ChapterNumber = ptrI(1)
	subAreas[1].ChapterNumber = ptrI(5)
	subAreas[2].ChapterNumber = ptrI(3)

	t.Run("hours descending, sections without hours last", func(t *testing.T) {
		got := AggregateBySection(subAreas, OrderByHoursDesc)
		ids := make([]string, len(got))
		for i, s := range got {
			ids[i] = s.SectionID
		}
		assert.Equal(t, []string{"BIG", "SMALL", "ZERO", "NOHOURS"}, ids)
	})

	t.Run("chapter ascending, unnumbered last", func(t *testing.T) {
		got := AggregateBySection(subAreas, OrderByChapter)
		ids := make([]string, len(got))
		for i, s := range got {
			ids[i] = s.SectionID
		}
		assert.Equal(t, []string{"NOHOURS", "BIG", "SMALL", "ZERO"}, ids)
	})
}

func TestAggregate_ProjectAverageEqualsFlatMean(t *testing.T) {
	subAreas := []model.ApplicableSubArea{
		applicable("A", "A-1", ptrF(3), ptrI(90)),
		applicable("A", "A-2", ptrF(1), ptrI(40)),
		applicable("A", "A-3", ptrF(1), ptrI(50)),
		applicable("B", "B-1", ptrF(8), ptrI(20)),
		applicable("B", "B-2", nil, nil),
		applicable("C", "C-1", nil, nil),
	}

	sum, n := 0.0, 0
	for _, sa := range subAreas {
		if sa.LOEConfidenceScore != nil {
			sum += float64(*sa.LOEConfidenceScore)
			n++
		}
	}
	flat := sum / float64(n)

	got := Aggregate(subAreas, OrderByHoursDesc)
	assert.InDelta(t, flat, got.AvgConfidenceScore, 1e-9)
	assert.InDelta(t, flat, RollUp(AggregateBySection(subAreas, OrderByChapter)).AvgConfidenceScore, 1e-9)
	assert.Equal(t, 6, got.TotalSubAreas)
	assert.InDelta(t, 13.0, got.TotalHours, 1e-9)
	assert.Len(t, got.Sections, 3)
}

func TestRollUp_WeightsByScoredCount(t *testing.T) {
	sections := []model.SectionSummary{
		{SectionID: "A", SubAreaCount: 3, ScoredCount: 1, AvgConfidenceScore: 80},
		{SectionID: "B", SubAreaCount: 1, ScoredCount: 1, AvgConfidenceScore: 60},
	}

	got := RollUp(sections)
	assert.InDelta(t, 70.0, got.AvgConfidenceScore, 1e-9)
	assert.Equal(t, 4, got.TotalSubAreas)

	// Weighting by SubAreaCount would count A's unscored sub-areas as 80s
	bySubAreaCount := (80.0*3 + 60.0*1) / 4
	assert.NotEqual(t, bySubAreaCount, got.AvgConfidenceScore)
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil, OrderByHoursDesc)
	assert.Zero(t, got.TotalSubAreas)
	assert.Zero(t, got.TotalHours)
	assert.Zero(t, got.AvgConfidenceScore)
	assert.NotNil(t, got.Sections)
	assert.Empty(t, got.Sections)
}

func TestParseSectionOrder(t *testing.T) {
	o, err := ParseSectionOrder("")
	require.NoError(t, err)
	assert.Equal(t, OrderByHoursDesc, o)

	o, err = ParseSectionOrder("chapter")
	require.NoError(t, err)
	assert.Equal(t, OrderByChapter, o)

	_, err = ParseSectionOrder("alphabetical")
	assert.Error(t, err)
}

func TestSummarizeCatalog(t *testing.T) {
	c := testCatalog(t)

	got := SummarizeCatalog(c)
	require.Len(t, got, 5)

	byID := make(map[string]model.CatalogSectionSummary, len(got))
	for _, s := range got {
		byID[s.ID] = s
	}

	tc := byID["TC"]
	assert.Equal(t, 2, tc.TotalSubAreas)
	assert.InDelta(t, 10.0, tc.TotalHours, 1e-9)
	require.NotNil(t, tc.AvgConfidence)
	assert.InDelta(t, 60.0, *tc.AvgConfidence, 1e-9)

	misc := byID["MISC"]
	assert.Equal(t, 1, misc.TotalSubAreas)
	assert.Nil(t, misc.AvgConfidence)

	assert.Equal(t, "TC", got[0].ID)
	assert.Equal(t, "MISC", got[len(got)-1].ID)
}
