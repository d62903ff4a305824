package model

// ApplicableSubArea is the hydrated, report-ready record of one applicable sub-area
type ApplicableSubArea struct {
	SectionID          string       `json:"section_id"`
	SectionName        string       `json:"section_name"`
	ChapterNumber      *int         `json:"chapter_number"`
	SubAreaID          string       `json:"sub_area_id"`
	Question           string       `json:"question"`
	BasicRequirement   string       `json:"basic_requirement"`
	LOEHours           *float64     `json:"loe_hours"`
	LOEConfidence      *Confidence  `json:"loe_confidence"`
	LOEConfidenceScore *int         `json:"loe_confidence_score"`
	Indicators         []Indicator  `json:"indicators"`
	Deficiencies       []Deficiency `json:"deficiencies"`
}

// ApplicabilityResult lists the applicable sub-areas, sorted by chapter then sub-area ID
type ApplicabilityResult struct {
	ProjectID          string              `json:"project_id,omitempty"`
	ApplicableCount    int                 `json:"applicable_count"`
	ApplicableSubAreas []ApplicableSubArea `json:"applicable_sub_areas"`
}

// SectionSummary rolls up LOE for the applicable sub-areas of one section
type SectionSummary struct {
	SectionID          string  `json:"section_id"`
	SectionName        string  `json:"section_name"`
	ChapterNumber      *int    `json:"chapter_number,omitempty"`
	SubAreaCount       int     `json:"sub_area_count"`
	ScoredCount        int     `json:"scored_count"` // Sub-areas carrying a confidence score
	TotalHours         float64 `json:"total_hours"`
	AvgConfidenceScore float64 `json:"avg_confidence_score"`
}

// LOESummary rolls up LOE for a whole project
type LOESummary struct {
	ProjectID          string           `json:"project_id,omitempty"`
	ProjectName        string           `json:"project_name,omitempty"`
	TotalSubAreas      int              `json:"total_sub_areas"`
	TotalHours         float64          `json:"total_hours"`
	AvgConfidenceScore float64          `json:"avg_confidence_score"`
	Sections           []SectionSummary `json:"sections"`
}

// CatalogSectionSummary summarises every sub-area of a section, applicable or not.
// AvgConfidence is nil when no sub-area of the section is scored.
type CatalogSectionSummary struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	ChapterNumber *int     `json:"chapter_number,omitempty"`
	TotalSubAreas int      `json:"total_sub_areas"`
	TotalHours    float64  `json:"total_hours"`
	AvgConfidence *float64 `json:"avg_confidence"`
}
