package model

// Confidence is the qualitative label of an LOE estimate
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// LOE is the offline level-of-effort estimate attached to a sub-area.
// Nil fields mean "not estimated" and are never coerced to zero.
type LOE struct {
	Hours           *float64    `json:"loe_hours" bson:"hours,omitempty" yaml:"hours"`
	Confidence      *Confidence `json:"loe_confidence" bson:"confidence,omitempty" yaml:"confidence"`
	ConfidenceScore *int        `json:"loe_confidence_score" bson:"confidenceScore,omitempty" yaml:"score"`
	Reasoning       string      `json:"loe_reasoning,omitempty" bson:"reasoning,omitempty" yaml:"reasoning"`
}

// Section groups sub-areas under a chapter of the review guide
type Section struct {
	ID            string `json:"id" bson:"_id" yaml:"id"`
	Title         string `json:"title" bson:"title" yaml:"title"`
	PageRange     string `json:"page_range,omitempty" bson:"pageRange,omitempty" yaml:"pages"`
	Purpose       string `json:"purpose,omitempty" bson:"purpose,omitempty" yaml:"purpose"`
	ChapterNumber *int   `json:"chapter_number" bson:"chapterNumber,omitempty" yaml:"chapter"`
}

// Indicator is an indicator of compliance checked while reviewing a sub-area
type Indicator struct {
	ID   int    `json:"id" bson:"id" yaml:"id"`
	Code string `json:"indicator_id" bson:"code" yaml:"code"`
	Text string `json:"text" bson:"text" yaml:"text"`
}

// Deficiency is a catalogued finding used in report generation
type Deficiency struct {
	ID                        int    `json:"id" bson:"id" yaml:"id"`
	Code                      string `json:"code" bson:"code" yaml:"code"`
	Title                     string `json:"title" bson:"title" yaml:"title"`
	Determination             string `json:"determination,omitempty" bson:"determination,omitempty" yaml:"determination"`
	SuggestedCorrectiveAction string `json:"suggested_corrective_action,omitempty" bson:"suggestedCorrectiveAction,omitempty" yaml:"corrective_action"`
}

// SubArea is the unit of compliance review
type SubArea struct {
	ID                      string       `json:"id" bson:"_id" yaml:"id"`
	SectionID               string       `json:"section_id" bson:"sectionId" yaml:"section"`
	Question                string       `json:"question" bson:"question" yaml:"question"`
	BasicRequirement        string       `json:"basic_requirement,omitempty" bson:"basicRequirement,omitempty" yaml:"basic_requirement"`
	Applicability           string       `json:"applicability,omitempty" bson:"applicability,omitempty" yaml:"applicability"`
	DetailedExplanation     string       `json:"detailed_explanation,omitempty" bson:"detailedExplanation,omitempty" yaml:"explanation"`
	InstructionsForReviewer string       `json:"instructions_for_reviewer,omitempty" bson:"instructions,omitempty" yaml:"instructions"`
	LOE                     `bson:"loe" yaml:"loe"` // fields promoted in JSON
	Indicators              []Indicator  `json:"indicators" bson:"indicators" yaml:"indicators"`
	Deficiencies            []Deficiency `json:"deficiencies" bson:"deficiencies" yaml:"deficiencies"`
}
