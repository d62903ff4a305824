package model

// QuestionType defines how a questionnaire question is answered
type QuestionType string

const (
	QuestionTypeSingle QuestionType = "single" // One option (radio)
	QuestionTypeMulti  QuestionType = "multi"  // Several options, comma-joined on submit
	QuestionTypeText   QuestionType = "text"   // Free text, never referenced by rules
)

// RecipientTypeKey is the questionnaire's primary classifying question.
// Its answers are "all", "state" or "non_state".
const RecipientTypeKey = "recipient_type"

// Recipient type answer values
const (
	RecipientAll      = "all"
	RecipientState    = "state"
	RecipientNonState = "non_state"
)

// QuestionOption is one legal answer value for a question
type QuestionOption struct {
	Value        string `json:"option_value" bson:"value" yaml:"value"`
	Label        string `json:"option_label" bson:"label" yaml:"label"`
	DisplayOrder int    `json:"display_order" bson:"displayOrder" yaml:"order"`
}

// Question is immutable reference data created by questionnaire setup
type Question struct {
	Number       int              `json:"question_number" bson:"number" yaml:"number"` // Legacy identity used by single-condition rules
	Key          string           `json:"question_key" bson:"key" yaml:"key"`
	Text         string           `json:"question_text" bson:"text" yaml:"text"`
	Category     string           `json:"category,omitempty" bson:"category,omitempty" yaml:"category"`
	Type         QuestionType     `json:"question_type" bson:"type" yaml:"type"`
	HelpText     string           `json:"help_text,omitempty" bson:"helpText,omitempty" yaml:"help"`
	DisplayOrder int              `json:"display_order" bson:"displayOrder" yaml:"order"`
	Required     bool             `json:"is_required" bson:"required" yaml:"required"`
	Inactive     bool             `json:"-" bson:"inactive,omitempty" yaml:"inactive"`
	Options      []QuestionOption `json:"options" bson:"options" yaml:"options"`
}

// HasOption reports whether value is one of the question's options.
// Questions without options (free text) accept anything.
func (q *Question) HasOption(value string) bool {
	if len(q.Options) == 0 {
		return true
	}
	for _, o := range q.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}
