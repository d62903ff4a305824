package model

// RuleType classifies an applicability rule. Only include rules exist.
type RuleType string

const (
	RuleTypeInclude RuleType = "include"
)

// Operator compares a condition's expected value with an answer
type Operator string

const (
	OperatorEquals Operator = "equals" // Exact answer, or one token of a multi-select answer
	OperatorIn     Operator = "in"     // Expected value is a comma list; any shared token matches
)

// Valid reports whether the operator is supported by the evaluator
func (o Operator) Valid() bool {
	return o == OperatorEquals || o == OperatorIn
}

// Condition is a single (question, operator, expected value) test
type Condition struct {
	QuestionKey   string   `json:"question_key" bson:"questionKey" yaml:"question"`
	Operator      Operator `json:"operator" bson:"operator" yaml:"operator"`
	ExpectedValue string   `json:"expected_value" bson:"expectedValue" yaml:"value"`
	Inactive      bool     `json:"inactive,omitempty" bson:"inactive,omitempty" yaml:"inactive"`
}

// Rule ties one sub-area to a conjunction of conditions.
// A sub-area is applicable if any of its rules matches.
type Rule struct {
	ID          string      `json:"id" bson:"ruleId" yaml:"id"`
	SubAreaID   string      `json:"sub_area_id" bson:"subAreaId" yaml:"sub_area"`
	Description string      `json:"rule_description,omitempty" bson:"description,omitempty" yaml:"description"`
	Priority    int         `json:"priority" bson:"priority" yaml:"priority"`
	Inactive    bool        `json:"inactive,omitempty" bson:"inactive,omitempty" yaml:"inactive"`
	Type        RuleType    `json:"rule_type" bson:"type" yaml:"type"`
	Conditions  []Condition `json:"conditions" bson:"conditions" yaml:"conditions"`
}

// EffectiveType returns the rule type, treating an unset type as include
func (r *Rule) EffectiveType() RuleType {
	if r.Type == "" {
		return RuleTypeInclude
	}
	return r.Type
}

// LegacyRule is the single-condition rule form: one question, one
// required answer. It is migrated into a one-condition Rule on load.
type LegacyRule struct {
	SubAreaID      string   `json:"sub_area_id" bson:"subAreaId" yaml:"sub_area"`
	QuestionNumber int      `json:"question_id" bson:"questionNumber" yaml:"question"`
	RequiredAnswer string   `json:"required_answer" bson:"requiredAnswer" yaml:"answer"`
	RuleType       RuleType `json:"rule_type" bson:"ruleType" yaml:"type"`
}
