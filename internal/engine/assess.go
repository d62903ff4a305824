package engine

import (
	"fmt"
	"ftareview/internal/model"
)

// Assessment is the full outcome of evaluating one answer set
type Assessment struct {
	Result  model.ApplicabilityResult `json:"result"`
	Summary model.LOESummary          `json:"summary"`
	Trace   Trace                     `json:"-"`
}

// Assess evaluates answers against the catalog, hydrates the applicable
// sub-areas and rolls up their LOE.
func Assess(c *Catalog, answers model.AnswerSet, order SectionOrder) Assessment {
	trace := EvaluateTrace(answers, c.rules)
	subAreas := Enrich(c, trace.Applicable())
	return Assessment{
		Result: model.ApplicabilityResult{
			ApplicableCount:    len(subAreas),
			ApplicableSubAreas: subAreas,
		},
		Summary: Aggregate(subAreas, order),
		Trace:   trace,
	}
}

// MigrateLegacyRules converts single-condition rules into one-condition
// rules, resolving question numbers through questions. Rules whose question
// number is unknown are dropped and returned as unresolved. Migrated IDs keep
// the rule's position in legacy.
func MigrateLegacyRules(questions []model.Question, legacy []model.LegacyRule) (rules []model.Rule, unresolved []model.LegacyRule) {
	keys := make(map[int]string, len(questions))
	for _, q := range questions {
		keys[q.Number] = q.Key
	}

	rules = make([]model.Rule, 0, len(legacy))
	for i, lr := range legacy {
		key, ok := keys[lr.QuestionNumber]
		if !ok {
			unresolved = append(unresolved, lr)
			continue
		}
		rules = append(rules, model.Rule{
			ID:        fmt.Sprintf("%s#legacy%d", lr.SubAreaID, i+1),
			SubAreaID: lr.SubAreaID,
			Type:      lr.RuleType,
			Conditions: []model.Condition{{
				QuestionKey:   key,
				Operator:      model.OperatorEquals,
				ExpectedValue: lr.RequiredAnswer,
			}},
		})
	}
	return rules, unresolved
}
