package engine

import (
	"ftareview/internal/model"
	"sort"
	"strings"
)

// SubAreaSet is the set of applicable sub-area IDs
type SubAreaSet map[string]struct{}

// NewSubAreaSet builds a set from IDs
func NewSubAreaSet(ids ...string) SubAreaSet {
	s := make(SubAreaSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set
func (s SubAreaSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members sorted ascending
func (s SubAreaSet) IDs() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Trace maps each applicable sub-area to the ID of the rule that matched it
type Trace map[string]string

// Applicable returns the sub-areas recorded in the trace
func (t Trace) Applicable() SubAreaSet {
	s := make(SubAreaSet, len(t))
	for id := range t {
		s[id] = struct{}{}
	}
	return s
}

// Evaluate returns the sub-areas for which at least one rule matches answers.
// Inactive and non-include rules are ignored. The result does not depend on
// the order of rules.
func Evaluate(answers model.AnswerSet, rules []model.Rule) SubAreaSet {
	return EvaluateTrace(answers, rules).Applicable()
}

// EvaluateTrace is Evaluate that also records which rule matched.
// Within a sub-area, rules are tried by descending priority then ID, so the
// recorded rule is stable across runs.
func EvaluateTrace(answers model.AnswerSet, rules []model.Rule) Trace {
	trace := make(Trace)
	for subAreaID, group := range groupRules(rules) {
		for _, r := range group {
			if ruleMatches(r, answers) {
				trace[subAreaID] = r.ID
				break
			}
		}
	}
	return trace
}

func groupRules(rules []model.Rule) map[string][]*model.Rule {
	groups := make(map[string][]*model.Rule)
	for i := range rules {
		r := &rules[i]
		if r.Inactive || r.EffectiveType() != model.RuleTypeInclude {
			continue
		}
		groups[r.SubAreaID] = append(groups[r.SubAreaID], r)
	}
	for _, g := range groups {
		sort.Slice(g, func(i, j int) bool {
			if g[i].Priority != g[j].Priority {
				return g[i].Priority > g[j].Priority
			}
			return g[i].ID < g[j].ID
		})
	}
	return groups
}

// ruleMatches requires every active condition to hold. A rule with no
// active condition never matches.
func ruleMatches(r *model.Rule, answers model.AnswerSet) bool {
	active := 0
	for _, c := range r.Conditions {
		if c.Inactive {
			continue
		}
		active++
		if !conditionMatches(c, answers) {
			return false
		}
	}
	return active > 0
}

func conditionMatches(c model.Condition, answers model.AnswerSet) bool {
	answer, ok := answers.Get(c.QuestionKey)
	if !ok {
		return false
	}

	expected := expectedTokens(c)

	// "all" is a first-class value on both sides of the recipient type match
	// and must be decided before the generic token logic.
	if c.QuestionKey == model.RecipientTypeKey {
		for _, e := range expected {
			if recipientTypeMatches(e, answer) {
				return true
			}
		}
		return false
	}

	switch c.Operator {
	case model.OperatorEquals:
		want := strings.TrimSpace(c.ExpectedValue)
		if want == "" {
			return false
		}
		return answer == want || containsToken(model.SplitTokens(answer), want)
	case model.OperatorIn:
		if answer == strings.TrimSpace(c.ExpectedValue) {
			return true
		}
		for _, tok := range model.SplitTokens(answer) {
			if containsToken(expected, tok) {
				return true
			}
		}
	}
	return false
}

func expectedTokens(c model.Condition) []string {
	if c.Operator == model.OperatorIn {
		return model.SplitTokens(c.ExpectedValue)
	}
	if v := strings.TrimSpace(c.ExpectedValue); v != "" {
		return []string{v}
	}
	return nil
}

// recipientTypeMatches implements broader-matches-narrower for the
// recipient type question only.
func recipientTypeMatches(required, answer string) bool {
	if required == model.RecipientAll {
		return true
	}
	if answer == model.RecipientAll {
		switch required {
		case model.RecipientState, model.RecipientNonState:
			return true
		}
		return false
	}
	return required == answer
}

func containsToken(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}
