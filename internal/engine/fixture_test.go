package engine

import (
	"ftareview/internal/model"
	"testing"

	"github.com/stretchr/testify/require"
)

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }

func cond(key string, op model.Operator, value string) model.Condition {
	return model.Condition{QuestionKey: key, Operator: op, ExpectedValue: value}
}

func rule(id, subArea string, conds ...model.Condition) model.Rule {
	return model.Rule{ID: id, SubAreaID: subArea, Type: model.RuleTypeInclude, Conditions: conds}
}

func subArea(id, section string, hours *float64, score *int) model.SubArea {
	return model.SubArea{
		ID:        id,
		SectionID: section,
		Question:  "Question for " + id,
		LOE:       model.LOE{Hours: hours, ConfidenceScore: score},
	}
}

// testCatalog is a small catalog covering the main rule shapes:
//
//	LEGAL-1   every recipient
//	TC-1      state recipients only
//	TC-2      non-state recipients only
//	FIN-1     receives 5310 funds
//	FIN-2     above the threshold and has subrecipients
//	DBE-1     recipient type in state,non_state with a DBE goal
//	ORPHAN-1  no rules
func testCatalog(t *testing.T) *Catalog {
	t.Helper()

	c, err := NewCatalog(CatalogData{
		Questions: []model.Question{
			{Number: 1, Key: "recipient_type", DisplayOrder: 1, Type: model.QuestionTypeSingle},
			{Number: 2, Key: "federal_assistance_amount", DisplayOrder: 2, Type: model.QuestionTypeSingle},
			{Number: 3, Key: "has_subrecipients", DisplayOrder: 3, Type: model.QuestionTypeSingle},
			{Number: 7, Key: "fund_types", DisplayOrder: 7, Type: model.QuestionTypeMulti},
			{Number: 10, Key: "has_dbe_goal", DisplayOrder: 10, Type: model.QuestionTypeSingle},
		},
		Sections: []model.Section{
			{ID: "LEGAL", Title: "Legal", ChapterNumber: ptrI(1)},
			{ID: "FIN", Title: "Financial Management and Capacity", ChapterNumber: ptrI(2)},
			{ID: "TC", Title: "Technical Capacity", ChapterNumber: ptrI(3)},
			{ID: "DBE", Title: "Disadvantaged Business Enterprise", ChapterNumber: ptrI(11)},
			{ID: "MISC", Title: "Miscellaneous"},
		},
		SubAreas: []model.SubArea{
			subArea("LEGAL-1", "LEGAL", ptrF(4), ptrI(80)),
			subArea("TC-1", "TC", ptrF(10), ptrI(60)),
			subArea("TC-2", "TC", nil, nil),
			subArea("FIN-1", "FIN", ptrF(6), ptrI(90)),
			subArea("FIN-2", "FIN", ptrF(2), nil),
			subArea("DBE-1", "DBE", ptrF(3), ptrI(70)),
			subArea("ORPHAN-1", "MISC", nil, nil),
		},
		Rules: []model.Rule{
			rule("r-legal", "LEGAL-1", cond("recipient_type", model.OperatorIn, "all,state,non_state")),
			rule("r-tc1", "TC-1", cond("recipient_type", model.OperatorEquals, "state")),
			rule("r-tc2", "TC-2", cond("recipient_type", model.OperatorEquals, "non_state")),
			rule("r-fin1", "FIN-1", cond("fund_types", model.OperatorEquals, "5310")),
			rule("r-fin2", "FIN-2",
				cond("federal_assistance_amount", model.OperatorEquals, "above_threshold"),
				cond("has_subrecipients", model.OperatorEquals, "yes"),
			),
			rule("r-dbe", "DBE-1",
				cond("recipient_type", model.OperatorIn, "state,non_state"),
				cond("has_dbe_goal", model.OperatorEquals, "yes"),
			),
		},
	})
	require.NoError(t, err)
	return c
}
