package model

import "time"

// Project is one assessment of a grant recipient
type Project struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	GranteeName string    `json:"grantee_name,omitempty" bson:"granteeName,omitempty"`
	GrantNumber string    `json:"grant_number,omitempty" bson:"grantNumber,omitempty"`
	ReviewType  string    `json:"review_type,omitempty" bson:"reviewType,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updatedAt"`
}

// ProjectUpdate carries the optional fields of a partial project update
type ProjectUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	GranteeName *string `json:"grantee_name"`
	GrantNumber *string `json:"grant_number"`
	ReviewType  *string `json:"review_type"`
}

// Apply copies the set fields onto p
func (u *ProjectUpdate) Apply(p *Project) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.GranteeName != nil {
		p.GranteeName = *u.GranteeName
	}
	if u.GrantNumber != nil {
		p.GrantNumber = *u.GrantNumber
	}
	if u.ReviewType != nil {
		p.ReviewType = *u.ReviewType
	}
}

// ProjectApplicability is the stored applicability decision for a project.
// It is recomputed in full on every answer submission.
type ProjectApplicability struct {
	ProjectID   string    `json:"project_id" bson:"projectId"`
	SubAreaIDs  []string  `json:"sub_area_ids" bson:"subAreaIds"`
	EvaluatedAt time.Time `json:"evaluated_at" bson:"evaluatedAt"`
}
