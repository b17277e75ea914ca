// Package types provides the data types shared by the extraction pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// ResumeRecord is the structured result of analyzing one resume document.
type ResumeRecord struct {
	Metadata    Metadata           `json:"metadata"`
	Skills      []string           `json:"skills"`
	Experience  []ExperienceRecord `json:"experience"`
	Education   []EducationRecord  `json:"education"`
	Projects    []ProjectRecord    `json:"projects"`
	Tags        []string           `json:"tags"`
	ProcessedAt time.Time          `json:"processed_at"`
}

// Metadata holds the candidate's identity fields. Empty strings mean "not found".
type Metadata struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ExperienceRecord is one employment entry.
type ExperienceRecord struct {
	Role        string `json:"role"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// EducationRecord is one education entry.
type EducationRecord struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// ProjectRecord is one project entry. Technologies is a ", " separated list.
type ProjectRecord struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Technologies string `json:"technologies"`
}

// EnsureSlices replaces nil slices with empty ones so the record serializes with [] instead of null.
func (r *ResumeRecord) EnsureSlices() {
	if r.Skills == nil {
		r.Skills = []string{}
	}
	if r.Experience == nil {
		r.Experience = []ExperienceRecord{}
	}
	if r.Education == nil {
		r.Education = []EducationRecord{}
	}
	if r.Projects == nil {
		r.Projects = []ProjectRecord{}
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
}
