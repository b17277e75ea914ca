package types

// Section names a resume section recognized by the segmenter.
type Section string

// Known sections.
const (
	SectionExperience Section = "experience"
	SectionEducation  Section = "education"
	SectionProjects   Section = "projects"
	SectionSkills     Section = "skills"
)

// Sections lists every section in the order headers are tried.
var Sections = []Section{SectionExperience, SectionEducation, SectionProjects, SectionSkills}
