package education

import (
	"strings"
	"testing"

	"github.com/jonathan/resume-extractor/internal/patterns"
	"github.com/jonathan/resume-extractor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_DropsFirstRecord(t *testing.T) {
	lib := patterns.MustDefault()

	records := Extract(lib, []string{
		"Bachelor of Science, XYZ University, 2018",
		"Master in Business, ABC College, 2020",
	})

	require.Len(t, records, 1)
	assert.Equal(t, types.EducationRecord{
		Degree:      "Master in Business",
		Institution: ", ABC College, 2020",
		Year:        "4 years",
	}, records[0])
}

func TestExtractWithYears(t *testing.T) {
	lib := patterns.MustDefault()
	text := `Jane Doe
Education
Bachelor of Science in Physics, 2016
Master of Arts in History, 2020
Stanford University`

	records := ExtractWithYears(lib, text)

	require.Len(t, records, 2)
	assert.True(t, strings.HasPrefix(records[0].Degree, "Master"))
	assert.Equal(t, "2020", records[0].Year)
	assert.Equal(t, "Stanford University", records[1].Institution)
	assert.Equal(t, DefaultYear, records[1].Year)
}

func TestExtract_DefaultsAndLeadingIn(t *testing.T) {
	lib := patterns.MustDefault()

	records := Extract(lib, []string{
		"ignored",
		"Certificate in Cloud, Udacity",
		"Ph.D in Physics in MIT",
	})

	require.Len(t, records, 2)
	assert.Equal(t, DefaultDegree, records[0].Degree)
	assert.Equal(t, "Certificate in Cloud, Udacity", records[0].Institution)
	assert.Equal(t, "Ph.D in Physics", records[1].Degree)
	assert.Equal(t, "MIT", records[1].Institution)
	assert.Equal(t, DefaultYear, records[1].Year)
}

func TestExtract_Empty(t *testing.T) {
	lib := patterns.MustDefault()
	assert.Nil(t, Extract(lib, nil))
	assert.Empty(t, Extract(lib, []string{"only one"}))
}

func TestCandidates(t *testing.T) {
	lib := patterns.MustDefault()
	text := `Jane Doe
Education
Bachelor of Computer Science
Stanford University, 2019
Master in Data
Skills
Python`

	got := Candidates(lib, text)
	assert.Equal(t, []string{
		"Bachelor in Computer Science",
		"Master in Data",
		"Stanford University",
	}, got)
}

func TestCandidates_WholeTextWithoutSection(t *testing.T) {
	lib := patterns.MustDefault()

	got := Candidates(lib, "Georgia Institute of Technology, Atlanta")
	assert.Equal(t, []string{"Georgia Institute of Technology"}, got)
}

func TestYear(t *testing.T) {
	lib := patterns.MustDefault()
	assert.Equal(t, "2020", Year(lib, "Master in Business, ABC College, 2020"))
	assert.Equal(t, "", Year(lib, "no year here"))
}
