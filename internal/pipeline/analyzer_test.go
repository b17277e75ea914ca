package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/resume-extractor/internal/entities"
	"github.com/jonathan/resume-extractor/internal/patterns"
	"github.com/jonathan/resume-extractor/internal/skills"
	"github.com/jonathan/resume-extractor/internal/tags"
	"github.com/jonathan/resume-extractor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `Jane Doe
jane.doe@example.com | +1 415-555-0100

Experience
Senior Engineer at Acme Corp, Jan 2020 - Present
• Built the billing pipeline

Data Analyst - Globex, March 2017 - Dec 2019
• Wrote SQL reports

Education
Bachelor of Science in Physics
Master of Arts in History

Projects
Tracker
• Tracks things

Skills
Python, Docker, SQL`

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeRecorder struct {
	mu      sync.Mutex
	results []string
	dropped int
}

func (f *fakeRecorder) AnalysisFinished(result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, result)
}

func (f *fakeRecorder) SkillTokensDropped(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropped += n
}

type orgTagger struct {
	spans []entities.RawSpan
	err   error
}

func (o orgTagger) Tag(context.Context, string) ([]entities.RawSpan, error) {
	return o.spans, o.err
}

func newTestAnalyzer(opts ...Option) *Analyzer {
	opts = append([]Option{WithClock(func() time.Time { return fixedTime })}, opts...)
	return NewAnalyzer(patterns.MustDefault(), opts...)
}

func TestAnalyze_FullResume(t *testing.T) {
	rec := &fakeRecorder{}
	a := newTestAnalyzer(WithMetrics(rec))

	record, err := a.Analyze(context.Background(), "doc-1", sampleResume)
	require.NoError(t, err)

	assert.Equal(t, types.Metadata{
		Name:  "Jane Doe",
		Email: "jane.doe@example.com",
		Phone: "+1 415-555-0100",
	}, record.Metadata)

	require.Len(t, record.Experience, 2)
	assert.Equal(t, "Senior Engineer", record.Experience[0].Role)
	assert.Equal(t, "Acme Corp", record.Experience[0].Company)
	assert.Equal(t, "Jan 2020 - Present", record.Experience[0].Duration)
	assert.Equal(t, "Data Analyst", record.Experience[1].Role)
	assert.Equal(t, "Globex", record.Experience[1].Company)

	require.Len(t, record.Education, 1, "the first education record is dropped")
	assert.True(t, strings.HasPrefix(record.Education[0].Degree, "Master"))
	assert.Equal(t, "History", record.Education[0].Institution)
	assert.Equal(t, "4 years", record.Education[0].Year)

	require.Len(t, record.Projects, 1)
	assert.Equal(t, "Tracker", record.Projects[0].Name)
	assert.Equal(t, "Tracks things.", record.Projects[0].Description)

	assert.Equal(t, []string{"Python", "docker", "sql"}, record.Skills)
	assert.Equal(t, []string{"Python", "docker", "sql", "Senior", "Master"}, record.Tags)
	assert.Equal(t, fixedTime, record.ProcessedAt)

	assert.Equal(t, []string{ResultOK}, rec.results)
	assert.Zero(t, rec.dropped)
	assert.Equal(t, record.Skills, a.Registry().Filtered("doc-1"))
}

func TestAnalyze_EducationYears(t *testing.T) {
	text := strings.Replace(sampleResume, "Master of Arts in History", "Master of Arts in History, 2020", 1)

	record, err := newTestAnalyzer(WithEducationYears(true)).Analyze(context.Background(), "doc-1", text)
	require.NoError(t, err)
	require.Len(t, record.Education, 1)
	assert.Equal(t, "2020", record.Education[0].Year)

	record, err = newTestAnalyzer().Analyze(context.Background(), "doc-1", text)
	require.NoError(t, err)
	require.Len(t, record.Education, 1)
	assert.Equal(t, "4 years", record.Education[0].Year)
}

func TestAnalyze_EmptyText(t *testing.T) {
	rec := &fakeRecorder{}
	a := newTestAnalyzer(WithMetrics(rec))

	for _, text := range []string{"", "  \n\t "} {
		_, err := a.Analyze(context.Background(), "doc", text)
		assert.ErrorIs(t, err, ErrEmptyText)
	}
	assert.Equal(t, []string{ResultEmpty, ResultEmpty}, rec.results)
}

func TestAnalyze_NoHeadersFallsBackForExperienceOnly(t *testing.T) {
	a := newTestAnalyzer()

	record, err := a.Analyze(context.Background(), "doc", "Engineer at Acme\n- Wrote code\n\nTracker\n• Tracks things")
	require.NoError(t, err)

	require.NotEmpty(t, record.Experience)
	assert.Equal(t, "Engineer", record.Experience[0].Role)
	assert.Empty(t, record.Projects)
	assert.NotNil(t, record.Projects)
	assert.Empty(t, record.Metadata.Name)
}

func TestAnalyze_MissingRoleIsStrictByDefault(t *testing.T) {
	rec := &fakeRecorder{}
	a := newTestAnalyzer(WithMetrics(rec))

	_, err := a.Analyze(context.Background(), "doc", "Experience\n• Shipped features")
	require.Error(t, err)
	assert.ErrorIs(t, err, tags.ErrMissingRole)

	var tagErr *TagError
	require.True(t, errors.As(err, &tagErr))
	assert.Equal(t, "doc", tagErr.DocID)
	assert.Equal(t, []string{ResultTagError}, rec.results)
}

func TestAnalyze_LenientTagsDropsTags(t *testing.T) {
	a := newTestAnalyzer(WithStrictTags(false))

	record, err := a.Analyze(context.Background(), "doc", "Experience\n• Shipped features\n\nSkills\nPython")
	require.NoError(t, err)
	assert.Equal(t, []string{}, record.Tags)
	assert.Equal(t, []string{"Python"}, record.Skills)
	require.Len(t, record.Experience, 1)
	assert.Empty(t, record.Experience[0].Role)
}

func TestAnalyze_NameFallsBackToOrganization(t *testing.T) {
	reconciler := entities.NewReconciler([]entities.Backend{{
		Name:   "stub",
		Tagger: orgTagger{spans: []entities.RawSpan{{Label: "ORG", Text: "Initech Software Group"}}},
		Labels: entities.LLMTaggerLabels,
	}})
	a := newTestAnalyzer(WithReconciler(reconciler))

	record, err := a.Analyze(context.Background(), "doc", "resume\nEngineer at Initech\n- Wrote code")
	require.NoError(t, err)
	assert.Equal(t, "Initech Softwa", record.Metadata.Name)
}

func TestAnalyze_FailingBackendDoesNotFail(t *testing.T) {
	reconciler := entities.NewReconciler([]entities.Backend{{
		Name:   "down",
		Tagger: orgTagger{err: errors.New("connection refused")},
		Labels: entities.LLMTaggerLabels,
	}})
	a := newTestAnalyzer(WithReconciler(reconciler))

	record, err := a.Analyze(context.Background(), "doc", "resume\nEngineer at Initech\n- Wrote code")
	require.NoError(t, err)
	assert.Empty(t, record.Metadata.Name)
}

func TestAnalyze_DroppedSkillTokens(t *testing.T) {
	rec := &fakeRecorder{}
	a := newTestAnalyzer(WithMetrics(rec))

	_, err := a.Analyze(context.Background(), "doc", "Skills\nPython, Cobol, Fortran")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.dropped)
}

func TestAnalyze_SharedRegistry(t *testing.T) {
	registry := skills.NewRegistry(patterns.MustDefault())
	a := newTestAnalyzer(WithRegistry(registry))
	b := newTestAnalyzer(WithRegistry(registry))

	_, err := a.Analyze(context.Background(), "a", "Skills\nPython")
	require.NoError(t, err)
	_, err = b.Analyze(context.Background(), "b", "Skills\nDocker")
	require.NoError(t, err)

	assert.Same(t, registry, a.Registry())
	assert.Equal(t, []string{"Python", "docker"}, registry.Global())
}

func TestAnalyze_ProgressFollowsStageOrder(t *testing.T) {
	var stages []string
	a := newTestAnalyzer(WithProgress(func(e ProgressEvent) {
		assert.Equal(t, "doc", e.ResumeID)
		assert.NotEmpty(t, e.Message)
		stages = append(stages, e.Stage)
	}))

	_, err := a.Analyze(context.Background(), "doc", sampleResume)
	require.NoError(t, err)
	assert.Equal(t, Stages, stages)
}

func TestAnalyze_ContextProgress(t *testing.T) {
	var fromOption, fromCtx int
	a := newTestAnalyzer(WithProgress(func(ProgressEvent) { fromOption++ }))

	ctx := ContextWithProgress(context.Background(), func(ProgressEvent) { fromCtx++ })
	_, err := a.Analyze(ctx, "doc", sampleResume)
	require.NoError(t, err)

	assert.Equal(t, len(Stages), fromOption)
	assert.Equal(t, len(Stages), fromCtx)
}
