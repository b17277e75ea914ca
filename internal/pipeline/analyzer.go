// Package pipeline turns raw resume text into a ResumeRecord.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonathan/resume-extractor/internal/education"
	"github.com/jonathan/resume-extractor/internal/entities"
	"github.com/jonathan/resume-extractor/internal/experience"
	"github.com/jonathan/resume-extractor/internal/identity"
	"github.com/jonathan/resume-extractor/internal/patterns"
	"github.com/jonathan/resume-extractor/internal/projects"
	"github.com/jonathan/resume-extractor/internal/segment"
	"github.com/jonathan/resume-extractor/internal/skills"
	"github.com/jonathan/resume-extractor/internal/tags"
	"github.com/jonathan/resume-extractor/internal/types"
)

// Analysis results reported to the Recorder.
const (
	ResultOK       = "ok"
	ResultEmpty    = "empty"
	ResultTagError = "tag_error"
)

// Recorder receives per-analysis counters.
type Recorder interface {
	AnalysisFinished(result string)
	SkillTokensDropped(n int)
}

type nopRecorder struct{}

func (nopRecorder) AnalysisFinished(string) {}
func (nopRecorder) SkillTokensDropped(int)  {}

// Analyzer runs every extractor over a document. It is safe for concurrent use as long as
// its Registry is; the one created by NewAnalyzer is.
type Analyzer struct {
	lib        *patterns.Library
	registry   *skills.Registry
	reconciler *entities.Reconciler
	names      identity.NameChain
	strictTags bool
	eduYears   bool
	now        func() time.Time
	metrics    Recorder
	logger     zerolog.Logger
	onProgress ProgressCallback
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithRegistry shares a skill registry between analyzers.
func WithRegistry(r *skills.Registry) Option {
	return func(a *Analyzer) { a.registry = r }
}

// WithReconciler enables entity tagging. Without one the entity map is always empty.
func WithReconciler(r *entities.Reconciler) Option {
	return func(a *Analyzer) { a.reconciler = r }
}

// WithStrictTags controls whether a tag precondition violation fails the analysis (the
// default) or only drops the tags.
func WithStrictTags(strict bool) Option {
	return func(a *Analyzer) { a.strictTags = strict }
}

// WithEducationYears reads the year of each education entry instead of writing the
// fixed placeholder.
func WithEducationYears(enabled bool) Option {
	return func(a *Analyzer) { a.eduYears = enabled }
}

// WithClock overrides the source of processed_at.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// WithMetrics sets the counter sink.
func WithMetrics(m Recorder) Option {
	return func(a *Analyzer) {
		if m != nil {
			a.metrics = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// WithProgress registers a callback invoked after every stage.
func WithProgress(cb ProgressCallback) Option {
	return func(a *Analyzer) { a.onProgress = cb }
}

// NewAnalyzer creates an Analyzer over lib.
func NewAnalyzer(lib *patterns.Library, opts ...Option) *Analyzer {
	a := &Analyzer{
		lib:        lib,
		names:      identity.DefaultNameChain(lib),
		strictTags: true,
		now:        time.Now,
		metrics:    nopRecorder{},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.registry == nil {
		a.registry = skills.NewRegistry(lib)
	}
	return a
}

// Registry returns the skill registry the analyzer tracks documents in.
func (a *Analyzer) Registry() *skills.Registry {
	return a.registry
}

// Analyze extracts a ResumeRecord from text and records its skills under docID.
// It fails only for empty text or, with strict tags, when tags cannot be generated.
func (a *Analyzer) Analyze(ctx context.Context, docID, text string) (*types.ResumeRecord, error) {
	if strings.TrimSpace(text) == "" {
		a.metrics.AnalysisFinished(ResultEmpty)
		return nil, ErrEmptyText
	}
	log := a.logger.With().Str("resume_id", docID).Logger()

	sections := segment.Segment(a.lib, text)
	a.emit(ctx, docID, StageSegment, "found %d sections", len(sections))

	ents := types.EntityMap{}
	if a.reconciler != nil {
		ents = a.reconciler.Reconcile(ctx, text)
	}
	a.emit(ctx, docID, StageEntities, "tagged %d organizations", len(ents[types.GroupOrganization]))

	record := &types.ResumeRecord{ProcessedAt: a.now().UTC()}

	record.Experience = experience.ExtractFrom(a.lib, sections, text)
	a.emit(ctx, docID, StageExperience, "extracted %d entries", len(record.Experience))

	if a.eduYears {
		record.Education = education.ExtractWithYearsFrom(a.lib, sections, text)
	} else {
		record.Education = education.Extract(a.lib, education.CandidatesFrom(a.lib, sections, text))
	}
	a.emit(ctx, docID, StageEducation, "extracted %d entries", len(record.Education))

	record.Projects = projects.ExtractFrom(a.lib, sections)
	a.emit(ctx, docID, StageProjects, "extracted %d entries", len(record.Projects))

	raw := skills.CandidatesFrom(a.lib, sections, text)
	kept := a.registry.Track(docID, raw)
	if dropped := len(skills.Normalize(a.lib, raw)) - len(kept); dropped > 0 {
		a.metrics.SkillTokensDropped(dropped)
	}
	record.Skills = a.registry.Filtered(docID)
	a.emit(ctx, docID, StageSkills, "kept %d of %d tokens", len(kept), len(raw))

	contacts := identity.ResolveContacts(a.lib, text)
	record.Metadata = types.Metadata{
		Name:  a.names.Resolve(text, ents),
		Email: contacts.At(0),
		Phone: contacts.At(1),
	}
	a.emit(ctx, docID, StageIdentity, "resolved %d contacts", len(contacts.Flatten()))

	record.EnsureSlices()

	generated, err := tags.Generate(record)
	if err != nil {
		if a.strictTags {
			a.metrics.AnalysisFinished(ResultTagError)
			return nil, &TagError{DocID: docID, Cause: err}
		}
		log.Warn().Err(err).Msg("discarding tags")
		generated = []string{}
	}
	record.Tags = generated
	a.emit(ctx, docID, StageTags, "generated %d tags", len(record.Tags))

	a.metrics.AnalysisFinished(ResultOK)
	log.Debug().
		Int("experience", len(record.Experience)).
		Int("education", len(record.Education)).
		Int("projects", len(record.Projects)).
		Int("skills", len(record.Skills)).
		Msg("resume analyzed")

	return record, nil
}
