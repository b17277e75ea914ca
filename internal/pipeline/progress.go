package pipeline

import (
	"context"
	"fmt"
)

// Stage names, in the order Analyze runs them.
const (
	StageSegment    = "segment"
	StageEntities   = "entities"
	StageExperience = "experience"
	StageEducation  = "education"
	StageProjects   = "projects"
	StageSkills     = "skills"
	StageIdentity   = "identity"
	StageTags       = "tags"
)

// Stages lists every stage in execution order.
var Stages = []string{
	StageSegment, StageEntities, StageExperience, StageEducation,
	StageProjects, StageSkills, StageIdentity, StageTags,
}

// ProgressEvent represents a progress update during an analysis
type ProgressEvent struct {
	Stage    string `json:"stage"`
	Message  string `json:"message"`
	ResumeID string `json:"resume_id,omitempty"`
}

// ProgressCallback is called when a stage completes
type ProgressCallback func(event ProgressEvent)

type progressKey struct{}

// ContextWithProgress attaches a callback that receives the progress events of analyses
// run with the returned context, in addition to the analyzer's own callback.
func ContextWithProgress(ctx context.Context, cb ProgressCallback) context.Context {
	return context.WithValue(ctx, progressKey{}, cb)
}

func progressFromContext(ctx context.Context) ProgressCallback {
	cb, _ := ctx.Value(progressKey{}).(ProgressCallback)
	return cb
}

func (a *Analyzer) emit(ctx context.Context, docID, stage, format string, args ...any) {
	fromCtx := progressFromContext(ctx)
	if a.onProgress == nil && fromCtx == nil {
		return
	}
	event := ProgressEvent{
		Stage:    stage,
		Message:  fmt.Sprintf(format, args...),
		ResumeID: docID,
	}
	if a.onProgress != nil {
		a.onProgress(event)
	}
	if fromCtx != nil {
		fromCtx(event)
	}
}
