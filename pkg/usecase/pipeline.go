package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/domain/types"
)

// Pipeline runs stages against one Workspace.
type Pipeline struct {
	ws         *Workspace
	classifier *model.Classifier
}

type PipelineOption func(*Pipeline)

// WithClassifier replaces the default extension sets.
func WithClassifier(c *model.Classifier) PipelineOption {
	return func(p *Pipeline) {
		p.classifier = c
	}
}

func NewPipeline(ws *Workspace, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		ws:         ws,
		classifier: model.DefaultClassifier(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Workspace() *Workspace {
	return p.ws
}

func (p *Pipeline) Status() (model.ZipStatus, error) {
	if err := p.ws.Validate(); err != nil {
		return model.ZipStatus{}, err
	}
	return Status(p.ws)
}

// FlattenClass moves files of class from <Root>/unpacked into its library
// directory.
func (p *Pipeline) FlattenClass(ctx context.Context, class model.MediaClass, dryRun bool, progress model.ProgressFunc) (*model.BatchReport, error) {
	if p.ws == nil || p.ws.Library == nil {
		return nil, goerr.New("destination folder must be selected", goerr.T(types.ErrTagConfiguration))
	}
	opts := FlattenOptions{DryRun: dryRun, Classifier: p.classifier}
	return Flatten(ctx, p.ws.Library, p.ws.UnpackedRoot(), p.ws.ClassDir(class), class, opts, progress)
}

// Check validates an action and its parameters without touching the tree.
func (p *Pipeline) Check(action model.Action, params model.StageParams) error {
	switch action {
	case model.ActionUnpack, model.ActionValidate:
		return p.ws.Validate()
	case model.ActionPrune:
		if _, err := ParseExtensions(params.Extensions...); err != nil {
			return err
		}
	}
	if p.ws == nil || p.ws.Library == nil {
		return goerr.New("destination folder must be selected", goerr.T(types.ErrTagConfiguration))
	}
	return nil
}

// Run executes one action and returns its report.
func (p *Pipeline) Run(ctx context.Context, action model.Action, params model.StageParams, progress model.ProgressFunc) (any, error) {
	if err := p.Check(action, params); err != nil {
		return nil, err
	}

	switch action {
	case model.ActionUnpack:
		if len(params.Reextract) > 0 {
			return Reextract(ctx, p.ws, params.Reextract, progress)
		}
		return UnpackMissing(ctx, p.ws, progress)

	case model.ActionValidate:
		return Validate(ctx, p.ws, progress)

	case model.ActionFlattenImages:
		return p.FlattenClass(ctx, model.MediaImage, params.DryRun, progress)

	case model.ActionFlattenVideos:
		return p.FlattenClass(ctx, model.MediaVideo, params.DryRun, progress)

	case model.ActionPrune:
		exts, err := ParseExtensions(params.Extensions...)
		if err != nil {
			return nil, err
		}
		return Prune(ctx, p.ws.Library, p.ws.Root, exts, PruneOptions{DryRun: params.DryRun}, progress)

	case model.ActionCollapse:
		return Collapse(ctx, p.ws.Library, p.ws.Root)

	case model.ActionReport:
		opts := ReportOptions{EXIF: params.EXIF, Classifier: p.classifier}
		return Report(ctx, p.ws.Library, p.ws.Root, opts, progress)
	}

	return nil, goerr.New("unknown stage action",
		goerr.T(types.ErrTagConfiguration),
		goerr.V("action", string(action)))
}
