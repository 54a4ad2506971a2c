// Package graphclust clusters entities over affinity graphs with
// interchangeable community detection backends, jump-method cluster count
// estimation and automatic resolution calibration.
//
// The Engine operates on an explicit store.Annotations holding embeddings and
// affinity graphs keyed by representation. A typical run:
//
//	ann := store.NewAnnotations()
//	ann.SetEmbedding("pca", x)
//	ann.SetGraph("pca", g)
//
//	eng := graphclust.New(ann)
//	labels, err := eng.Cluster(ctx, graphclust.ClusterOptions{
//	    Algo: model.AlgoLouvain,
//	})
//
// When no resolution is given, the engine estimates the natural cluster count
// with the jump method and bisects the resolution range until the detector
// yields at least that many clusters. Results land back in the annotation
// store under the class label, alongside the resolution they were produced
// at.
package graphclust

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/graphclust/calibrate"
	"github.com/hupe1980/graphclust/detector"
	"github.com/hupe1980/graphclust/detector/leiden"
	"github.com/hupe1980/graphclust/detector/louvain"
	"github.com/hupe1980/graphclust/graph"
	"github.com/hupe1980/graphclust/hierarchy"
	"github.com/hupe1980/graphclust/jump"
	"github.com/hupe1980/graphclust/model"
	"github.com/hupe1980/graphclust/store"
)

// Defaults for ClusterOptions.
const (
	DefaultRep       = "pca"
	DefaultRepKMeans = "diffmap"
	DefaultK1        = 30
	DefaultK2        = 50
	DefaultNInit     = 10
	DefaultKMax      = 40

	// DefaultSpectralResolution is used by spectral variants, which skip
	// calibration.
	DefaultSpectralResolution = 1.3
)

// singletonRetryMaxN bounds the dataset size for which singleton retries run.
// Above it, singleton clusters are accepted; re-detection would be too
// expensive and large datasets rarely produce them.
const singletonRetryMaxN = 100000

// Engine orchestrates clustering runs over an annotation store.
type Engine struct {
	ann       *store.Annotations
	opts      options
	detectors map[model.Algorithm]detector.Detector
}

// New creates an Engine over the given annotation store.
func New(ann *store.Annotations, optFns ...Option) *Engine {
	o := applyOptions(optFns)

	detectors := map[model.Algorithm]detector.Detector{
		model.AlgoLouvain: louvain.New(),
		model.AlgoLeiden:  leiden.New(),
	}
	for algo, d := range o.detectors {
		detectors[algo] = d
	}

	return &Engine{
		ann:       ann,
		opts:      o,
		detectors: detectors,
	}
}

// Annotations returns the engine's annotation store.
func (e *Engine) Annotations() *store.Annotations { return e.ann }

// ClusterOptions configures a single clustering run.
type ClusterOptions struct {
	// Algo selects the algorithm variant. Defaults to louvain.
	Algo model.Algorithm

	// Rep is the representation whose affinity graph is clustered.
	// Defaults to "pca".
	Rep string

	// Resolution fixes the detection resolution. When nil, louvain and
	// leiden calibrate it against the jump-method cluster count estimate;
	// spectral variants use DefaultSpectralResolution.
	Resolution *float64

	// ResolMax bounds the calibration search. Defaults to 2.0.
	ResolMax float64

	// Tolerance stops the calibration bisection. Defaults to 0.05.
	Tolerance float64

	// MaxIterations bounds refinement passes (leiden).
	MaxIterations int

	// RepKMeans is the embedding used for hierarchical k-means seeding by
	// spectral variants. Defaults to "diffmap", falling back to Rep with a
	// warning when absent.
	RepKMeans string

	// K1 and K2 are the two-level k-means cluster counts for spectral
	// seeding. Defaults: 30 and 50.
	K1, K2 int

	// NInit is the number of k-means restarts. Defaults to 10.
	NInit int

	// KMax caps the jump-method candidate range. Defaults to 40.
	KMax int

	// Seed makes the whole run deterministic.
	Seed int64

	// ClassLabel keys the resulting membership in the annotation store.
	// Defaults to "<algo>_labels".
	ClassLabel string
}

func (o *ClusterOptions) defaults() {
	if o.Algo == "" {
		o.Algo = model.AlgoLouvain
	}
	if o.Rep == "" {
		o.Rep = DefaultRep
	}
	if o.RepKMeans == "" {
		o.RepKMeans = DefaultRepKMeans
	}
	if o.K1 <= 0 {
		o.K1 = DefaultK1
	}
	if o.K2 <= 0 {
		o.K2 = DefaultK2
	}
	if o.NInit <= 0 {
		o.NInit = DefaultNInit
	}
	if o.KMax <= 0 {
		o.KMax = DefaultKMax
	}
	if o.ResolMax <= 0 {
		o.ResolMax = calibrate.DefaultResolMax
	}
	if o.Tolerance <= 0 {
		o.Tolerance = calibrate.DefaultTolerance
	}
	if o.ClassLabel == "" {
		o.ClassLabel = o.Algo.String() + "_labels"
	}
}

// Cluster runs one clustering pass and stores the resulting labels under the
// class label. The returned membership is contiguous in [0, K).
func (e *Engine) Cluster(ctx context.Context, opts ClusterOptions) (model.Membership, error) {
	opts.defaults()
	if !opts.Algo.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, opts.Algo)
	}

	g, ok := e.ann.Graph(opts.Rep)
	if !ok {
		return nil, &ErrMissingGraph{Rep: opts.Rep}
	}

	base, ok := e.detectors[opts.Algo.Base()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, opts.Algo)
	}
	d := &instrumentedDetector{Detector: base, metrics: e.opts.metricsCollector}

	var init model.Membership
	if opts.Algo.Spectral() {
		var err error
		init, err = e.spectralSeed(ctx, g.Order(), opts)
		if err != nil {
			return nil, err
		}
	}

	var (
		resol  float64
		labels model.Membership
		err    error
	)
	switch {
	case opts.Resolution != nil:
		resol = *opts.Resolution
		labels, err = e.detect(ctx, d, g, resol, init, opts)
	case opts.Algo.Spectral():
		resol = DefaultSpectralResolution
		labels, err = e.detect(ctx, d, g, resol, init, opts)
	default:
		resol, labels, err = e.calibrated(ctx, d, g, opts)
	}
	if err != nil {
		return nil, translateError(err)
	}

	labels, resol, err = e.retrySingletons(ctx, d, g, labels, resol, init, opts)
	if err != nil {
		return nil, translateError(err)
	}

	e.ann.SetLabels(opts.ClassLabel, labels)
	e.ann.SetResolution(opts.ClassLabel, resol)

	e.opts.logger.InfoContext(ctx, "clustering completed",
		"algorithm", opts.Algo.String(),
		"class", opts.ClassLabel,
		"resolution", resol,
		"clusters", labels.NumClusters(),
	)
	return labels, nil
}

// JumpMethod estimates the natural cluster count for a representation's
// embedding, caching the profile in the annotation store. A non-positive y
// selects the dimension-based default.
func (e *Engine) JumpMethod(ctx context.Context, rep string, kMax int, y float64, seed int64) (*model.JumpProfile, error) {
	if rep == "" {
		rep = DefaultRep
	}
	if kMax <= 0 {
		kMax = DefaultKMax
	}
	if p, ok := e.ann.JumpProfile(rep); ok {
		return p, nil
	}

	x, ok := e.ann.Embedding(rep)
	if !ok {
		return nil, &ErrMissingEmbedding{Rep: rep}
	}

	start := time.Now()
	p, err := jump.Estimate(ctx, x, kMax, y, seed,
		jump.WithLogger(e.opts.logger.Logger),
		jump.WithController(e.opts.controller),
	)
	e.opts.metricsCollector.RecordJumpEstimate(kMax, time.Since(start), err)
	if err != nil {
		e.opts.logger.LogJumpEstimate(ctx, rep, kMax, 0, err)
		return nil, err
	}
	e.opts.logger.LogJumpEstimate(ctx, rep, kMax, p.OptimalK(), nil)

	e.ann.SetJumpProfile(rep, p)
	return p, nil
}

// Snapshot serializes the annotation store to the configured blob store.
func (e *Engine) Snapshot(ctx context.Context, name string, opts ...store.SnapshotOption) error {
	if e.opts.blobs == nil {
		return ErrNoBlobStore
	}
	start := time.Now()
	err := e.ann.Snapshot(ctx, e.opts.blobs, name, opts...)
	e.opts.metricsCollector.RecordSnapshot(time.Since(start), err)
	e.opts.logger.LogSnapshot(ctx, name, err)
	return err
}

// LoadSnapshot replaces the annotation store contents from the configured
// blob store.
func (e *Engine) LoadSnapshot(ctx context.Context, name string) error {
	if e.opts.blobs == nil {
		return ErrNoBlobStore
	}
	start := time.Now()
	err := e.ann.Load(ctx, e.opts.blobs, name)
	e.opts.metricsCollector.RecordSnapshot(time.Since(start), err)
	return err
}

// instrumentedDetector records every detection run, including the ones the
// calibrator performs internally.
type instrumentedDetector struct {
	detector.Detector
	metrics MetricsCollector
}

func (i *instrumentedDetector) Detect(ctx context.Context, g *graph.Graph, opts detector.Options) (model.Membership, error) {
	start := time.Now()
	labels, err := i.Detector.Detect(ctx, g, opts)
	i.metrics.RecordDetect(i.Name(), time.Since(start), err)
	return labels, err
}

func (e *Engine) detect(ctx context.Context, d detector.Detector, g *graph.Graph, resol float64, init model.Membership, opts ClusterOptions) (model.Membership, error) {
	labels, err := d.Detect(ctx, g, detector.Options{
		Resolution:        resol,
		Seed:              opts.Seed,
		InitialMembership: init,
		MaxIterations:     opts.MaxIterations,
	})
	e.opts.logger.LogDetect(ctx, d.Name(), resol, labels.NumClusters(), err)
	return labels, err
}

// spectralSeed computes the two-level k-means partition used as the initial
// membership of spectral variants.
func (e *Engine) spectralSeed(ctx context.Context, order int, opts ClusterOptions) (model.Membership, error) {
	rep := opts.RepKMeans
	x, ok := e.ann.Embedding(rep)
	if !ok && rep != opts.Rep {
		e.opts.logger.WarnContext(ctx, "k-means representation missing, falling back",
			"rep_kmeans", rep,
			"fallback", opts.Rep,
		)
		rep = opts.Rep
		x, ok = e.ann.Embedding(rep)
	}
	if !ok {
		return nil, &ErrMissingEmbedding{Rep: rep}
	}
	if x.Rows != order {
		return nil, fmt.Errorf("embedding %q has %d rows, graph has %d nodes", rep, x.Rows, order)
	}

	return hierarchy.Partition(ctx, x, opts.K1, opts.K2, opts.NInit, opts.Seed,
		hierarchy.WithLogger(e.opts.logger.Logger))
}

// calibrated resolves the resolution by bisection against the jump-method
// cluster count estimate.
func (e *Engine) calibrated(ctx context.Context, d detector.Detector, g *graph.Graph, opts ClusterOptions) (float64, model.Membership, error) {
	profile, err := e.JumpMethod(ctx, opts.Rep, opts.KMax, 0, opts.Seed)
	if err != nil {
		return 0, nil, err
	}
	targetK := profile.OptimalK()

	start := time.Now()
	res, err := calibrate.Calibrate(ctx, d, g, targetK, calibrate.Options{
		ResolMax:      opts.ResolMax,
		Tolerance:     opts.Tolerance,
		Seed:          opts.Seed,
		MaxIterations: opts.MaxIterations,
		Logger:        e.opts.logger.Logger,
	})
	e.opts.metricsCollector.RecordCalibration(evaluationsOf(res), time.Since(start), err)
	if err != nil {
		return 0, nil, err
	}
	e.opts.logger.LogCalibration(ctx, targetK, res.Evaluations, res.Resolution, res.Converged)
	return res.Resolution, res.Membership, nil
}

// retrySingletons re-runs detection at progressively lower resolutions while
// the smallest cluster is a singleton. Large datasets skip the retry.
func (e *Engine) retrySingletons(ctx context.Context, d detector.Detector, g *graph.Graph, labels model.Membership, resol float64, init model.Membership, opts ClusterOptions) (model.Membership, float64, error) {
	if g.Order() >= singletonRetryMaxN || labels.MinClusterSize() > 1 {
		return labels, resol, nil
	}

	orig := resol
	for labels.MinClusterSize() == 1 && resol-0.1 > 1e-9 {
		resol -= 0.1
		var err error
		labels, err = e.detect(ctx, d, g, resol, init, opts)
		if err != nil {
			return nil, 0, err
		}
	}
	if resol != orig {
		e.opts.logger.LogSingletonRetry(ctx, orig, resol, labels.MinClusterSize() > 1)
	}
	return labels, resol, nil
}

func evaluationsOf(res *calibrate.Result) int {
	if res == nil {
		return 0
	}
	return res.Evaluations
}
