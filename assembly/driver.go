package assembly

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goelastic/elasticity"
	"github.com/notargets/goelastic/utils"
)

// LocalOperator is the element and facet level interface the driver schedules
type LocalOperator interface {
	BlockSize() int
	ScratchSize() int

	BeginPreparation(numElements, numLocalElements, numLocalFacets int)
	PrepareVolume(elNo int, scratch *utils.LinearAllocator)
	PrepareSkeleton(fctNo int, info elasticity.FacetInfo, scratch *utils.LinearAllocator)
	PrepareBoundary(fctNo int, info elasticity.FacetInfo, scratch *utils.LinearAllocator)
	PrepareVolumePostSkeleton(elNo int, scratch *utils.LinearAllocator)
	EndPreparation()

	AssembleVolume(elNo int, A00 *mat.Dense, scratch *utils.LinearAllocator) bool
	AssembleSkeleton(fctNo int, info elasticity.FacetInfo, A00, A01, A10, A11 *mat.Dense,
		scratch *utils.LinearAllocator) bool
	AssembleBoundary(fctNo int, info elasticity.FacetInfo, A00 *mat.Dense, scratch *utils.LinearAllocator) bool

	RhsVolume(elNo int, B *mat.VecDense, scratch *utils.LinearAllocator) bool
	RhsSkeleton(fctNo int, info elasticity.FacetInfo, B0, B1 *mat.VecDense, scratch *utils.LinearAllocator) bool
	RhsBoundary(fctNo int, info elasticity.FacetInfo, B0 *mat.VecDense, scratch *utils.LinearAllocator) bool
}

type config struct {
	workers int
	logger  *zap.Logger
}

type Option func(c *config)

// WithWorkers sets the number of partitions processed in parallel
func WithWorkers(workers int) Option {
	return func(c *config) { c.workers = workers }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func newConfig(opts []Option) (c config) {
	c = config{workers: runtime.NumCPU(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&c)
	}
	if c.workers < 1 {
		c.workers = 1
	}
	return
}

// forEachPartition calls fn for every index of [0, n), the index space split into
// contiguous partitions handled by one goroutine and one scratch allocator each. A panic
// inside fn fails the pass with an error.
func forEachPartition(ctx context.Context, n, workers, scratchSize int,
	fn func(part, k int, scratch *utils.LinearAllocator) error) error {
	pm := utils.NewPartitionMap(workers, n)
	eg, egCtx := errgroup.WithContext(ctx)
	for part := 0; part < pm.ParallelDegree; part++ {
		part := part
		eg.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("partition %d: %v", part, r)
				}
			}()
			var (
				scratch    = utils.NewLinearAllocator(scratchSize)
				kMin, kMax = pm.GetBucketRange(part)
			)
			for k := kMin; k < kMax; k++ {
				if err = egCtx.Err(); err != nil {
					return
				}
				scratch.Reset()
				if err = fn(part, k, scratch); err != nil {
					return
				}
			}
			return
		})
	}
	return eg.Wait()
}

// Prepare runs the preparation pipeline of op: a serial BeginPreparation, then the
// volume, facet and post skeleton passes, each in parallel and each finished before the
// next one starts
func Prepare(ctx context.Context, op LocalOperator, numElements int, facets []elasticity.FacetInfo,
	opts ...Option) (err error) {
	var (
		cfg   = newConfig(opts)
		size  = op.ScratchSize()
		start = time.Now()
	)
	op.BeginPreparation(numElements, numElements, len(facets))
	if err = forEachPartition(ctx, numElements, cfg.workers, size,
		func(_, elNo int, scratch *utils.LinearAllocator) error {
			op.PrepareVolume(elNo, scratch)
			return nil
		}); err != nil {
		return fmt.Errorf("prepare volume: %w", err)
	}
	if err = forEachPartition(ctx, len(facets), cfg.workers, size,
		func(_, fctNo int, scratch *utils.LinearAllocator) error {
			if info := facets[fctNo]; info.IsBoundary() {
				op.PrepareBoundary(fctNo, info, scratch)
			} else {
				op.PrepareSkeleton(fctNo, info, scratch)
			}
			return nil
		}); err != nil {
		return fmt.Errorf("prepare facets: %w", err)
	}
	if err = forEachPartition(ctx, numElements, cfg.workers, size,
		func(_, elNo int, scratch *utils.LinearAllocator) error {
			op.PrepareVolumePostSkeleton(elNo, scratch)
			return nil
		}); err != nil {
		return fmt.Errorf("prepare volume post skeleton: %w", err)
	}
	op.EndPreparation()
	cfg.logger.Info("prepared",
		zap.Int("elements", numElements),
		zap.Int("facets", len(facets)),
		zap.Int("workers", cfg.workers),
		zap.Duration("elapsed", time.Since(start)),
	)
	return
}

// System is the assembled global linear system. DOFs are numbered element by element,
// element elNo owns [elNo*BlockSize, (elNo+1)*BlockSize).
type System struct {
	A utils.CSR
	B []float64
}

type localBlock struct {
	row, col int
	A        *mat.Dense
}

type localVector struct {
	row int
	B   *mat.VecDense
}

type partResult struct {
	blocks  []localBlock
	vectors []localVector
}

// Assemble computes all local blocks and load vectors in parallel and scatters them
// serially into the global sparse matrix
func Assemble(ctx context.Context, op LocalOperator, numElements int, facets []elasticity.FacetInfo,
	opts ...Option) (sys System, err error) {
	var (
		cfg    = newConfig(opts)
		bs     = op.BlockSize()
		size   = op.ScratchSize()
		start  = time.Now()
		newA   = func() *mat.Dense { return mat.NewDense(bs, bs, nil) }
		newB   = func() *mat.VecDense { return mat.NewVecDense(bs, nil) }
		volume = make([]partResult, cfg.workers)
		facet  = make([]partResult, cfg.workers)
	)
	if err = forEachPartition(ctx, numElements, cfg.workers, size,
		func(part, elNo int, scratch *utils.LinearAllocator) error {
			res := &volume[part]
			if A := newA(); op.AssembleVolume(elNo, A, scratch) {
				res.blocks = append(res.blocks, localBlock{elNo * bs, elNo * bs, A})
			}
			if B := newB(); op.RhsVolume(elNo, B, scratch) {
				res.vectors = append(res.vectors, localVector{elNo * bs, B})
			}
			return nil
		}); err != nil {
		return sys, fmt.Errorf("assemble volume: %w", err)
	}
	if err = forEachPartition(ctx, len(facets), cfg.workers, size,
		func(part, fctNo int, scratch *utils.LinearAllocator) error {
			var (
				res    = &facet[part]
				info   = facets[fctNo]
				r0, r1 = info.Up[0] * bs, info.Up[1] * bs
			)
			if info.IsBoundary() {
				if A := newA(); op.AssembleBoundary(fctNo, info, A, scratch) {
					res.blocks = append(res.blocks, localBlock{r0, r0, A})
				}
				if B := newB(); op.RhsBoundary(fctNo, info, B, scratch) {
					res.vectors = append(res.vectors, localVector{r0, B})
				}
				return nil
			}
			A00, A01, A10, A11 := newA(), newA(), newA(), newA()
			if op.AssembleSkeleton(fctNo, info, A00, A01, A10, A11, scratch) {
				res.blocks = append(res.blocks,
					localBlock{r0, r0, A00}, localBlock{r0, r1, A01},
					localBlock{r1, r0, A10}, localBlock{r1, r1, A11})
			}
			if B0, B1 := newB(), newB(); op.RhsSkeleton(fctNo, info, B0, B1, scratch) {
				res.vectors = append(res.vectors, localVector{r0, B0}, localVector{r1, B1})
			}
			return nil
		}); err != nil {
		return sys, fmt.Errorf("assemble facets: %w", err)
	}

	var (
		N   = numElements * bs
		dok = utils.NewDOK(N, N)
	)
	sys.B = make([]float64, N)
	for _, res := range append(volume, facet...) {
		for _, lb := range res.blocks {
			dok.AddBlock(lb.row, lb.col, lb.A)
		}
		for _, lv := range res.vectors {
			for i := 0; i < bs; i++ {
				sys.B[lv.row+i] += lv.B.AtVec(i)
			}
		}
	}
	dok.SetReadOnly("A")
	sys.A = dok.ToCSR()
	cfg.logger.Info("assembled",
		zap.Int("dofs", N),
		zap.Int("nonzeros", sys.A.NNZ()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return
}
