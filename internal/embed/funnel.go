package embed

import "context"

// funnelRequest carries one EncodeBatch call into the funnel goroutine and
// receives its result back.
type funnelRequest struct {
	ctx    context.Context
	texts  []string
	result chan<- funnelResult
}

type funnelResult struct {
	vecs [][]float32
	err  error
}

// Funnel wraps an Embedder and serializes EncodeBatch calls from multiple
// indexer workers through a single goroutine, per the scheduling model's
// requirement that a shared embedding resource (e.g. a GPU-backed encoder)
// be driven by one sequential caller rather than concurrent goroutines.
// The wrapped Embedder itself does not need to be safe for concurrent use.
type Funnel struct {
	inner   Embedder
	reqs    chan funnelRequest
	closeCh chan struct{}
	done    chan struct{}
}

// NewFunnel starts the funnel's dispatch goroutine and returns an Embedder
// that callers from any number of goroutines can use concurrently; all
// actual EncodeBatch work still runs one request at a time.
func NewFunnel(inner Embedder) *Funnel {
	f := &Funnel{
		inner:   inner,
		reqs:    make(chan funnelRequest),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go f.run()
	return f
}

func (f *Funnel) run() {
	defer close(f.done)
	for {
		select {
		case req := <-f.reqs:
			vecs, err := f.inner.EncodeBatch(req.ctx, req.texts)
			req.result <- funnelResult{vecs: vecs, err: err}
		case <-f.closeCh:
			return
		}
	}
}

// Dimensions delegates to the wrapped embedder; it does not touch shared
// device state, so it is not routed through the funnel goroutine.
func (f *Funnel) Dimensions() int { return f.inner.Dimensions() }

// EncodeBatch enqueues texts for the funnel goroutine and blocks until that
// batch has been encoded, preserving FIFO order across concurrent callers.
func (f *Funnel) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	result := make(chan funnelResult, 1)
	select {
	case f.reqs <- funnelRequest{ctx: ctx, texts: texts, result: result}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.closeCh:
		return nil, context.Canceled
	}
	select {
	case r := <-result:
		return r.vecs, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Available delegates to the wrapped embedder.
func (f *Funnel) Available(ctx context.Context) bool { return f.inner.Available(ctx) }

// ModelName delegates to the wrapped embedder.
func (f *Funnel) ModelName() string { return f.inner.ModelName() }

// Close stops the dispatch goroutine and closes the wrapped embedder.
func (f *Funnel) Close() error {
	close(f.closeCh)
	<-f.done
	return f.inner.Close()
}
