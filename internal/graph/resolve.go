package graph

import (
	"fmt"
	"strings"
	"sync"

	"github.com/phobologic/gfapath2fa/internal/model"
	"github.com/phobologic/gfapath2fa/internal/seq"
)

// Resolve turns every path of g into a Record by concatenating its segments
// in order, reverse-complementing the reverse-oriented ones.
//
// Records come back in path-table order. If several paths fail, the error of
// the first failing path in file order is returned, whatever opts.Workers is.
func Resolve(g *model.Graph, opts Options) ([]model.Record, error) {
	paths := g.Paths()
	if opts.Workers <= 1 || len(paths) <= 1 {
		records := make([]model.Record, 0, len(paths))
		for i := range paths {
			rec, err := ResolvePath(g, &paths[i], opts.Strict)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
		return records, nil
	}
	return resolveConcurrent(g, paths, opts)
}

// ResolvePath resolves a single path against the segment table of g.
func ResolvePath(g *model.Graph, p *model.Path, strict bool) (model.Record, error) {
	segs := make([]string, len(p.Refs))
	total := 0
	for i, ref := range p.Refs {
		s, ok := g.Segment(ref.Name)
		if !ok {
			return model.Record{}, &model.Error{
				Kind:   model.ErrReferencedSegmentNotFound,
				Line:   p.Line,
				Tag:    string(p.Kind),
				Name:   p.Name,
				Detail: fmt.Sprintf("segment %q", ref.Name),
			}
		}
		segs[i] = s.Sequence
		total += len(s.Sequence)
	}

	var b strings.Builder
	b.Grow(total)
	for i, ref := range p.Refs {
		if ref.Orientation == model.Forward {
			b.WriteString(segs[i])
			continue
		}
		if !strict {
			b.WriteString(seq.ReverseComplement(segs[i]))
			continue
		}
		rc, err := seq.ReverseComplementStrict(segs[i])
		if err != nil {
			return model.Record{}, &model.Error{
				Kind:   model.ErrInvalidSequenceSymbol,
				Line:   p.Line,
				Tag:    string(p.Kind),
				Name:   p.Name,
				Detail: fmt.Sprintf("segment %q: %v", ref.Name, err),
			}
		}
		b.WriteString(rc)
	}
	return model.Record{Name: p.Name, Sequence: b.String()}, nil
}

// resolveConcurrent fans paths out to a fixed pool of workers. The graph is
// read-only during resolution, so workers share it without locking.
func resolveConcurrent(g *model.Graph, paths []model.Path, opts Options) ([]model.Record, error) {
	type result struct {
		index  int
		record model.Record
		err    error
	}

	numWorkers := opts.Workers
	if numWorkers > len(paths) {
		numWorkers = len(paths)
	}

	work := make(chan int, len(paths))
	results := make(chan result, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				rec, err := ResolvePath(g, &paths[idx], opts.Strict)
				results <- result{index: idx, record: rec, err: err}
			}
		}()
	}

	for i := range paths {
		work <- i
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results in path-table order
	records := make([]model.Record, len(paths))
	errs := make([]error, len(paths))
	for r := range results {
		records[r.index] = r.record
		errs[r.index] = r.err
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}
