package segments

import (
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat/sampleuv"
)

// Sampler draws per-species subsets without replacement. Seed it for
// reproducible runs.
type Sampler struct {
	src rand.Source
}

// NewSampler returns a sampler on a random seed.
func NewSampler() *Sampler {
	return &Sampler{src: rand.NewPCG(rand.Uint64(), rand.Uint64())}
}

func NewSeededSampler(seed uint64) *Sampler {
	return &Sampler{src: rand.NewPCG(seed, seed)}
}

// Sample truncates every key of ix with more than limit segments to a uniform
// random subset of exactly limit, keeping their original order. Keys at or
// under the cap are left alone. ix is modified and returned.
func (s *Sampler) Sample(ix Index, limit int) Index {
	limit = max(limit, 0)
	for _, k := range ix.Keys() {
		segs := ix[k]
		if len(segs) <= limit {
			continue
		}
		idx := make([]int, limit)
		if limit > 0 {
			sampleuv.WithoutReplacement(idx, len(segs), s.src)
		}
		slices.Sort(idx)
		kept := make([]Segment, 0, limit)
		for _, i := range idx {
			kept = append(kept, segs[i])
		}
		ix[k] = kept
	}
	return ix
}

// Global is the corpus-wide sampler: drop segments starting at or after
// maxStart (when maxStart > 0), cap each species at limit and number the
// result with sequential row ids.
func (s *Sampler) Global(segs []Segment, maxStart float64, limit int) []Segment {
	kept := make([]Segment, 0, len(segs))
	for _, seg := range segs {
		if maxStart > 0 && seg.Start >= maxStart {
			continue
		}
		kept = append(kept, seg)
	}
	out := s.Sample(BySpecies(kept), limit).Flatten()
	for i := range out {
		out[i].RowID = int64(i)
	}
	return out
}
