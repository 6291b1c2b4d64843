// Package msm implements the windowed parallel Pippenger multi-scalar
// multiplication engine (spec §4.5, component C5): R = Σ sᵢ·Pᵢ over a
// thread pool of bucketed projective accumulators. Grounded on the
// reference ffiasm/rapidsnark ParallelMultiexp algorithm: per-chunk bucket
// accumulation, thread-local pack, and recursive prefix-sum bucket
// reduction.
package msm

import (
	"math/bits"

	"golang.org/x/exp/constraints"

	"github.com/nume-crypto/zk-prover/internal/curve"
	"github.com/nume-crypto/zk-prover/internal/parallel"
)

// clamp bounds v to [lo, hi], generic over any integer type; used by the
// bucket-width computation in clampBitsPerChunk.
func clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// log2Ceil returns ceil(log2(x)) for x >= 1, generic over integer types.
// bits.Len(x-1) gives the same result for unsigned x; this wraps it so
// callers can pass a plain int without an explicit conversion at each
// call site.
func log2Ceil[T constraints.Integer](x T) int {
	if x < 1 {
		x = 1
	}
	return bits.Len(uint(x - 1))
}

// clampBitsPerChunk implements bits_per_chunk = clamp(ceil(log2(n/2)), 2, 16).
func clampBitsPerChunk(n int) int {
	half := clamp(n/2, 1, n)
	return clamp(log2Ceil(half), 2, 16)
}

// Run computes Σ scalars[i]·bases[i] (spec §4.5, C5). scalars[i] is the
// little-endian byte encoding of sᵢ, scalarBits wide; nThreads overrides the
// worker count used for bucket accumulation (0 selects parallel.NumCPU()).
// Bases equal to the group identity are silently skipped (edge case in
// §4.5). cache may be nil; when non-nil, a previously Observe-d
// bits_per_chunk for this (n, nThreads) shape is reused instead of
// recomputing the clamp, and a freshly computed one is recorded for later
// runs.
func Run[T any, PT curve.FieldOps[T]](
	bases []curve.Affine[T, PT],
	scalars [][]byte,
	scalarBits int,
	nThreads int,
	cache *TuningCache,
) curve.Point[T, PT] {
	n := len(bases)

	var zero curve.Point[T, PT]
	zero.SetInfinity()
	if n == 0 {
		return zero
	}
	if n == 1 {
		return curve.ScalarMulAffine[T, PT](bases[0], scalars[0])
	}

	if nThreads < 1 {
		nThreads = parallel.NumCPU()
	}

	var bitsPerChunk int
	if cache != nil {
		if cached, ok := cache.Lookup(n, nThreads); ok {
			bitsPerChunk = cached
		} else {
			bitsPerChunk = clampBitsPerChunk(n)
			cache.Observe(n, nThreads, bitsPerChunk)
		}
	} else {
		bitsPerChunk = clampBitsPerChunk(n)
	}
	accsPerChunk := 1 << uint(bitsPerChunk)
	nChunks := (scalarBits-1)/bitsPerChunk + 1

	chunkResults := make([]curve.Point[T, PT], nChunks)

	for c := 0; c < nChunks; c++ {
		chunkResults[c] = processChunk(bases, scalars, bitsPerChunk, c, accsPerChunk, nThreads)
	}

	r := chunkResults[nChunks-1]
	for j := nChunks - 2; j >= 0; j-- {
		for k := 0; k < bitsPerChunk; k++ {
			r.Double(r)
		}
		r.Add(r, chunkResults[j])
	}
	return r
}

// chunkWindow extracts the bitsPerChunk-bit window of scalar s starting at
// bit chunkIdx*bitsPerChunk.
func chunkWindow(s []byte, bitsPerChunk, chunkIdx int) uint64 {
	bitStart := chunkIdx * bitsPerChunk
	scalarBits := len(s) * 8

	var v uint64
	for k := 0; k < bitsPerChunk; k++ {
		bit := bitStart + k
		if bit >= scalarBits {
			break
		}
		byteIdx := bit / 8
		bitIdx := uint(bit % 8)
		if (s[byteIdx]>>bitIdx)&1 == 1 {
			v |= 1 << uint(k)
		}
	}
	return v
}

// processChunk runs steps 1-4 of §4.5's per-chunk algorithm: zero
// accumulators, scatter bases into thread-local buckets, fold thread-local
// buckets into thread 0's slab, then reduce the bucket vector by prefix sum.
func processChunk[T any, PT curve.FieldOps[T]](
	bases []curve.Affine[T, PT],
	scalars [][]byte,
	bitsPerChunk, chunkIdx, accsPerChunk, nThreads int,
) curve.Point[T, PT] {
	n := len(bases)

	// accs[thread*accsPerChunk + bucket]
	accs := make([]curve.Point[T, PT], nThreads*accsPerChunk)
	for i := range accs {
		accs[i].SetInfinity()
	}

	err := parallel.ChunksIndexed(n, nThreads, func(taskIdx, start, end int) error {
		base := taskIdx * accsPerChunk
		for i := start; i < end; i++ {
			if bases[i].IsInfinity() {
				continue
			}
			v := chunkWindow(scalars[i], bitsPerChunk, chunkIdx)
			if v == 0 {
				continue
			}
			accs[base+int(v)].AddMixed(accs[base+int(v)], bases[i])
		}
		return nil
	})
	if err != nil {
		// a worker panicked; re-raise so the caller's recovery sees it.
		panic(err)
	}

	// pack: fold every other thread's bucket slab into thread 0's.
	for bucket := 1; bucket < accsPerChunk; bucket++ {
		for t := 1; t < nThreads; t++ {
			idx := t*accsPerChunk + bucket
			if !accs[idx].IsInfinity() {
				accs[bucket].Add(accs[bucket], accs[idx])
			}
		}
	}

	return reduceBuckets(accs[:accsPerChunk], bitsPerChunk)
}

// reduceBuckets folds an accsPerChunk-sized bucket vector (accs[0] unused,
// accs[v] holds the sum of bases assigned digit v) into Σ v·accs[v] via the
// recursive prefix-sum scheme of §4.5 step 4: the upper half is added into
// the lower half while accumulating an auxiliary running sum, which is then
// shifted by (nBits-1) doublings and combined with the recursive result on
// the smaller half.
func reduceBuckets[T any, PT curve.FieldOps[T]](accs []curve.Point[T, PT], nBits int) curve.Point[T, PT] {
	if nBits == 1 {
		return accs[1]
	}

	half := 1 << uint(nBits-1)

	var sum curve.Point[T, PT]
	sum.SetInfinity()
	for i := 1; i < half; i++ {
		if !accs[half+i].IsInfinity() {
			accs[i].Add(accs[i], accs[half+i])
			sum.Add(sum, accs[half+i])
		}
	}
	accs[half].Add(accs[half], sum)

	lower := reduceBuckets(accs[:half], nBits-1)

	for k := 0; k < nBits-1; k++ {
		accs[half].Double(accs[half])
	}

	var result curve.Point[T, PT]
	result.Add(lower, accs[half])
	return result
}
