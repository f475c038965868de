/*
NAME
  schedule.go

DESCRIPTION
  schedule.go partitions a batch of weighted work items across a fixed
  number of workers.

AUTHOR
  pyisle contributors

LICENSE
  Part of pyisle (github.com/floriandotorg/pyisle), an independent
  reimplementation not affiliated with or endorsed by the original
  game's publishers.
*/

// Package schedule partitions a batch of weighted work items across a
// fixed number of workers with a greedy longest-processing-time
// algorithm, reimplemented verbatim per spec.md §9 rather than wired to
// any particular decoder's internals.
package schedule

import "github.com/floriandotorg/pyisle/model/si"

// Weight estimates the decode cost of a file of kind ft with the given
// dimensions and frame count, per spec.md §5: SMK weight =
// w·h·frames/2000, FLC weight = w·h·frames/10000, everything else a flat
// 10. This mirrors model/si.Object.Weight's heuristic for callers that
// know an object's dimensions without its raw bytes (e.g. a manifest
// read ahead of decode).
func Weight(ft si.FileType, w, h, frames int) float64 {
	switch ft {
	case si.FLC:
		return float64(w*h*frames) / 10_000
	case si.SMK:
		return float64(w*h*frames) / 2_000
	default:
		return 10
	}
}

// Weighted is anything BalancedChunks can schedule.
type Weighted interface {
	Weight() float64
}

// BalancedChunks partitions items into n chunks with a greedy
// longest-processing-time heuristic: items are visited in descending
// weight order and each goes to whichever chunk currently has the
// lowest running total. n must be at least 1; fewer items than n yields
// some empty chunks.
func BalancedChunks[T Weighted](items []T, n int) [][]T {
	if n < 1 {
		n = 1
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	// Insertion sort by descending weight: batches here are small enough
	// (hundreds to low thousands of files) that this is simpler than
	// pulling in sort.Slice for a one-off index permutation.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && items[order[j]].Weight() > items[order[j-1]].Weight(); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	chunks := make([][]T, n)
	totals := make([]float64, n)
	for _, i := range order {
		lightest := 0
		for c := 1; c < n; c++ {
			if totals[c] < totals[lightest] {
				lightest = c
			}
		}
		chunks[lightest] = append(chunks[lightest], items[i])
		totals[lightest] += items[i].Weight()
	}

	return chunks
}
