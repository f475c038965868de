/*
NAME
  schedule_test.go

DESCRIPTION
  schedule_test.go tests schedule.go and report.go.

AUTHOR
  pyisle contributors

LICENSE
  Part of pyisle (github.com/floriandotorg/pyisle), an independent
  reimplementation not affiliated with or endorsed by the original
  game's publishers.
*/

package schedule

import (
	"bytes"
	"testing"

	"github.com/floriandotorg/pyisle/model/si"
)

type item struct {
	w float64
}

func (i item) Weight() float64 { return i.w }

func TestWeightHeuristic(t *testing.T) {
	cases := []struct {
		ft       si.FileType
		w, h, fr int
		want     float64
	}{
		{si.FLC, 100, 100, 10, 10},
		{si.SMK, 100, 100, 10, 50},
		{si.WAV, 0, 0, 0, 10},
		{si.STL, 0, 0, 0, 10},
	}
	for _, c := range cases {
		if got := Weight(c.ft, c.w, c.h, c.fr); got != c.want {
			t.Errorf("Weight(%v, %d, %d, %d) = %v, want %v", c.ft, c.w, c.h, c.fr, got, c.want)
		}
	}
}

func TestBalancedChunksDistributesByWeight(t *testing.T) {
	items := []item{{10}, {9}, {8}, {1}, {1}, {1}}
	chunks := BalancedChunks(items, 2)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}

	var total int
	for _, c := range chunks {
		total += len(c)
	}
	if total != len(items) {
		t.Fatalf("chunks hold %d items total, want %d", total, len(items))
	}

	sum := func(c []item) float64 {
		var s float64
		for _, it := range c {
			s += it.Weight()
		}
		return s
	}
	// Greedy LPT: 10 -> c0, 9 -> c1, 8 -> c1 (9 < 10), then each 1 -> c0.
	if sum(chunks[0]) != 13 || sum(chunks[1]) != 17 {
		t.Errorf("chunk totals %.1f / %.1f, want 13.0 / 17.0", sum(chunks[0]), sum(chunks[1]))
	}
}

func TestBalancedChunksEmptyWhenFewerItemsThanN(t *testing.T) {
	items := []item{{5}}
	chunks := BalancedChunks(items, 3)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	nonEmpty := 0
	for _, c := range chunks {
		if len(c) > 0 {
			nonEmpty++
		}
	}
	if nonEmpty != 1 {
		t.Errorf("expected exactly 1 non-empty chunk, got %d", nonEmpty)
	}
}

func TestWriteReportProducesOutput(t *testing.T) {
	chunks := BalancedChunks([]item{{3}, {2}, {1}}, 2)
	var buf bytes.Buffer
	if err := WriteReport(&buf, chunks); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected non-empty report output")
	}
}
