package storage

import (
	"testing"
	"time"
)

func TestRecencyScore(t *testing.T) {
	r := DefaultRankParams()

	fresh := r.RecencyScore(0)
	if fresh != 1.0 {
		t.Errorf("zero age should score 1.0, got %f", fresh)
	}

	halfLife := r.RecencyScore(time.Duration(r.HalfLifeDays) * 24 * time.Hour)
	if halfLife < 0.499 || halfLife > 0.501 {
		t.Errorf("half-life age should score 0.5, got %f", halfLife)
	}

	old := r.RecencyScore(365 * 24 * time.Hour)
	if old <= 0 || old >= halfLife {
		t.Errorf("older content must score lower but stay positive, got %f", old)
	}

	// Clock skew can produce slightly negative ages.
	if got := r.RecencyScore(-time.Hour); got != 1.0 {
		t.Errorf("negative age should clamp to 1.0, got %f", got)
	}
}

func TestScoreBlend(t *testing.T) {
	r := DefaultRankParams()

	perfect := r.Score(1.0, 0)
	if perfect < 0.999 || perfect > 1.001 {
		t.Errorf("perfect relevance and zero age should score 1.0, got %f", perfect)
	}

	// Relevance dominates recency at default weights.
	relevant := r.Score(1.0, 365*24*time.Hour)
	recent := r.Score(0.1, 0)
	if relevant <= recent {
		t.Errorf("strong match on old content (%f) should outrank weak match on new (%f)", relevant, recent)
	}

	newer := r.Score(0.5, 24*time.Hour)
	older := r.Score(0.5, 60*24*time.Hour)
	if newer <= older {
		t.Errorf("equal relevance must tie-break on recency: %f vs %f", newer, older)
	}
}
