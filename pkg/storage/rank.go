package storage

import (
	"fmt"
	"time"
)

// RankParams controls the blended relevance/recency score. Scores stay in
// [0,1] as long as RelevanceWeight+RecencyWeight == 1.
type RankParams struct {
	// RelevanceWeight scales textual relevance, RecencyWeight scales the
	// age decay.
	RelevanceWeight float64
	RecencyWeight   float64

	// HalfLifeDays is the age at which the recency score reaches 0.5.
	HalfLifeDays float64
}

// DefaultRankParams matches the shipped configuration defaults.
func DefaultRankParams() RankParams {
	return RankParams{RelevanceWeight: 0.7, RecencyWeight: 0.3, HalfLifeDays: 30}
}

// RecencyScore maps content age to (0,1], monotonically non-increasing in
// age. Negative ages (clock skew) count as zero.
func (r RankParams) RecencyScore(age time.Duration) float64 {
	days := age.Hours() / 24
	if days < 0 {
		days = 0
	}
	return 1 / (1 + days/r.HalfLifeDays)
}

// Score blends a textual relevance value in [0,1] with the recency score.
// It is the Go reference for the SQL expression built by rankSQL; the
// substring fallback path uses it directly with binary textual relevance.
func (r RankParams) Score(textual float64, age time.Duration) float64 {
	return r.RelevanceWeight*textual + r.RecencyWeight*r.RecencyScore(age)
}

// rankSQL builds the SQL equivalent of Score for the FTS path. bm25Expr is a
// bm25(...) call (smaller is better, non-positive for matches); it is mapped
// to [0,1) via -b/(1-b). recencyCol is the timestamp expression for the age
// decay. Callers must append rankArgs() before any other query arguments.
func (r RankParams) rankSQL(bm25Expr, recencyCol string) string {
	return fmt.Sprintf(
		"(? * (-%s / (1.0 - %s)) + ? * (1.0 / (1.0 + (julianday('now') - julianday(%s)) / ?)))",
		bm25Expr, bm25Expr, recencyCol)
}

func (r RankParams) rankArgs() []interface{} {
	return []interface{}{r.RelevanceWeight, r.RecencyWeight, r.HalfLifeDays}
}
