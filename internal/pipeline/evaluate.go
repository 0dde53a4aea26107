package pipeline

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/jonathan/talent-matcher/internal/dataset"
	"github.com/jonathan/talent-matcher/internal/ranking"
	"github.com/jonathan/talent-matcher/internal/types"
)

// QueryResult is the NDCG of one judged job
type QueryResult struct {
	JobID    string  `json:"job_id"`
	NDCG     float64 `json:"ndcg"`
	Labelled int     `json:"labelled"`
	Returned int     `json:"returned"`
	Filtered int     `json:"filtered"`
	Failed   int     `json:"failed"`
}

// EvaluationReport aggregates NDCG@K over every judged job found in the pool
type EvaluationReport struct {
	K        int           `json:"k"`
	MeanNDCG float64       `json:"mean_ndcg"`
	Queries  []QueryResult `json:"queries"`
	// Skipped lists judged jobs missing from the job pool
	Skipped []string `json:"skipped"`
}

// ProgressCallback is called after each evaluated query
type ProgressCallback func(QueryResult)

// Evaluate ranks the whole candidate pool for each judged job and scores the
// ranking against the graded labels. Filtered and failed candidates rank last.
func (r *Recommender) Evaluate(ctx context.Context, jobs []types.JobPosting, candidates []types.Candidate,
	judgments *dataset.Judgments, k int, onProgress ProgressCallback) (*EvaluationReport, error) {
	byID := make(map[string]*types.JobPosting, len(jobs))
	for i := range jobs {
		byID[jobs[i].ID] = &jobs[i]
	}

	opts := r.DefaultOptions()
	opts.TopK = 0
	opts.Explain = false

	report := &EvaluationReport{K: k, Queries: []QueryResult{}, Skipped: []string{}}
	var allRelevances, allScores [][]float64
	for _, q := range judgments.Queries {
		job, ok := byID[q.JobID]
		if !ok {
			r.logger.Warn("judged job not in pool", zap.String("job_id", q.JobID))
			report.Skipped = append(report.Skipped, q.JobID)
			continue
		}

		res, err := r.ranker.RankCandidates(ctx, job, candidates, opts)
		if err != nil {
			return nil, err
		}

		scoreByID := make(map[string]float64, len(res.Matches))
		for _, m := range res.Matches {
			scoreByID[m.ID] = m.Score
		}
		relevances := q.RelevancesFor(candidates)
		scores := make([]float64, len(candidates))
		for i, c := range candidates {
			s, ok := scoreByID[c.ID]
			if !ok {
				s = math.Inf(-1)
			}
			scores[i] = s
		}
		allRelevances = append(allRelevances, relevances)
		allScores = append(allScores, scores)

		qr := QueryResult{
			JobID:    q.JobID,
			NDCG:     ranking.NDCGForScores(relevances, scores, k),
			Labelled: len(q.Relevances),
			Returned: len(res.Matches),
			Filtered: len(res.Filtered),
			Failed:   len(res.Failures),
		}
		report.Queries = append(report.Queries, qr)
		if onProgress != nil {
			onProgress(qr)
		}
	}

	report.MeanNDCG = ranking.MeanNDCGAtK(allRelevances, allScores, k)
	r.logger.Info("evaluation complete",
		zap.Int("k", k),
		zap.Int("queries", len(report.Queries)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Float64("mean_ndcg", report.MeanNDCG))
	return report, nil
}
