package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-matcher/internal/filter"
	"github.com/jonathan/talent-matcher/internal/pipeline"
	"github.com/jonathan/talent-matcher/internal/ranking"
)

var (
	candidatesFile = filepath.Join("..", "..", "internal", "dataset", "testdata", "candidates.json")
	jobsFile       = filepath.Join("..", "..", "internal", "dataset", "testdata", "jobs.json")
	judgmentsFile  = filepath.Join("..", "..", "internal", "dataset", "testdata", "judgments.json")
)

// run executes the CLI in-process and returns what it wrote to stdout
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("MATCHER_GEMINI_API_KEY", "")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func rankIDs(t *testing.T, out string) []string {
	t.Helper()
	var res ranking.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	ids := make([]string, len(res.Matches))
	for i, m := range res.Matches {
		ids[i] = m.ID
	}
	return ids
}

func TestRankCandidatesCommand(t *testing.T) {
	out, err := run(t, "", "rank-candidates", "--job", jobsFile, "--job-id", "job-001", "--candidates", candidatesFile)
	require.NoError(t, err)
	assert.Contains(t, out, "TOP CANDIDATES FOR job-001")
	assert.Contains(t, out, "cand-001")
	assert.Contains(t, out, "EXCLUDED FROM RANKING")

	out, err = run(t, "", "rank-candidates", "-o", "json", "--job", jobsFile, "--job-id", "job-001", "--candidates", candidatesFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"cand-001", "cand-002"}, rankIDs(t, out))
}

func TestRankCandidatesCommand_Flags(t *testing.T) {
	out, err := run(t, "", "rank-candidates", "-o", "json", "--job", jobsFile, "--job-id", "job-001", "--candidates", candidatesFile, "--top-k", "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"cand-001"}, rankIDs(t, out))

	out, err = run(t, "", "rank-candidates", "-o", "json", "--job", jobsFile, "--job-id", "job-001", "--candidates", candidatesFile, "--no-filter")
	require.NoError(t, err)
	assert.Len(t, rankIDs(t, out), 3)
}

func TestRankCandidatesCommand_ConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "matcher.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("ranking:\n  top_k: 1\n"), 0o600))

	out, err := run(t, "", "--config", cfgPath, "rank-candidates", "-o", "json", "--job", jobsFile, "--job-id", "job-001", "--candidates", candidatesFile)
	require.NoError(t, err)
	assert.Len(t, rankIDs(t, out), 1)
}

func TestRankJobsCommand(t *testing.T) {
	out, err := run(t, "", "rank-jobs", "-o", "json", "--candidate", candidatesFile, "--candidate-id", "cand-002", "--jobs", jobsFile, "--explain")
	require.NoError(t, err)

	var res ranking.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, ranking.DirectionJobs, res.Direction)
	require.Len(t, res.Matches, 2)
	for _, m := range res.Matches {
		assert.NotNil(t, m.Explanation)
	}
}

func TestExplainCommand(t *testing.T) {
	out, err := run(t, "", "explain", "-o", "json", "--candidate", candidatesFile, "--candidate-id", "cand-003", "--job", jobsFile, "--job-id", "job-001")
	require.NoError(t, err)

	var res struct {
		Filter      filter.Decision `json:"filter"`
		Explanation struct {
			CandidateID string `json:"candidate_id"`
		} `json:"explanation"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Filter.Filtered)
	assert.Equal(t, filter.ReasonMandatoryLanguage, res.Filter.Reason)
	assert.Equal(t, "cand-003", res.Explanation.CandidateID)

	out, err = run(t, "", "explain", "--candidate", candidatesFile, "--candidate-id", "cand-001", "--job", jobsFile, "--job-id", "job-001")
	require.NoError(t, err)
	assert.Contains(t, out, "PASSES HARD FILTER")
	assert.Contains(t, out, "cand-001 × job-001")
}

func TestFeaturesCommand(t *testing.T) {
	out, err := run(t, "", "features", "-o", "json", "--candidate", candidatesFile, "--candidate-id", "cand-001", "--job", jobsFile, "--job-id", "job-001")
	require.NoError(t, err)

	var v map[string]*float64
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.NotEmpty(t, v)

	out, err = run(t, "", "features", "--candidate", candidatesFile, "--candidate-id", "cand-001", "--job", jobsFile, "--job-id", "job-001")
	require.NoError(t, err)
	assert.Contains(t, out, "FEATURES cand-001 × job-001")
}

func TestEvaluateCommand(t *testing.T) {
	out, err := run(t, "", "evaluate", "-o", "json", "--jobs", jobsFile, "--candidates", candidatesFile, "--judgments", judgmentsFile, "-k", "3")
	require.NoError(t, err)

	var report pipeline.EvaluationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 3, report.K)
	assert.Len(t, report.Queries, 2)
	assert.Greater(t, report.MeanNDCG, 0.0)
	assert.LessOrEqual(t, report.MeanNDCG, 1.0)
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing required flag", args: []string{"rank-candidates", "--job", jobsFile}, wantErr: "candidates"},
		{name: "unknown output", args: []string{"rank-jobs", "-o", "xml", "--candidate", candidatesFile, "--jobs", jobsFile}, wantErr: "--output"},
		{name: "ambiguous pool entry", args: []string{"explain", "--candidate", candidatesFile, "--job", jobsFile, "--job-id", "job-001"}, wantErr: candidatesFile},
		{name: "unknown id", args: []string{"rank-candidates", "--job", jobsFile, "--job-id", "job-999", "--candidates", candidatesFile}, wantErr: "job-999"},
		{name: "missing file", args: []string{"evaluate", "--jobs", "nope.json", "--candidates", candidatesFile, "--judgments", judgmentsFile}, wantErr: "nope.json"},
		{name: "invalid config", args: []string{"rank-candidates", "--job", jobsFile, "--job-id", "job-001", "--candidates", candidatesFile, "--vocab", "missing-vocab.yaml"}, wantErr: "vocabulary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseJobCommand_RequiresLLM(t *testing.T) {
	_, err := run(t, "Senior Go engineer in Berlin", "parse-job")
	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrNoLLM)
}
