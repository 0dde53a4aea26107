// Package dataset loads candidate pools, job pools and relevance judgments from JSON files.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/talent-matcher/internal/schemas"
	"github.com/jonathan/talent-matcher/internal/types"
)

// Judgments holds graded relevance labels per job, used for NDCG evaluation
type Judgments struct {
	Queries []Query `json:"queries"`
}

// Query is the set of labelled candidates for one job
type Query struct {
	JobID      string             `json:"job_id"`
	Relevances map[string]float64 `json:"relevances"`
}

// LoadCandidates reads a file holding one candidate object or an array of them
func LoadCandidates(path string) ([]types.Candidate, error) {
	var out []types.Candidate
	err := loadPool(path, schemas.Candidate, func(raw json.RawMessage) (string, error) {
		var c types.Candidate
		if err := json.Unmarshal(raw, &c); err != nil {
			return "", err
		}
		if err := c.Validate(); err != nil {
			return "", err
		}
		out = append(out, c)
		return c.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadJobs reads a file holding one job posting object or an array of them
func LoadJobs(path string) ([]types.JobPosting, error) {
	var out []types.JobPosting
	err := loadPool(path, schemas.JobPosting, func(raw json.RawMessage) (string, error) {
		var j types.JobPosting
		if err := json.Unmarshal(raw, &j); err != nil {
			return "", err
		}
		if err := j.Validate(); err != nil {
			return "", err
		}
		out = append(out, j)
		return j.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadCandidate loads a pool and returns the candidate with id.
// An empty id selects the only candidate of a single-entry file.
func LoadCandidate(path, id string) (*types.Candidate, error) {
	pool, err := LoadCandidates(path)
	if err != nil {
		return nil, err
	}
	idx, err := pick(path, len(pool), id, func(i int) string { return pool[i].ID })
	if err != nil {
		return nil, err
	}
	return &pool[idx], nil
}

// LoadJob loads a pool and returns the job with id.
// An empty id selects the only job of a single-entry file.
func LoadJob(path, id string) (*types.JobPosting, error) {
	pool, err := LoadJobs(path)
	if err != nil {
		return nil, err
	}
	idx, err := pick(path, len(pool), id, func(i int) string { return pool[i].ID })
	if err != nil {
		return nil, err
	}
	return &pool[idx], nil
}

// LoadJudgments reads a relevance judgments file
func LoadJudgments(path string) (*Judgments, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err := schemas.Validate(schemas.Judgments, content); err != nil {
		return nil, &LoadError{Path: path, Message: "schema validation failed", Cause: err}
	}

	var j Judgments
	if err := json.Unmarshal(content, &j); err != nil {
		return nil, &LoadError{Path: path, Message: "failed to unmarshal JSON", Cause: err}
	}
	return &j, nil
}

// RelevancesFor returns the graded relevance of each candidate, in pool order.
// Unlabelled candidates get 0.
func (q Query) RelevancesFor(pool []types.Candidate) []float64 {
	out := make([]float64, len(pool))
	for i, c := range pool {
		out[i] = q.Relevances[c.ID]
	}
	return out
}

func readFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to read file", Cause: err}
	}
	return content, nil
}

// loadPool splits the file into items, validates each against schema and
// hands it to decode. Duplicate ids are rejected.
func loadPool(path, schema string, decode func(json.RawMessage) (string, error)) error {
	content, err := readFile(path)
	if err != nil {
		return err
	}

	var items []json.RawMessage
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return &LoadError{Path: path, Message: "failed to unmarshal JSON", Cause: err}
		}
	} else {
		items = []json.RawMessage{trimmed}
	}

	seen := make(map[string]int, len(items))
	for i, raw := range items {
		if err := schemas.Validate(schema, raw); err != nil {
			return &LoadError{Path: path, Message: fmt.Sprintf("item %d: schema validation failed", i), Cause: err}
		}
		id, err := decode(raw)
		if err != nil {
			return &LoadError{Path: path, Message: fmt.Sprintf("item %d: invalid %s", i, schema), Cause: err}
		}
		if prev, ok := seen[id]; ok {
			return &LoadError{Path: path, Message: fmt.Sprintf("item %d: duplicate id %q (first at item %d)", i, id, prev)}
		}
		seen[id] = i
	}
	return nil
}

func pick(path string, n int, id string, idAt func(int) string) (int, error) {
	if id == "" {
		if n != 1 {
			return 0, &LoadError{Path: path, Message: fmt.Sprintf("file holds %d entries; an id is required", n)}
		}
		return 0, nil
	}
	for i := 0; i < n; i++ {
		if idAt(i) == id {
			return i, nil
		}
	}
	return 0, &LoadError{Path: path, Message: fmt.Sprintf("id %q not found", id)}
}
