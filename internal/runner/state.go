// SPDX-License-Identifier: AGPL-3.0-or-later

package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bartekus/projreport/internal/projection"
)

// StateDir is the run-state directory inside the output tree.
const StateDir = "run"

// StateStore persists build results as JSON under a base directory.
type StateStore struct {
	baseDir string
}

func NewStateStore(baseDir string) *StateStore {
	return &StateStore{baseDir: baseDir}
}

func (s *StateStore) lastRunPath() string {
	return filepath.Join(s.baseDir, "last-run.json")
}

func (s *StateStore) taskPath(id string) string {
	return filepath.Join(s.baseDir, "tasks", id+".json")
}

// ReadLastRun returns nil, nil when no build has been recorded.
func (s *StateStore) ReadLastRun() (*LastRun, error) {
	var last LastRun
	found, err := readJSON(s.lastRunPath(), &last)
	if err != nil || !found {
		return nil, err
	}
	return &last, nil
}

// ReadTask returns nil, nil when the task has no recorded result.
func (s *StateStore) ReadTask(id string) (*Result, error) {
	var res Result
	found, err := readJSON(s.taskPath(id), &res)
	if err != nil || !found {
		return nil, err
	}
	return &res, nil
}

func (s *StateStore) WriteLastRun(last LastRun) error {
	return writeJSON(s.lastRunPath(), last)
}

func (s *StateStore) WriteTaskResult(res Result) error {
	return writeJSON(s.taskPath(res.Task), res)
}

// WriteRun records every result and then the summary.
func (s *StateStore) WriteRun(last LastRun, results []Result) error {
	for _, res := range results {
		if err := s.WriteTaskResult(res); err != nil {
			return fmt.Errorf("writing result for %s: %w", res.Task, err)
		}
	}
	if err := s.WriteLastRun(last); err != nil {
		return fmt.Errorf("writing last run: %w", err)
	}
	return nil
}

func readJSON(path string, v any) (bool, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return false, nil // Not found is clean state
	}
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return projection.AtomicWrite(path, append(data, '\n'))
}
