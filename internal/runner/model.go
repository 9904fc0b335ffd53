// SPDX-License-Identifier: AGPL-3.0-or-later

package runner

import "time"

type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

// Result is the outcome of one task. The runner fills Task and Duration.
type Result struct {
	Task     string        `json:"task"`
	Status   Status        `json:"status"`
	Note     string        `json:"note,omitempty"`
	Outputs  []string      `json:"outputs,omitempty"` // paths relative to the output dir
	Duration time.Duration `json:"duration_ns"`
}

// Failed reports whether the task did not complete its output.
func (r Result) Failed() bool { return r.Status == StatusFail }

// LastRun summarizes the most recent build.
type LastRun struct {
	Status   string    `json:"status"` // "pass" or "fail"
	Project  string    `json:"project"`
	Output   string    `json:"output"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Tasks    []string  `json:"tasks"`  // task order
	Failed   []string  `json:"failed"` // failed task IDs
}

// NewLastRun builds the summary of results.
func NewLastRun(project, output string, started, finished time.Time, results []Result) LastRun {
	last := LastRun{
		Status:   "pass",
		Project:  project,
		Output:   output,
		Started:  started,
		Finished: finished,
		Tasks:    []string{},
		Failed:   []string{},
	}
	for _, res := range results {
		last.Tasks = append(last.Tasks, res.Task)
		if res.Failed() {
			last.Failed = append(last.Failed, res.Task)
			last.Status = "fail"
		}
	}
	return last
}
