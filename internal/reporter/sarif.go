package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/eyaltoledano/claude-task-master-sub004/internal/task"
)

const (
	sarifSchema  = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name string `json:"name"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

// ruleFor maps an issue kind to a stable SARIF rule id and severity level.
// Self references are warnings; everything else blocks work and reports as
// an error.
func ruleFor(kind task.IssueKind) (ruleID, level string) {
	switch kind {
	case task.IssueSelf:
		return "self-dependency", "warning"
	case task.IssueMissing:
		return "missing-dependency", "error"
	case task.IssueCircular:
		return "circular-dependency", "error"
	default:
		return string(kind), "note"
	}
}

func buildSARIF(issues []task.Issue, tasksFile string) sarifReport {
	results := make([]sarifResult, 0, len(issues))
	for _, is := range issues {
		ruleID, level := ruleFor(is.Kind)
		sr := sarifResult{
			RuleID:  ruleID,
			Level:   level,
			Message: sarifMessage{Text: is.Message},
		}
		if tasksFile != "" {
			sr.Locations = []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: tasksFile},
				},
			}}
		}
		results = append(results, sr)
	}

	return sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{Name: "taskdeps"},
			},
			Results: results,
		}},
	}
}

// WriteSARIFReport writes validation issues as a SARIF v2.1.0 report, one
// result per issue, with the tasks file as the artifact location.
func WriteSARIFReport(issues []task.Issue, tasksFile, path string) error {
	data, err := json.MarshalIndent(buildSARIF(issues, tasksFile), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sarif: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write sarif: %w", err)
	}

	return nil
}

// EncodeSARIF writes the SARIF report to w, for --format sarif on stdout.
func EncodeSARIF(w io.Writer, issues []task.Issue, tasksFile string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(buildSARIF(issues, tasksFile)); err != nil {
		return fmt.Errorf("encode sarif: %w", err)
	}
	return nil
}
