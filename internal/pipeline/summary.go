package pipeline

import (
	"time"

	"dsprep/internal/assemble"
	"dsprep/internal/config"
	"dsprep/internal/dataset"
	"dsprep/internal/materialize"
	"dsprep/internal/split"
)

// PartitionSummary counts the records of one partition.
type PartitionSummary struct {
	Partition string         `json:"partition"`
	Records   int            `json:"records"`
	Datasets  map[string]int `json:"datasets"`
	Classes   map[string]int `json:"classes"`
}

// Summary describes a finished build.
type Summary struct {
	RunID        string             `json:"run_id"`
	TrainingType string             `json:"training_type"`
	Output       string             `json:"output"`
	Seed         uint64             `json:"seed"`
	Sizes        config.SplitSizes  `json:"sizes"`
	Partitions   []PartitionSummary `json:"partitions"`
	Assemble     assemble.Stats     `json:"assemble"`
	Materialize  materialize.Stats  `json:"materialize"`
	Manifest     string             `json:"manifest,omitempty"`
	Warnings     []string           `json:"warnings,omitempty"`
	Duration     time.Duration      `json:"duration"`
}

// Records returns the number of records across all partitions.
func (s Summary) Records() int {
	total := 0
	for _, p := range s.Partitions {
		total += p.Records
	}
	return total
}

// summarizePartitions counts records per dataset and class in every
// partition, in train, validation, test order.
func summarizePartitions(res split.Result) []PartitionSummary {
	out := make([]PartitionSummary, 0, len(dataset.Partitions()))
	for _, p := range dataset.Partitions() {
		records := res.Partition(p)
		ps := PartitionSummary{
			Partition: p.String(),
			Records:   len(records),
			Datasets:  make(map[string]int),
			Classes:   assemble.ClassCounts(records),
		}
		for _, r := range records {
			ps.Datasets[r.Dataset]++
		}
		out = append(out, ps)
	}
	return out
}
