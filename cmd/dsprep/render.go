package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"dsprep/internal/assemble"
	"dsprep/internal/pipeline"
	"dsprep/internal/textutil"
)

func renderBuildSummary(out io.Writer, s pipeline.Summary) {
	fmt.Fprintf(out, "Run %s (%s, seed %d)\n", s.RunID, s.TrainingType, s.Seed)
	fmt.Fprintf(out, "Output: %s\n", s.Output)
	fmt.Fprintf(out, "Split: train %.2f / validation %.2f / test %.2f\n", s.Sizes.Train, s.Sizes.Validation, s.Sizes.Test)

	fmt.Fprintln(out, renderDatasetStats(out, s.Assemble))
	if len(s.Partitions) > 0 {
		fmt.Fprintln(out, renderPartitions(out, s.Partitions))
		if classes := renderClasses(out, s.Partitions); classes != "" {
			fmt.Fprintln(out, classes)
		}
	}

	m := s.Materialize
	fmt.Fprintf(out, "Wrote %s frames and %s masks (%s, %s converted) in %s\n",
		humanize.Comma(int64(m.Frames)),
		humanize.Comma(int64(m.Masks)),
		humanize.Bytes(uint64(m.Bytes)),
		humanize.Comma(int64(m.Converted)),
		s.Duration.Round(time.Millisecond),
	)
	if s.Manifest != "" {
		fmt.Fprintf(out, "Manifest: %s\n", s.Manifest)
	}
	for _, w := range s.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", w)
	}
}

func renderInspection(out io.Writer, in pipeline.Inspection) {
	fmt.Fprintf(out, "Training type: %s\n", in.TrainingType)
	fmt.Fprintln(out, renderDatasetStats(out, in.Assemble))

	r := in.Assemble.Resolve
	fmt.Fprintf(out, "Resolved %d of %d frames (unmapped tokens %d, conflicting masks %d, rejected empty %d, collapsed negatives %d)\n",
		r.Resolved, r.Frames, r.UnmappedTokens, r.ConflictMasks, r.RejectedEmpty, r.CollapsedBinary)

	if len(in.Classes) > 0 {
		rows := make([][]string, 0, len(in.Classes))
		for _, class := range assemble.SortedClasses(in.Classes) {
			rows = append(rows, []string{textutil.DisplayLabel(class), class, humanize.Comma(int64(in.Classes[class]))})
		}
		fmt.Fprintln(out, renderTable(out,
			[]string{"Label", "Class", "Records"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight},
		))
	}
	if len(in.Partitions) > 0 {
		fmt.Fprintln(out, renderPartitions(out, in.Partitions))
	}
}

func renderDatasetStats(out io.Writer, stats assemble.Stats) string {
	rows := make([][]string, 0, len(stats.Datasets)+1)
	var scanned, kept, dropped int
	for _, d := range stats.Datasets {
		rows = append(rows, []string{d.Dataset, humanize.Comma(int64(d.Scanned)), humanize.Comma(int64(d.Kept)), humanize.Comma(int64(d.Dropped))})
		scanned += d.Scanned
		kept += d.Kept
		dropped += d.Dropped
	}
	rows = append(rows, []string{"total", humanize.Comma(int64(scanned)), humanize.Comma(int64(kept)), humanize.Comma(int64(dropped))})
	return renderTable(out,
		[]string{"Dataset", "Scanned", "Kept", "Dropped"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	)
}

func renderPartitions(out io.Writer, parts []pipeline.PartitionSummary) string {
	datasets := make(map[string]struct{})
	for _, p := range parts {
		for ds := range p.Datasets {
			datasets[ds] = struct{}{}
		}
	}
	names := make([]string, 0, len(datasets))
	for ds := range datasets {
		names = append(names, ds)
	}
	sort.Strings(names)

	headers := append([]string{"Partition", "Records"}, names...)
	aligns := []columnAlignment{alignLeft}
	for range headers[1:] {
		aligns = append(aligns, alignRight)
	}
	rows := make([][]string, 0, len(parts))
	for _, p := range parts {
		row := []string{p.Partition, humanize.Comma(int64(p.Records))}
		for _, ds := range names {
			row = append(row, humanize.Comma(int64(p.Datasets[ds])))
		}
		rows = append(rows, row)
	}
	return renderTable(out, headers, rows, aligns)
}

// renderClasses shows how many records of each class every partition holds.
func renderClasses(out io.Writer, parts []pipeline.PartitionSummary) string {
	totals := make(map[string]int)
	for _, p := range parts {
		for class, n := range p.Classes {
			totals[class] += n
		}
	}
	if len(totals) == 0 {
		return ""
	}

	headers := []string{"Class"}
	aligns := []columnAlignment{alignLeft}
	for _, p := range parts {
		headers = append(headers, p.Partition)
		aligns = append(aligns, alignRight)
	}
	headers = append(headers, "Total")
	aligns = append(aligns, alignRight)

	rows := make([][]string, 0, len(totals))
	for _, class := range assemble.SortedClasses(totals) {
		row := []string{textutil.DisplayLabel(class)}
		for _, p := range parts {
			row = append(row, strconv.Itoa(p.Classes[class]))
		}
		row = append(row, strconv.Itoa(totals[class]))
		rows = append(rows, row)
	}
	return renderTable(out, headers, rows, aligns)
}
