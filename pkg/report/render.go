// Package report renders histograms and summaries for the plotting side
// and stores analysis runs for later retrieval.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/zhengshuai-xiao/chunkshare/internal"
	"github.com/zhengshuai-xiao/chunkshare/pkg/histogram"
)

const (
	FormatText = "text"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// axis labels per histogram kind
var axisLabel = map[histogram.Kind]string{
	histogram.KindSharing:   "clients",
	histogram.KindFrequency: "occurrences",
}

// WriteHistogram renders h as a table, k,count CSV rows or a JSON document.
func WriteHistogram(w io.Writer, h *histogram.Histogram, format string) error {
	switch format {
	case FormatText:
		return writeHistogramText(w, h)
	case FormatCSV:
		return writeHistogramCSV(w, h)
	case FormatJSON:
		return writeJSON(w, h)
	default:
		return fmt.Errorf("%w: %q", internal.ErrUnknownFormat, format)
	}
}

func writeHistogramText(w io.Writer, h *histogram.Histogram) error {
	total := h.Total()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\tchunks\tshare\t\n", axisLabel[h.Kind])
	for _, b := range h.Bins {
		share := 0.0
		if total > 0 {
			share = 100 * float64(b.Count) / float64(total)
		}
		fmt.Fprintf(tw, "%d\t%s\t%.2f%%\t\n", b.K, humanize.Comma(int64(b.Count)), share)
	}
	fmt.Fprintf(tw, "total\t%s\t\t\n", humanize.Comma(int64(total)))
	if err := tw.Flush(); err != nil {
		return err
	}
	if h.Kind == histogram.KindSharing {
		_, err := fmt.Fprintf(w, "%d manifests\n", h.Manifests)
		return err
	}
	return nil
}

func writeHistogramCSV(w io.Writer, h *histogram.Histogram) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"k", "count"}); err != nil {
		return err
	}
	for _, b := range h.Bins {
		if err := cw.Write([]string{strconv.FormatUint(b.K, 10), strconv.Itoa(b.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary renders the dedup summary.
func WriteSummary(w io.Writer, s histogram.Summary, format string) error {
	switch format {
	case FormatText:
		var sb strings.Builder
		fmt.Fprintf(&sb, "Manifests read:          %d\n", s.Manifests)
		fmt.Fprintf(&sb, "Records read:            %s\n", humanize.Comma(int64(s.Records)))
		fmt.Fprintf(&sb, "Distinct chunks:         %s\n", humanize.Comma(int64(s.DistinctChunks)))
		fmt.Fprintf(&sb, "Chunks held by 1 client: %s (%s)\n", humanize.Comma(int64(s.UniqueChunks)), humanize.IBytes(s.UniqueBytes))
		fmt.Fprintf(&sb, "Bytes without dedup:     %s (%d)\n", humanize.IBytes(s.LogicalBytes), s.LogicalBytes)
		fmt.Fprintf(&sb, "Bytes with dedup:        %s (%d)\n", humanize.IBytes(s.PhysicalBytes), s.PhysicalBytes)
		fmt.Fprintf(&sb, "Dedup ratio:             %.4f\n", s.DedupRatio)
		_, err := io.WriteString(w, sb.String())
		return err
	case FormatCSV:
		cw := csv.NewWriter(w)
		for _, row := range summaryFields(s) {
			if err := cw.Write(row[:]); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case FormatJSON:
		return writeJSON(w, s)
	default:
		return fmt.Errorf("%w: %q", internal.ErrUnknownFormat, format)
	}
}

// summaryFields flattens a summary into name/value pairs, shared by the
// CSV renderer and the redis store.
func summaryFields(s histogram.Summary) [][2]string {
	return [][2]string{
		{"manifests", strconv.Itoa(s.Manifests)},
		{"records", strconv.FormatUint(s.Records, 10)},
		{"distinct_chunks", strconv.Itoa(s.DistinctChunks)},
		{"unique_chunks", strconv.Itoa(s.UniqueChunks)},
		{"unique_bytes", strconv.FormatUint(s.UniqueBytes, 10)},
		{"logical_bytes", strconv.FormatUint(s.LogicalBytes, 10)},
		{"physical_bytes", strconv.FormatUint(s.PhysicalBytes, 10)},
		{"dedup_ratio", strconv.FormatFloat(s.DedupRatio, 'f', 4, 64)},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
