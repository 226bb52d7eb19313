package export

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"framesync/internal/align"
	"framesync/internal/fileutil"
	"framesync/internal/timemap"
)

// PairHeader is the column layout of the pair CSV.
var PairHeader = []string{"tA_sec", "tB_sec", "offset_sec", "offset_frames"}

// PairRows formats pairs as CSV rows. offset_frames is offset_sec*fps; it is
// left empty when fps is not positive.
func PairRows(pairs []align.Pair, fps float64) [][]string {
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		offset := p.Offset()
		frames := ""
		if fps > 0 && !math.IsInf(fps, 0) {
			frames = strconv.FormatFloat(offset*fps, 'f', 3, 64)
		}
		rows = append(rows, []string{
			formatSeconds(p.A),
			formatSeconds(p.B),
			formatSeconds(offset),
			frames,
		})
	}
	return rows
}

// WritePairsCSV renders pairs as CSV with PairHeader.
func WritePairsCSV(w io.Writer, pairs []align.Pair, fps float64) error {
	tw := table.NewWriter()
	header := make(table.Row, len(PairHeader))
	for i, h := range PairHeader {
		header[i] = h
	}
	tw.AppendHeader(header)
	for _, row := range PairRows(pairs, fps) {
		r := make(table.Row, len(row))
		for i, v := range row {
			r[i] = v
		}
		tw.AppendRow(r)
	}
	if _, err := io.WriteString(w, tw.RenderCSV()+"\n"); err != nil {
		return fmt.Errorf("write pairs csv: %w", err)
	}
	return nil
}

// WritePairsFile writes the pair CSV to path.
func WritePairsFile(path string, pairs []align.Pair, fps float64) error {
	var buf bytes.Buffer
	if err := WritePairsCSV(&buf, pairs, fps); err != nil {
		return err
	}
	return fileutil.WriteAtomic(path, buf.Bytes(), 0o644)
}

// WriteMapFile writes m as a JSON array of segments to path.
func WriteMapFile(path string, m timemap.Map) error {
	var buf bytes.Buffer
	if err := timemap.Encode(&buf, m); err != nil {
		return err
	}
	return fileutil.WriteAtomic(path, buf.Bytes(), 0o644)
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
