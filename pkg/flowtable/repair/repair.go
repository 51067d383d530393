// Package repair patches a serialized bot artifact using the compiler's
// structured error feedback. The whole point of the engine is the
// minimal-diff guarantee: a generative fix step only ever sees (and may only
// ever change) the rows that are actually broken, and every untouched row of
// the original artifact is carried through byte for byte.
package repair

import (
	"context"
	"errors"
	"log"
	"strings"

	"ai-botbuilder-be/pkg/flowtable"
	"ai-botbuilder-be/pkg/llm/extract"
)

// contextMarker prefixes neighbor rows included for context only. The fix
// step is instructed to leave marked rows alone, and the splice ignores them
// even if it does not.
const contextMarker = "# "

// Generator is the slice of the request orchestrator the engine needs.
type Generator interface {
	Call(ctx context.Context, prompt, systemInstructions string) (string, error)
}

// Result is what a repair attempt produced. StillBroken lists the original
// error descriptions the attempt could not resolve; when it is non-empty and
// FixesApplied is empty, Artifact is the unmodified input.
type Result struct {
	Artifact     string   `json:"artifact"`
	FixesApplied []string `json:"fixesApplied"`
	StillBroken  []string `json:"stillBroken"`
	// RowMode reports whether the attempt ran row-level or whole-artifact.
	RowMode bool `json:"-"`
}

type Engine struct {
	gen    Generator
	logger *log.Logger
}

func NewEngine(gen Generator, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{gen: gen, logger: logger}
}

// Repair runs one repair attempt against the artifact.
//
// Strategy: when at most half the data rows are broken, only the broken rows
// (plus their immediate neighbors as read-only context) are sent to the fix
// step; otherwise the damage is too widespread for row context to mean
// anything and the whole artifact goes. Either way, the result is rebuilt by
// splicing fixed rows into the original row order, so row count and order
// are invariant and untouched rows are preserved verbatim.
//
// A terminal generation failure (rate limit, auth, exhausted tiers)
// propagates as an error. An uninterpretable fix response is not an error:
// the engine returns the original artifact with StillBroken populated; it
// must never hand back a corrupted partial artifact.
func (e *Engine) Repair(ctx context.Context, artifact string, errs []ValidationError) (*Result, error) {
	// Repair is a no-op on an already-valid artifact.
	if len(errs) == 0 {
		return &Result{Artifact: artifact}, nil
	}

	rows := flowtable.SplitRows(artifact)
	if len(rows) == 0 {
		return nil, errors.New("empty artifact")
	}
	header := rows[0]
	dataRows := rows[1:]

	broken := brokenSet(errs)
	rowIndex := indexRows(dataRows)

	var prompt string
	rowMode := 2*len(broken) <= countDataRows(dataRows)
	if rowMode {
		prompt = e.buildRowPrompt(header, dataRows, rowIndex, broken, errs)
	} else {
		prompt = e.buildWholePrompt(artifact, errs)
	}

	response, err := e.gen.Call(ctx, prompt, repairSystemPrompt)
	if err != nil {
		return nil, err
	}

	fixed, err := parseFixedRows(response)
	if err != nil {
		e.logger.Printf("[repair] fix response unusable (%v), returning original artifact", err)
		return &Result{
			Artifact:    artifact,
			StillBroken: describeAll(errs),
			RowMode:     rowMode,
		}, nil
	}

	// Splice: walk the original order; only rows that are both broken and
	// present in the fix map may change.
	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')

	replaced := 0
	preserved := 0
	replacedNums := make(map[int]bool)
	for _, row := range dataRows {
		num, ok := flowtable.RowNum(row)
		if ok && broken[num] {
			if fixedRow, has := fixed[num]; has {
				b.WriteString(fixedRow)
				b.WriteByte('\n')
				replaced++
				replacedNums[num] = true
				continue
			}
		}
		b.WriteString(row)
		b.WriteByte('\n')
		preserved++
	}

	e.logger.Printf("[repair] mode=%s rows_replaced=%d rows_preserved=%d", modeName(rowMode), replaced, preserved)

	result := &Result{Artifact: b.String(), RowMode: rowMode}
	for _, ve := range errs {
		if replacedNums[ve.TargetNodeID] {
			result.FixesApplied = append(result.FixesApplied, ve.Describe())
		} else {
			result.StillBroken = append(result.StillBroken, ve.Describe())
		}
	}
	return result, nil
}

func brokenSet(errs []ValidationError) map[int]bool {
	set := make(map[int]bool, len(errs))
	for _, ve := range errs {
		if ve.TargetNodeID > 0 {
			set[ve.TargetNodeID] = true
		}
	}
	return set
}

func indexRows(dataRows []string) map[int]int {
	index := make(map[int]int, len(dataRows))
	for i, row := range dataRows {
		if num, ok := flowtable.RowNum(row); ok {
			index[num] = i
		}
	}
	return index
}

func countDataRows(dataRows []string) int {
	n := 0
	for _, row := range dataRows {
		if flowtable.IsDataRow(row) {
			n++
		}
	}
	return n
}

// buildRowPrompt assembles the minimal sub-table: header, every broken row,
// and each broken row's immediate neighbors marked as read-only context.
func (e *Engine) buildRowPrompt(header string, dataRows []string, rowIndex map[int]int, broken map[int]bool, errs []ValidationError) string {
	include := make(map[int]string, len(broken)*3) // row position -> "" (fix) or marker
	for num := range broken {
		pos, ok := rowIndex[num]
		if !ok {
			continue
		}
		include[pos] = ""
		if pos > 0 {
			if _, already := include[pos-1]; !already {
				include[pos-1] = contextMarker
			}
		}
		if pos+1 < len(dataRows) {
			if _, already := include[pos+1]; !already {
				include[pos+1] = contextMarker
			}
		}
	}

	var table strings.Builder
	table.WriteString(header)
	table.WriteByte('\n')
	for pos, row := range dataRows {
		marker, ok := include[pos]
		if !ok {
			continue
		}
		table.WriteString(marker)
		table.WriteString(row)
		table.WriteByte('\n')
	}

	var b strings.Builder
	b.WriteString("The compiler rejected some rows of a bot definition table. Fix only the broken rows.\n\n")
	b.WriteString("Errors:\n")
	for _, ve := range errs {
		b.WriteString(ve.Describe())
		b.WriteByte('\n')
	}
	b.WriteString("\nRows starting with \"# \" are read-only context. Do not change or return them.\n")
	b.WriteString("Return the header line followed by the corrected broken rows only.\n\n")
	b.WriteString(table.String())
	return b.String()
}

func (e *Engine) buildWholePrompt(artifact string, errs []ValidationError) string {
	var b strings.Builder
	b.WriteString("The compiler rejected this bot definition table. Fix every listed error.\n\n")
	b.WriteString("Errors:\n")
	for _, ve := range errs {
		b.WriteString(ve.Describe())
		b.WriteByte('\n')
	}
	b.WriteString("\nReturn the full corrected table, header included, same rows in the same order.\n\n")
	b.WriteString(artifact)
	return b.String()
}

// parseFixedRows pulls the returned table out of the fix response and keys
// its data rows by node number. Context-marked rows are dropped.
func parseFixedRows(response string) (map[int]string, error) {
	table, err := extract.Table(response, flowtable.HeaderPrefix)
	if err != nil {
		return nil, err
	}

	fixed := make(map[int]string)
	for i, row := range flowtable.SplitRows(table) {
		if i == 0 {
			continue // header
		}
		if strings.HasPrefix(row, contextMarker) || strings.TrimSpace(row) == "" {
			continue
		}
		num, ok := flowtable.RowNum(row)
		if !ok {
			continue
		}
		fixed[num] = row
	}
	if len(fixed) == 0 {
		return nil, errors.New("fix response contained no usable rows")
	}
	return fixed, nil
}

func describeAll(errs []ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, ve := range errs {
		out = append(out, ve.Describe())
	}
	return out
}

func modeName(rowMode bool) string {
	if rowMode {
		return "row-level"
	}
	return "whole-artifact"
}

// Sessions are ephemeral: one Repair call is one attempt. Callers that loop
// re-validate between attempts and pass the fresh error list back in.
const repairSystemPrompt = "You repair rows of a fixed 26-column comma-separated bot definition table. " +
	"Preserve node numbers and column positions exactly. Never add, remove, or reorder rows. " +
	"Output the table only, no commentary."
