package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hydrolox-0/ff-sih-backup/core/induction"
)

// Formats lists the supported plan export formats.
var Formats = []string{"json", "csv"}

// Write encodes plan to w in the named format.
func Write(w io.Writer, format string, plan induction.Plan) error {
	switch strings.ToLower(format) {
	case "json":
		return WriteJSON(w, plan)
	case "csv":
		return WriteCSV(w, plan)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteJSON writes the induction plan to w in indented JSON.
func WriteJSON(w io.Writer, plan induction.Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

// WriteCSV writes one row per decision, in plan order. Reasons are joined
// with "; ".
func WriteCSV(w io.Writer, plan induction.Plan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"run_id", "trainset_id", "recommended_status", "priority_score", "estimated_service_hours", "reasoning"}); err != nil {
		return err
	}
	for _, d := range plan.Decisions {
		rec := []string{
			plan.RunID,
			d.TrainsetID,
			string(d.RecommendedStatus),
			strconv.FormatFloat(d.PriorityScore, 'f', 4, 64),
			strconv.FormatFloat(d.EstimatedServiceHours, 'f', -1, 64),
			strings.Join(d.Reasoning, "; "),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
