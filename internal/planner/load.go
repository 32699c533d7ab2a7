package planner

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"darp-dispatch/internal/models"
)

// LoadEdgesCSV populates a GridPlanner from a CSV file with columns
// `from,to,seconds`, adding each row as a directed edge. Callers wanting
// an undirected road segment provide both directions as separate rows,
// matching how a real road-graph importer would represent one-way vs.
// two-way segments.
func LoadEdgesCSV(g *GridPlanner, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open graph edges %s", path)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	for i := 0; ; i++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "read graph edges %s", path)
		}
		if i == 0 {
			continue // header
		}

		from, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return errors.Wrapf(err, "edge row %d: bad from", i)
		}
		to, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return errors.Wrapf(err, "edge row %d: bad to", i)
		}
		seconds, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return errors.Wrapf(err, "edge row %d: bad seconds", i)
		}

		g.AddEdge(models.Location(from), models.Location(to), seconds)
	}

	return nil
}
