// Package list implements the fleetgen points command for browsing extension points.
package list

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/donaldgifford/fleetgen/internal/points"
	tmpl "github.com/donaldgifford/fleetgen/internal/template"
)

// Opts configures the list operation.
type Opts struct {
	// TemplatePath is the skeleton whose slots are counted. Empty means the embedded one.
	TemplatePath string
	// OutputFormat is "table" or "json".
	OutputFormat string
	// Writer is the output destination.
	Writer io.Writer
}

// PointInfo represents an extension point in list output.
type PointInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// Slots is how many times the skeleton references the point.
	Slots int `json:"slots"`
}

// Run lists the registered extension points and their use in the skeleton.
func Run(opts *Opts) error {
	skel, err := loadSkeleton(opts.TemplatePath)
	if err != nil {
		return err
	}

	infos := Collect(points.Default(), skel)

	switch opts.OutputFormat {
	case "json":
		return renderJSON(opts.Writer, infos)
	default:
		return renderTable(opts.Writer, infos)
	}
}

// Collect describes every registered point in registration order.
func Collect(reg *points.Registry, skel *tmpl.Skeleton) []PointInfo {
	slots := make(map[string]int)
	for _, seg := range skel.Segments {
		if seg.IsPoint() {
			slots[seg.Point]++
		}
	}

	registered := reg.Points()
	infos := make([]PointInfo, 0, len(registered))
	for _, p := range registered {
		infos = append(infos, PointInfo{
			Name:        p.Name,
			Description: p.Description,
			Slots:       slots[p.Name],
		})
	}

	return infos
}

func loadSkeleton(path string) (*tmpl.Skeleton, error) {
	if path == "" {
		return tmpl.Default()
	}

	return tmpl.Load(path)
}

func renderTable(w io.Writer, infos []PointInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, "POINT\tSLOTS\tDESCRIPTION"); err != nil {
		return err
	}

	for i := range infos {
		p := &infos[i]
		if _, err := fmt.Fprintf(tw, "%s\t%d\t%s\n", p.Name, p.Slots, p.Description); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func renderJSON(w io.Writer, infos []PointInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(infos)
}
