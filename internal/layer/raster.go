package layer

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Grid is a single-band continuous surface on a regular cell grid in the
// working CRS. Values are stored row-major from the top (north) row, matching
// the geotransform convention of the preparation stage.
type Grid struct {
	Name     string
	NCols    int
	NRows    int
	OriginX  float64 // west edge
	OriginY  float64 // south edge
	CellSize float64
	NoData   float64
	Values   []float64
}

// At returns the value of the cell containing (x, y) using nearest-neighbor
// lookup. ok is false when the point is outside the grid extent or the cell
// holds the nodata value.
func (g *Grid) At(x, y float64) (float64, bool) {
	px := int((x - g.OriginX) / g.CellSize)
	py := int((g.topY() - y) / g.CellSize)
	if px < 0 || px >= g.NCols || py < 0 || py >= g.NRows {
		return 0, false
	}
	v := g.Values[py*g.NCols+px]
	if v == g.NoData {
		return 0, false
	}
	return v, true
}

func (g *Grid) topY() float64 {
	return g.OriginY + float64(g.NRows)*g.CellSize
}

// LoadASCIIGrid reads an ESRI ASCII grid (.asc). The preparation stage
// exports every prepared surface in this format, already mosaicked and
// projected to the working CRS.
func LoadASCIIGrid(path, name string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "layer: open grid %s", path)
	}
	defer func() { _ = f.Close() }()

	g := &Grid{Name: name, NoData: -9999}
	var xCenter, yCenter bool
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 16*1024*1024)

	// Header: key/value lines until the first data row.
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		key := strings.ToLower(fields[0])
		if _, convErr := strconv.ParseFloat(key, 64); convErr == nil {
			// First data row.
			if err := g.validateHeader(); err != nil {
				return nil, err
			}
			// xllcenter/yllcenter locate the center of the lower-left
			// cell; shift to the cell edge the lookup math expects.
			if xCenter {
				g.OriginX -= g.CellSize / 2
			}
			if yCenter {
				g.OriginY -= g.CellSize / 2
			}
			g.Values = make([]float64, 0, g.NCols*g.NRows)
			if err := g.appendRow(fields); err != nil {
				return nil, err
			}
			break
		}
		if len(fields) != 2 {
			return nil, eris.Errorf("layer: grid %s: malformed header line %q", name, line)
		}
		val, convErr := strconv.ParseFloat(fields[1], 64)
		if convErr != nil {
			return nil, eris.Wrapf(convErr, "layer: grid %s: header %s", name, key)
		}
		switch key {
		case "ncols":
			g.NCols = int(val)
		case "nrows":
			g.NRows = int(val)
		case "xllcorner":
			g.OriginX = val
		case "xllcenter":
			g.OriginX = val
			xCenter = true
		case "yllcorner":
			g.OriginY = val
		case "yllcenter":
			g.OriginY = val
			yCenter = true
		case "cellsize":
			g.CellSize = val
		case "nodata_value":
			g.NoData = val
		default:
			return nil, eris.Errorf("layer: grid %s: unknown header key %q", name, key)
		}
	}

	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if err := g.appendRow(fields); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrapf(err, "layer: read grid %s", name)
	}

	if len(g.Values) != g.NCols*g.NRows {
		return nil, eris.Errorf("layer: grid %s: expected %d values, got %d",
			name, g.NCols*g.NRows, len(g.Values))
	}
	return g, nil
}

func (g *Grid) validateHeader() error {
	if g.NCols <= 0 || g.NRows <= 0 || g.CellSize <= 0 {
		return eris.Errorf("layer: grid %s: incomplete header", g.Name)
	}
	return nil
}

func (g *Grid) appendRow(fields []string) error {
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return eris.Wrapf(err, "layer: grid %s: parse value", g.Name)
		}
		g.Values = append(g.Values, v)
	}
	return nil
}
