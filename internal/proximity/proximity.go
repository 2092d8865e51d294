package proximity

import (
	"github.com/rotisserie/eris"

	"github.com/hawaii-osds/mpat-cli/internal/geodesy"
	"github.com/hawaii-osds/mpat-cli/internal/model"
)

// Engine measures distances from analysis points to reference layers.
type Engine struct {
	conv *geodesy.Converter
}

// NewEngine creates a proximity engine over the given converter.
func NewEngine(conv *geodesy.Converter) *Engine {
	return &Engine{conv: conv}
}

// DistanceFt returns the geodesic distance in feet from the analysis point to
// the nearest feature of the indexed layer. A point within or on a polygonal
// feature yields exactly 0: zero denotes containment.
func (e *Engine) DistanceFt(pt model.AnalysisPoint, idx *Index) (float64, error) {
	if idx.containsPoint(pt.X, pt.Y) {
		return 0, nil
	}

	nx, ny, found := idx.nearestPlanar(pt.X, pt.Y)
	if !found {
		return 0, eris.Errorf("proximity: layer %s has no features", idx.layer.Name)
	}
	if nx == pt.X && ny == pt.Y {
		return 0, nil
	}

	d, err := e.conv.DistanceFt(pt.X, pt.Y, nx, ny)
	if err != nil {
		return 0, eris.Wrapf(err, "proximity: distance to %s", idx.layer.Name)
	}
	return d, nil
}
