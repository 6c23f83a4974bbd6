package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// WriteFootprint writes the raster's extent as a one-feature GeoJSON
// polygon so the processed area can be overlaid on a map.
func WriteFootprint(path string, extent [4]float64, properties map[string]interface{}) error {
	xmin, ymin, xmax, ymax := extent[0], extent[1], extent[2], extent[3]
	ring := orb.Ring{
		{xmin, ymin},
		{xmax, ymin},
		{xmax, ymax},
		{xmin, ymax},
		{xmin, ymin},
	}

	feature := geojson.NewFeature(orb.Polygon{ring})
	for k, v := range properties {
		feature.Properties[k] = v
	}

	fc := geojson.NewFeatureCollection()
	fc.Append(feature)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("footprint: failed to create GeoJSON file: %v", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(fc); err != nil {
		return fmt.Errorf("footprint: failed to encode GeoJSON: %v", err)
	}
	return nil
}
