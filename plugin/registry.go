package plugin

import "fmt"

// Sources is a global map of PoseSource plugins.
var Sources = map[string]func() PoseSource{
	"json_landmarks": func() PoseSource {
		return &JSONPoseSource{}
	},
}

func SourceLookup(name string) (PoseSource, error) {
	factory, ok := Sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown pose source: %s", name)
	}
	return factory(), nil
}
