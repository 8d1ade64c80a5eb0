package analyzer

import (
	"strings"

	json "github.com/goccy/go-json"

	"github.com/mcncl/jsonassist/internal/models"
	"github.com/mcncl/jsonassist/internal/pathtree"
)

// EmbeddedJSON lists the paths of string leaves whose examples are
// themselves JSON arrays or objects. Such documents need a second
// deserializeJson call, so the caller should warn about them. Leaves inside
// a map loop are reported once, under the "*" path of the map values.
func EmbeddedJSON(root *Node) []string {
	if root == nil {
		return nil
	}
	var paths []string
	root.Walk(func(n *Node) {
		pn := n.Source
		if n.Shape != ShapeLeaf || pn.Type != pathtree.TypeString {
			return
		}
		for _, ex := range pn.Examples {
			if isJSONDocument(ex) {
				paths = append(paths, pn.Path.String())
				break
			}
		}
	})
	return paths
}

func isJSONDocument(v models.Value) bool {
	if v.Kind() != models.String {
		return false
	}
	s := strings.TrimSpace(v.Text())
	if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
		return false
	}
	return json.Valid([]byte(s))
}
