package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonassist/internal/analyzer"
	"github.com/mcncl/jsonassist/internal/models"
	"github.com/mcncl/jsonassist/internal/parser"
	"github.com/mcncl/jsonassist/internal/pathtree"
)

func collapse(t *testing.T, docs ...string) *analyzer.Node {
	t.Helper()
	var set models.SampleSet
	for _, doc := range docs {
		v, err := parser.ParseString(doc)
		require.NoError(t, err)
		set = append(set, v)
	}
	tree, err := pathtree.Build(set)
	require.NoError(t, err)
	root, err := analyzer.New(analyzer.DefaultPolicy()).Analyze(tree)
	require.NoError(t, err)
	return root
}

func decompose(t *testing.T, docs ...string) string {
	t.Helper()
	return NewEmitter(DefaultOptions()).Fragment(collapse(t, docs...))
}

func TestIntegration_Decompose(t *testing.T) {
	tests := []struct {
		name string
		docs []string
		want string
	}{
		{
			name: "loop in root array",
			docs: []string{`[{"dt": 1511978400, "main": {"temp": 3.95}}, {"dt": 1511989200, "main": {"temp": 3.2}}]`},
			want: "for (JsonObject item : doc.as<JsonArray>()) {\n" +
				"\n" +
				"  long dt = item[\"dt\"]; // 1511978400, 1511989200\n" +
				"\n" +
				"  float main_temp = item[\"main\"][\"temp\"]; // 3.95, 3.2\n" +
				"\n" +
				"}\n",
		},
		{
			name: "loop in member array",
			docs: []string{`{"list": [{"dt": 1511978400, "main": {"temp": 3.95}}, {"dt": 1511989200, "main": {"temp": 3.2}}]}`},
			want: "for (JsonObject list_item : doc[\"list\"].as<JsonArray>()) {\n" +
				"\n" +
				"  long list_item_dt = list_item[\"dt\"]; // 1511978400, 1511989200\n" +
				"\n" +
				"  float list_item_main_temp = list_item[\"main\"][\"temp\"]; // 3.95, 3.2\n" +
				"\n" +
				"}\n",
		},
		{
			name: "loop in member object",
			docs: []string{`{"properties": {"batt": {"unit": "%", "name": "battery"}, "tempc": {"unit": "°C", "name": "temperature"}}}`},
			want: "for (JsonPair properties_item : doc[\"properties\"].as<JsonObject>()) {\n" +
				"  const char* properties_item_key = properties_item.key().c_str(); // \"batt\", \"tempc\"\n" +
				"\n" +
				"  const char* properties_item_unit = properties_item.value()[\"unit\"]; // \"%\", \"°C\"\n" +
				"  const char* properties_item_name = properties_item.value()[\"name\"]; // \"battery\", \"temperature\"\n" +
				"\n" +
				"}\n",
		},
		{
			name: "nested loops keep distinct names",
			docs: []string{`[{"data": [{"time": 1}, {"time": 2}]}, {"data": [{"time": 3}, {"time": 4}]}]`},
			want: "for (JsonObject item : doc.as<JsonArray>()) {\n" +
				"\n" +
				"  for (JsonObject data_item : item[\"data\"].as<JsonArray>()) {\n" +
				"\n" +
				"    int data_item_time = data_item[\"time\"]; // 1, 2, 3, 4\n" +
				"\n" +
				"  }\n" +
				"\n" +
				"}\n",
		},
		{
			name: "integers widen to long long",
			docs: []string{`[{"x": 10000}, {"x": 10000000}, {"x": 10000000000}]`},
			want: "for (JsonObject item : doc.as<JsonArray>()) {\n" +
				"\n" +
				"  long long x = item[\"x\"]; // 10000, 10000000, 10000000000\n" +
				"\n" +
				"}\n",
		},
		{
			name: "integer and float",
			docs: []string{`[{"x": 10000}, {"x": 1.4}]`},
			want: "for (JsonObject item : doc.as<JsonArray>()) {\n" +
				"\n" +
				"  float x = item[\"x\"]; // 10000, 1.4\n" +
				"\n" +
				"}\n",
		},
		{
			name: "null and integer",
			docs: []string{`[{"x": null}, {"x": 42}]`},
			want: "for (JsonObject item : doc.as<JsonArray>()) {\n" +
				"\n" +
				"  int x = item[\"x\"]; // 0, 42\n" +
				"\n" +
				"}\n",
		},
		{
			name: "long comment is cut",
			docs: []string{`[
				{"very_long_name": "long value"},
				{"very_long_name": "another long value"},
				{"very_long_name": "yes another long value"},
				{"very_long_name": "some string"}
			]`},
			want: "for (JsonObject item : doc.as<JsonArray>()) {\n" +
				"\n" +
				"  const char* very_long_name = item[\"very_long_name\"]; // \"long value\", \"another long value\", \"yes another ...\n" +
				"\n" +
				"}\n",
		},
		{
			name: "mixed types are flagged",
			docs: []string{`[{"x": 1}, {"x": "a"}]`},
			want: "for (JsonObject item : doc.as<JsonArray>()) {\n" +
				"\n" +
				"  int x = item[\"x\"]; // 1, \"a\" (mixed types)\n" +
				"\n" +
				"}\n",
		},
		{
			name: "discarded kinds are noted",
			docs: []string{`[{"x": {"id": 1}}, {"x": [1]}]`},
			want: "for (JsonObject item : doc.as<JsonArray>()) {\n" +
				"\n" +
				"  int x_id = item[\"x\"][\"id\"]; // 1\n" +
				"\n" +
				"  // item[\"x\"] also observed as array (ignored)\n" +
				"\n" +
				"}\n",
		},
		{
			name: "wide record is aliased",
			docs: []string{`{"coord": {"lat": 1.5, "lon": 2.5, "alt": 3}}`},
			want: "JsonObject coord = doc[\"coord\"];\n" +
				"float coord_lat = coord[\"lat\"]; // 1.5\n" +
				"float coord_lon = coord[\"lon\"]; // 2.5\n" +
				"int coord_alt = coord[\"alt\"]; // 3\n",
		},
		{
			name: "array of arrays",
			docs: []string{`[[1, 2], [3]]`},
			want: "for (JsonArray item : doc.as<JsonArray>()) {\n" +
				"\n" +
				"  for (JsonVariant item_item : item) {\n" +
				"    int item_item_value = item_item; // 1, 2, 3\n" +
				"  }\n" +
				"\n" +
				"}\n",
		},
		{
			name: "array of scalars",
			docs: []string{`[1, 2, 3]`},
			want: "for (JsonVariant item : doc.as<JsonArray>()) {\n" +
				"  int value = item; // 1, 2, 3\n" +
				"}\n",
		},
		{name: "null member", docs: []string{`{"hello": null}`}, want: "// doc[\"hello\"] is null\n"},
		{name: "integer key", docs: []string{`{"123": 1}`}, want: "int root_123 = doc[\"123\"]; // 1\n"},
		{name: "root integer", docs: []string{`42`}, want: "int root = doc.as<int>(); // 42"},
		{name: "root boolean", docs: []string{`true`}, want: "bool root = doc.as<bool>(); // true"},
		{name: "empty array", docs: []string{`[]`}, want: ""},
		{name: "empty object", docs: []string{`{}`}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decompose(t, tt.docs...))
		})
	}
}

func TestIntegration_ExamplesSpanAllDocuments(t *testing.T) {
	got := decompose(t,
		`{"list": [{"dt": 1}, {"dt": 2}]}`,
		`{"list": [{"dt": 3}]}`,
		`{"list": [{"dt": 4}, {"dt": 5}]}`,
	)
	assert.Contains(t, got, "// 1, 2, 3, 4, 5")
	assert.Equal(t, 1, strings.Count(got, "for ("))
}

func TestIntegration_IsIdempotent(t *testing.T) {
	doc := `{"list": [{"dt": 1, "weather": [{"id": 500, "main": "Rain"}]}], "city": {"name": "Paris", "coord": {"lat": 48.85, "lon": 2.35}}}`
	assert.Equal(t, decompose(t, doc), decompose(t, doc))
}

func TestIntegration_CommentsDisabled(t *testing.T) {
	got := NewEmitter(Options{}).Fragment(collapse(t, `{"a": 1, "b": "x"}`))
	assert.Equal(t, "int a = doc[\"a\"];\nconst char* b = doc[\"b\"];\n", got)
}
