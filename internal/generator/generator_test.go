package generator

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonassist/internal/models"
	"github.com/mcncl/jsonassist/internal/parser"
)

func TestWriter(t *testing.T) {
	w := NewWriter()
	w.AddEmptyLine()
	w.AddLine("if (error) {")
	w.Indent()
	w.AddLine("return", ";")
	w.Unindent()
	w.AddLine("}")
	w.AddEmptyLine()
	w.AddEmptyLine()
	w.AddLine("done();")

	assert.Equal(t, "if (error) {\n  return;\n}\n\ndone();", w.String())
	assert.Equal(t, 5, w.Len())
}

func TestWriter_AddText(t *testing.T) {
	w := NewWriter()
	w.AddLine("{")
	w.Indent()
	w.AddText("a;\n\n\nb;\n")
	w.Unindent()
	w.AddLine("}")

	assert.Equal(t, "{\n  a;\n\n  b;\n\n}", w.String())
}

func numbers(texts ...string) []models.Value {
	out := make([]models.Value, len(texts))
	for i, s := range texts {
		out[i] = models.NumberValue(s)
	}
	return out
}

func TestNumericType(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{name: "small", values: []string{"0", "42", "-31999"}, want: TypeInt},
		{name: "long", values: []string{"0", "32000"}, want: TypeLong},
		{name: "negative long", values: []string{"-100000"}, want: TypeLong},
		{name: "positive long long", values: []string{"0", "1e4", "2000000000"}, want: TypeLongLong},
		{name: "negative long long", values: []string{"0", "-100000", "-2000000000"}, want: TypeLongLong},
		{name: "exceeds long long", values: []string{"9000000000000000000"}, want: TypeFloat},
		{name: "float", values: []string{"3.95", "3.2"}, want: TypeFloat},
		{name: "long mantissa", values: []string{"3.14159265"}, want: TypeDouble},
		{name: "huge", values: []string{"1e39"}, want: TypeDouble},
		{name: "integer and float", values: []string{"10000", "1.4"}, want: TypeFloat},
		{name: "long long and double", values: []string{"10000000000", "1.23456789"}, want: TypeDouble},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, numericType(numbers(tt.values...)))
		})
	}
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "0", Stringify(TypeLong, models.NullValue()))
	assert.Equal(t, "nullptr", Stringify(TypeString, models.NullValue()))
	assert.Equal(t, "null", Stringify(TypeBool, models.NullValue()))
	assert.Equal(t, `"°C"`, Stringify(TypeString, models.StringValue("°C")))
	assert.Equal(t, "3.20", Stringify(TypeFloat, models.NumberValue("3.20")))
}

func TestTruncate(t *testing.T) {
	got, ok := truncate(`"a", "b"`, 100)
	assert.True(t, ok)
	assert.Equal(t, `"a", "b"`, got)

	got, ok = truncate(`"aaaa", "bbbb", "cccc"`, 10)
	assert.True(t, ok)
	assert.Equal(t, `"aaaa", ...`, got)

	_, ok = truncate(`"aaaaaaaaaaaaaaaa"`, 10)
	assert.False(t, ok)
}

func TestDeclarationLine_WideCharacters(t *testing.T) {
	d := &Declaration{Type: TypeString, Name: "s", Expr: `doc["s"]`, Examples: []string{`"日本"`, `"語"`}}

	fits := NewEmitter(Options{Comments: true, MaxWidth: 37})
	assert.Equal(t, `const char* s = doc["s"]; // "日本", "語"`, fits.declarationLine(d))

	cut := NewEmitter(Options{Comments: true, MaxWidth: 34})
	assert.Equal(t, `const char* s = doc["s"]; // "日本", ...`, cut.declarationLine(d))
}

func TestDeclarationLine_MixedTypesSurviveTruncation(t *testing.T) {
	long := `"` + strings.Repeat("a", 100) + `"`
	code := decompose(t, `{"a": `+long+`}`, `{"a": 1}`)
	assert.Contains(t, code, `const char* a = doc["a"]; // (mixed types)`)

	d := &Declaration{Type: TypeInt, Name: "n", Expr: `doc["n"]`, Examples: []string{"1", `"one"`}, Mixed: true}
	e := NewEmitter(Options{Comments: true, MaxWidth: 30})
	assert.Equal(t, `int n = doc["n"]; // (mixed types)`, e.declarationLine(d))
}

func TestEmit_Statements(t *testing.T) {
	got := NewEmitter(DefaultOptions()).Emit(collapse(t, `{"name": "x", "tags": ["a", "b"], "gone": null}`))

	want := []Statement{
		&Record{Body: []Statement{
			&Declaration{Name: "name", Expr: `doc["name"]`, Type: TypeString, Examples: []string{`"x"`}},
			&LoopBlock{
				Variable:     "tags_item",
				VariableType: "JsonVariant",
				Collection:   `doc["tags"].as<JsonArray>()`,
				Body: []Statement{
					&Declaration{Name: "tags_item_value", Expr: "tags_item", Type: TypeString, Examples: []string{`"a"`, `"b"`}},
				},
			},
			&Declaration{Expr: `doc["gone"]`, Null: true},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Emit() mismatch (-want +got):\n%s", diff)
	}
}

func TestEmit_NilRoot(t *testing.T) {
	assert.Nil(t, NewEmitter(DefaultOptions()).Emit(nil))
}

func compose(t *testing.T, doc, name string) string {
	t.Helper()
	v, err := parser.ParseString(doc)
	require.NoError(t, err)
	w := NewWriter()
	Compose(w, v, name)
	return w.String()
}

func TestCompose(t *testing.T) {
	tests := []struct {
		doc  string
		want string
	}{
		{doc: `null`, want: ""},
		{doc: `[]`, want: "doc.to<JsonArray>();"},
		{doc: `{}`, want: "doc.to<JsonObject>();"},
		{doc: `[42]`, want: "doc[0] = 42;"},
		{doc: `[null]`, want: "doc[0] = nullptr;"},
		{doc: `["hello","world",null]`, want: "doc.add(\"hello\");\ndoc.add(\"world\");\ndoc.add(nullptr);"},
		{doc: `{"answer":42}`, want: `doc["answer"] = 42;`},
		{doc: `{"answer":null}`, want: `doc["answer"] = nullptr;`},
		{doc: `[{"answer":42}]`, want: `doc[0]["answer"] = 42;`},
		{doc: `{"answers":[42]}`, want: `doc["answers"][0] = 42;`},
		{doc: `{"message":{"status":"ok"}}`, want: `doc["message"]["status"] = "ok";`},
		{doc: `42`, want: "doc.set(42);"},
		{
			doc: `[[1,2],[3,4]]`,
			want: "JsonArray doc_0 = doc.add<JsonArray>();\n" +
				"doc_0.add(1);\n" +
				"doc_0.add(2);\n\n" +
				"JsonArray doc_1 = doc.add<JsonArray>();\n" +
				"doc_1.add(3);\n" +
				"doc_1.add(4);",
		},
		{
			doc: `{"A":{"B":{"C":"D"},"E":{"F":"G"}}}`,
			want: "JsonObject A = doc[\"A\"].to<JsonObject>();\n" +
				"A[\"B\"][\"C\"] = \"D\";\n" +
				"A[\"E\"][\"F\"] = \"G\";",
		},
		{
			doc: `[[[42,43],[44,45]]]`,
			want: "JsonArray doc_0 = doc.add<JsonArray>();\n\n" +
				"JsonArray doc_0_0 = doc_0.add<JsonArray>();\n" +
				"doc_0_0.add(42);\n" +
				"doc_0_0.add(43);\n\n" +
				"JsonArray doc_0_1 = doc_0.add<JsonArray>();\n" +
				"doc_0_1.add(44);\n" +
				"doc_0_1.add(45);",
		},
		{
			doc: `{"hello world":[42,43]}`,
			want: "JsonArray hello_world = doc[\"hello world\"].to<JsonArray>();\n" +
				"hello_world.add(42);\n" +
				"hello_world.add(43);",
		},
		{
			doc: `{"list":[{"dt":true,"main":true}]}`,
			want: "JsonObject list_0 = doc[\"list\"].add<JsonObject>();\n" +
				"list_0[\"dt\"] = true;\n" +
				"list_0[\"main\"] = true;",
		},
		{
			doc: `{"data":{"children":[{"data":{"title":true,"ups":true}}]}}`,
			want: "JsonObject data_children_0_data = doc[\"data\"][\"children\"][0][\"data\"].to<JsonObject>();\n" +
				"data_children_0_data[\"title\"] = true;\n" +
				"data_children_0_data[\"ups\"] = true;",
		},
		{doc: `[{"a":1},{"a":2}]`, want: "doc[0][\"a\"] = 1;\ndoc[1][\"a\"] = 2;"},
		{
			doc: `[{"a":1,"b":2},{"a":3,"b":4}]`,
			want: "JsonObject doc_0 = doc.add<JsonObject>();\n" +
				"doc_0[\"a\"] = 1;\n" +
				"doc_0[\"b\"] = 2;\n" +
				"\n" +
				"JsonObject doc_1 = doc.add<JsonObject>();\n" +
				"doc_1[\"a\"] = 3;\n" +
				"doc_1[\"b\"] = 4;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			assert.Equal(t, tt.want, compose(t, tt.doc, "doc"))
		})
	}
}

func TestCompose_FilterDocument(t *testing.T) {
	assert.Equal(t, `filter["a"] = true;`, compose(t, `{"a": true}`, "filter"))
	assert.Equal(t, "JsonObject filter_list_0 = filter[\"list\"].add<JsonObject>();\nfilter_list_0[\"dt\"] = true;\nfilter_list_0[\"main\"] = true;",
		compose(t, `{"list": [{"dt": true, "main": true}]}`, "filter"))
}

func TestMemberVariable(t *testing.T) {
	assert.Equal(t, "answer", memberVariable("doc", "answer"))
	assert.Equal(t, "root_123", memberVariable("doc", "123"))
	assert.Equal(t, "A_B", memberVariable("A", "B"))
	assert.Equal(t, "filter_a", memberVariable("filter", "a"))
	assert.Equal(t, "int_", memberVariable("doc", "int"))
}
