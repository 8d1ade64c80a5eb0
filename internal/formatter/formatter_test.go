package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loop = "for (JsonObject item : doc.as<JsonArray>()) {\n" +
	"\n" +
	"  long dt = item[\"dt\"]; // 1, 2   \n" +
	"\n" +
	"\n" +
	"  for (JsonVariant item_tags_item : item[\"tags\"].as<JsonArray>()) {\n" +
	"    const char* item_tags_item_value = item_tags_item; // \"{\", \"}\"\n" +
	"  }\n" +
	"\n" +
	"}\n" +
	"\n"

func TestFormat_DefaultIndent(t *testing.T) {
	formatted, err := NewFormatter().Format(loop)
	require.NoError(t, err)

	expected := "for (JsonObject item : doc.as<JsonArray>()) {\n" +
		"\n" +
		"  long dt = item[\"dt\"]; // 1, 2\n" +
		"\n" +
		"  for (JsonVariant item_tags_item : item[\"tags\"].as<JsonArray>()) {\n" +
		"    const char* item_tags_item_value = item_tags_item; // \"{\", \"}\"\n" +
		"  }\n" +
		"\n" +
		"}\n"
	assert.Equal(t, expected, formatted)
}

func TestFormat_Tabs(t *testing.T) {
	formatted, err := NewFormatter(WithTabs(true)).Format("if (error) {\n  return;\n}")
	require.NoError(t, err)
	assert.Equal(t, "if (error) {\n\treturn;\n}\n", formatted)
}

func TestFormat_WiderIndent(t *testing.T) {
	formatted, err := NewFormatter(WithIndent(4)).Format("a {\n  b {\n    c;\n  }\n}")
	require.NoError(t, err)
	assert.Equal(t, "a {\n    b {\n        c;\n    }\n}\n", formatted)
}

func TestFormat_EmptyInput(t *testing.T) {
	formatted, err := NewFormatter().Format("  \n\n")
	require.NoError(t, err)
	assert.Empty(t, formatted)
}

func TestFormat_UnbalancedBraces(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		errMsg string
	}{
		{name: "unclosed", code: "if (error) {\n  return;\n", errMsg: "1 unclosed '{'"},
		{name: "extra close", code: "x = 1;\n}\n", errMsg: "unexpected '}' on line 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFormatter().Format(tt.code)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestFormat_BracesInStringsAndComments(t *testing.T) {
	code := "const char* s = doc[\"{\"]; // \"}\", \"\\\"{\"\n// }\n"
	formatted, err := NewFormatter().Format(code)
	require.NoError(t, err)
	assert.Equal(t, code, formatted)
}

func TestWrap(t *testing.T) {
	code := "JsonDocument doc;\n\nif (error) {\n  std::cerr << error.c_str() << std::endl;\n  return;\n}\n"

	wrapped := NewFormatter().Wrap(code, "setup")

	expected := "#include <ArduinoJson.h>\n" +
		"#include <iostream>\n" +
		"\n" +
		"void setup() {\n" +
		"  JsonDocument doc;\n" +
		"\n" +
		"  if (error) {\n" +
		"    std::cerr << error.c_str() << std::endl;\n" +
		"    return;\n" +
		"  }\n" +
		"}\n"
	assert.Equal(t, expected, wrapped)
}

func TestWrap_ArduinoString(t *testing.T) {
	wrapped := NewFormatter().Wrap("String output;\nserializeJson(doc, output);", "loop")
	assert.Equal(t, "#include <ArduinoJson.h>\n\nvoid loop() {\n  String output;\n  serializeJson(doc, output);\n}\n", wrapped)

	std := NewFormatter().Wrap("std::string output;", "run")
	assert.Contains(t, std, "#include <string>\n")
	assert.NotContains(t, std, "<iostream>")
}
