package tabular

import (
	"reflect"
	"testing"
)

func TestSplitLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "plain fields",
			line: "a,b,c",
			want: []string{"a", "b", "c"},
		},
		{
			name: "quoted comma stays in one field",
			line: `s1,"WXRT, Chicago",93.1`,
			want: []string{"s1", "WXRT, Chicago", "93.1"},
		},
		{
			name: "empty fields preserved",
			line: "a,,c",
			want: []string{"a", "", "c"},
		},
		{
			name: "single value",
			line: "solo",
			want: []string{"solo"},
		},
		{
			name: "empty line yields one empty field",
			line: "",
			want: []string{""},
		},
		{
			name: "trailing comma yields trailing empty field",
			line: "a,b,",
			want: []string{"a", "b", ""},
		},
		{
			name: "unterminated quote swallows rest of line",
			line: `a,"b,c`,
			want: []string{"a", "b,c"},
		},
		{
			name: "doubled quotes are not unescaped",
			line: `a,"he said ""hi"", then left",c`,
			want: []string{"a", `he said hi, then left`, "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLine(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitLine(%q) = %#v, want %#v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	text := "id,name,freq\ns1,\"WXRT, Chicago\",93.1\ns2,WLUP\n"
	table := Parse(text)

	wantFields := []string{"id", "name", "freq"}
	if !reflect.DeepEqual(table.Fields, wantFields) {
		t.Fatalf("Fields = %#v, want %#v", table.Fields, wantFields)
	}

	// Trailing newline produces a final garbage record; consumers filter it.
	if len(table.Records) != 3 {
		t.Fatalf("got %d records, want 3", len(table.Records))
	}

	first := table.Records[0]
	if first["name"] != "WXRT, Chicago" {
		t.Errorf("quoted comma split the field: name = %q", first["name"])
	}
	if len(first) != len(wantFields) {
		t.Errorf("record field count = %d, want %d", len(first), len(wantFields))
	}

	// Short row: trailing fields are absent, not empty.
	second := table.Records[1]
	if _, ok := second["freq"]; ok {
		t.Errorf("short row should leave freq absent, got %q", second["freq"])
	}
	if second["name"] != "WLUP" {
		t.Errorf("name = %q, want WLUP", second["name"])
	}
}

func TestParseHeaderOnly(t *testing.T) {
	table := Parse("id,name,freq")
	if len(table.Records) != 0 {
		t.Errorf("header-only tab should yield zero records, got %d", len(table.Records))
	}
}

func TestParseCRLF(t *testing.T) {
	table := Parse("id,name\r\ns1,WXRT\r\n")
	if table.Records[0]["name"] != "WXRT" {
		t.Errorf("carriage return leaked into value: %q", table.Records[0]["name"])
	}
}

func TestParseExtraValuesDropped(t *testing.T) {
	table := Parse("id,name\ns1,WXRT,overflow")
	if len(table.Records[0]) != 2 {
		t.Errorf("extra values should be dropped, record = %#v", table.Records[0])
	}
}
