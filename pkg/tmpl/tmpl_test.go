package tmpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		data    any
		want    string
		wantErr bool
	}{
		{
			name: "simple substitution",
			tmpl: "hello {{ .Name }}",
			data: map[string]string{"Name": "world"},
			want: "hello world",
		},
		{
			name: "struct data",
			tmpl: "{{ .Team }} has {{ .Count }} records",
			data: struct {
				Team  string
				Count int
			}{Team: "crew-1", Count: 3},
			want: "crew-1 has 3 records",
		},
		{
			name: "no variables",
			tmpl: "static string",
			data: nil,
			want: "static string",
		},
		{
			name:    "missing key errors",
			tmpl:    "{{ .Missing }}",
			data:    map[string]string{"Name": "test"},
			wantErr: true,
		},
		{
			name:    "invalid template syntax",
			tmpl:    "{{ .Name }",
			data:    map[string]string{"Name": "test"},
			wantErr: true,
		},
		{
			name: "quote escapes double quotes",
			tmpl: "title {{ .Title | quote }}",
			data: map[string]string{"Title": `the "big" pour`},
			want: `title "the \"big\" pour"`,
		},
		{
			name: "join",
			tmpl: `{{ join .Kinds ", " }}`,
			data: map[string][]string{"Kinds": {"task", "note"}},
			want: "task, note",
		},
		{
			name: "truncate cuts long values",
			tmpl: "{{ truncate 6 .Title }}",
			data: map[string]string{"Title": "Order lumber"},
			want: "Order…",
		},
		{
			name: "truncate keeps short values",
			tmpl: "{{ truncate 20 .Title }}",
			data: map[string]string{"Title": "Order lumber"},
			want: "Order lumber",
		},
		{
			name: "default on empty",
			tmpl: `{{ default "nobody" .Name }}`,
			data: map[string]string{"Name": ""},
			want: "nobody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.tmpl, tt.data)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheck(t *testing.T) {
	require.NoError(t, Check("{{ .Anything | quote }}"))
	require.Error(t, Check("{{ .Broken }"))
	require.Error(t, Check("{{ nosuchfunc .X }}"))
}
