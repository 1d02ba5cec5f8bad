package haml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		django  bool
		wrapper byte
		wantErr bool
	}{
		{name: "empty", src: "", django: true, wrapper: '\''},
		{name: "both", src: "django_inline_style: false\nattr_wrapper: '\"'\n", django: false, wrapper: '"'},
		{name: "only wrapper", src: "attr_wrapper: \"'\"\n", django: true, wrapper: '\''},
		{name: "unrelated keys", src: "title: x\n", django: true, wrapper: '\''},
		{name: "invalid boolean", src: "django_inline_style: maybe\n", wantErr: true},
		{name: "long wrapper", src: "attr_wrapper: '\"\"'\n", wantErr: true},
		{name: "invalid wrapper", src: "attr_wrapper: x\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseConfig(tt.src)
			if err == nil {
				var c *Compiler
				c, err = New(opts...)
				if err == nil {
					assert.Equal(t, tt.django, c.DjangoInlineStyle())
					assert.Equal(t, tt.wrapper, c.AttrWrapper())
				}
			}
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "hamlet.yaml")
	require.NoError(t, os.WriteFile(name, []byte("attr_wrapper: '\"'\n"), 0664))

	opts, err := LoadConfigFile(name)
	require.NoError(t, err)

	got, err := Compile("%a{href: '/'}", opts...)
	require.NoError(t, err)
	assert.Equal(t, "<a href=\"/\"></a>\n", got)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
