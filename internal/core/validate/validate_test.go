package validate

import (
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{name: "valid title", title: "Buy milk"},
		{name: "empty", title: "", wantErr: true},
		{name: "whitespace only", title: "   \t", wantErr: true},
		{name: "surrounding whitespace is fine", title: "  x  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Title(tt.title)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTitleField(t *testing.T) {
	err := TitleField("title", "")
	require.Error(t, err)

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "title", fieldErrs[0].Field)

	assert.NoError(t, TitleField("title", "Buy milk"))
}
