package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSex(t *testing.T) {
	tests := []struct {
		input   string
		want    Sex
		wantErr bool
	}{
		{"male", SexMale, false},
		{" Female ", SexFemale, false},
		{"MALE", SexMale, false},
		{"мужской", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSex(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
