package leadform_test

import (
	"errors"
	"testing"

	"github.com/phbpx/leadform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		in   leadform.Submission
		want []string
	}{
		{
			name: "valid without email",
			in:   leadform.Submission{Name: "Ana", Phone: "612345678"},
		},
		{
			name: "valid with email",
			in:   leadform.Submission{Name: "Ana", Phone: "612345678", Email: "ana@example.es"},
		},
		{
			name: "short name",
			in:   leadform.Submission{Name: "A", Phone: "612345678"},
			want: []string{leadform.InvalidName},
		},
		{
			name: "name padded with spaces",
			in:   leadform.Submission{Name: "  A  ", Phone: "612345678"},
			want: []string{leadform.InvalidName},
		},
		{
			name: "accented two letter name",
			in:   leadform.Submission{Name: "Íñ", Phone: "612345678"},
		},
		{
			name: "short phone",
			in:   leadform.Submission{Name: "Ana", Phone: "61234567"},
			want: []string{leadform.InvalidPhone},
		},
		{
			name: "phone is not checked for digits",
			in:   leadform.Submission{Name: "Ana", Phone: "abcdefghi"},
		},
		{
			name: "bad email",
			in:   leadform.Submission{Name: "Ana", Phone: "612345678", Email: "ana@example"},
			want: []string{leadform.InvalidEmail},
		},
		{
			name: "email with whitespace",
			in:   leadform.Submission{Name: "Ana", Phone: "612345678", Email: "a na@example.es"},
			want: []string{leadform.InvalidEmail},
		},
		{
			name: "every rule broken",
			in:   leadform.Submission{Name: "", Phone: " ", Email: "nope"},
			want: []string{leadform.InvalidName, leadform.InvalidPhone, leadform.InvalidEmail},
		},
		{
			name: "name and email broken",
			in:   leadform.Submission{Name: "A", Phone: "612345678", Email: "nope"},
			want: []string{leadform.InvalidName, leadform.InvalidEmail},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := leadform.Validate(tt.in)
			assert.Equal(t, tt.want, got)
			// No hidden state between calls.
			assert.Equal(t, got, leadform.Validate(tt.in))
		})
	}
}

func TestSubmissionCheck(t *testing.T) {
	require.NoError(t, leadform.Submission{Name: "Ana", Phone: "612345678"}.Check())

	err := leadform.Submission{Name: "A", Phone: "612345678", Email: "x"}.Check()
	require.Error(t, err)
	assert.True(t, errors.Is(err, leadform.ErrInvalidSubmission))
	assert.Equal(t, leadform.InvalidName+", "+leadform.InvalidEmail, err.Error())

	var verr *leadform.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Violations, 2)
}

func TestPersistenceErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&leadform.PersistenceError{Err: cause})

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")
}
