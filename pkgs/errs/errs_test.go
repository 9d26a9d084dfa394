package errs

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestCategory(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{ErrUnknownExporter, Configuration},
		{ErrNotImplemented, Configuration},
		{ErrMissingDirectory, Precondition},
		{ErrNotAFile, Precondition},
		{ErrFolderConflict, Precondition},
		{ErrNoPackage, Data},
		{ErrInvalidVersion, Data},
		{errors.Wrapf(ErrMisplacedSource, "esp-idf: %s", "a.cpp"), Precondition},
		{errors.WithHint(errors.Wrap(ErrInvalidFlag, "flags"), "hint"), Data},
		{errors.New("other"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, Category(tt.err))
		})
	}
}

func TestSentinels_Distinct(t *testing.T) {
	assert.True(t, errors.Is(errors.Wrap(ErrMissingPath, "x"), ErrMissingPath))
	assert.False(t, errors.Is(ErrMissingPath, ErrMissingDirectory))
	assert.False(t, errors.Is(ErrNoPackage, ErrMultiplePackages))
}
