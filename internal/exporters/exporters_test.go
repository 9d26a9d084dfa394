package exporters

import (
	"testing"

	"github.com/goplus/lobs/pkgs/buildsys/cmake"
	"github.com/goplus/lobs/pkgs/buildsys/espidf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	r := Default()
	assert.Same(t, r, Default())
	assert.Equal(t, []string{cmake.Tag, espidf.Tag}, r.Tags())

	cfg, err := r.NewConfig(espidf.Tag)
	require.NoError(t, err)
	assert.IsType(t, &espidf.Config{}, cfg)
}
