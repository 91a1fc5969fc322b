package typesys_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/blockflow/internal/domain"
	"github.com/smilemakc/blockflow/internal/typesys"
)

func TestParse_Scalar(t *testing.T) {
	ty, err := typesys.Parse("double")
	require.NoError(t, err)
	assert.Equal(t, domain.ScalarType(domain.BaseDouble), ty)
}

func TestParse_Vector(t *testing.T) {
	ty, err := typesys.Parse("float[4]")
	require.NoError(t, err)
	assert.Equal(t, domain.VectorType(domain.BaseFloat, 4), ty)
}

func TestParse_Matrix(t *testing.T) {
	ty, err := typesys.Parse("long[2][3]")
	require.NoError(t, err)
	assert.Equal(t, domain.MatrixType(domain.BaseLong, 2, 3), ty)
}

func TestParse_Rejections(t *testing.T) {
	cases := []string{
		"",
		"complex",
		"double[0]",
		"double[-1]",
		"double[1][2][3]",
		"double[1]garbage",
		"double[abc]",
	}
	for _, c := range cases {
		_, err := typesys.Parse(c)
		assert.Error(t, err, "expected error for %q", c)
	}
}

func TestCompatible(t *testing.T) {
	assert.True(t, typesys.Compatible(domain.ScalarType(domain.BaseDouble), domain.ScalarType(domain.BaseDouble)))
	assert.False(t, typesys.Compatible(domain.ScalarType(domain.BaseDouble), domain.ScalarType(domain.BaseFloat)))
	assert.False(t, typesys.Compatible(domain.ScalarType(domain.BaseDouble), domain.VectorType(domain.BaseDouble, 1)))
	assert.False(t, typesys.Compatible(domain.VectorType(domain.BaseDouble, 3), domain.VectorType(domain.BaseDouble, 4)))
	assert.True(t, typesys.Compatible(domain.MatrixType(domain.BaseDouble, 2, 2), domain.MatrixType(domain.BaseDouble, 2, 2)))
}

func TestDefaultValue(t *testing.T) {
	assert.Equal(t, domain.F64Value(0), typesys.DefaultValue(domain.ScalarType(domain.BaseDouble)))
	assert.Equal(t, domain.BoolValue(false), typesys.DefaultValue(domain.ScalarType(domain.BaseBool)))
	assert.Equal(t, domain.VecFValue([]float64{0, 0, 0}), typesys.DefaultValue(domain.VectorType(domain.BaseDouble, 3)))
}

func TestIsValueValid(t *testing.T) {
	scalar := domain.ScalarType(domain.BaseDouble)
	assert.True(t, typesys.IsValueValid(domain.F64Value(3.14), scalar))
	assert.False(t, typesys.IsValueValid(domain.BoolValue(true), scalar))

	vec := domain.VectorType(domain.BaseDouble, 2)
	assert.True(t, typesys.IsValueValid(domain.VecFValue([]float64{1, 2}), vec))
	assert.False(t, typesys.IsValueValid(domain.VecFValue([]float64{1, 2, 3}), vec))
}
