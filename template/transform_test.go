package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercased", "MyApp", "myapp"},
		{"uppercased", "MyApp", "MYAPP"},
		{"uppercasingFirstLetter", "myApp", "MyApp"},
		{"uppercasingFirstLetter", "", ""},
		{"lowercasingFirstLetter", "MyApp", "myApp"},
		{"lowercasingFirstLetter", "", ""},
		{"trimmed", "  My App \t", "My App"},
		{"removingWhitespace", " My App\tCore ", "MyAppCore"},
		{"collapsingWhitespace", " My App ", "MyApp"},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.in, func(t *testing.T) {
			fn, err := LookupTransformer(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fn(tt.in))
		})
	}
}

func TestTransformersUnicode(t *testing.T) {
	fn, err := LookupTransformer("uppercasingFirstLetter")
	require.NoError(t, err)
	assert.Equal(t, "Ärmel", fn("ärmel"))

	fn, err = LookupTransformer("lowercasingFirstLetter")
	require.NoError(t, err)
	assert.Equal(t, "ärmel", fn("Ärmel"))
}

func TestTransformerChainAppliesLeftToRight(t *testing.T) {
	out, err := applyTransformers("AbC", []string{"uppercased", "lowercased"})
	require.NoError(t, err)
	assert.Equal(t, "abc", out)

	out, err = applyTransformers("myapp", []string{"uppercasingFirstLetter"})
	require.NoError(t, err)
	assert.Equal(t, "Myapp", out)

	out, err = applyTransformers("MY APP", []string{"removingWhitespace", "lowercased", "uppercasingFirstLetter"})
	require.NoError(t, err)
	assert.Equal(t, "Myapp", out)
}

func TestUnknownTransformerFails(t *testing.T) {
	_, err := LookupTransformer("reversed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reversed")

	_, err = applyTransformers("x", []string{"trimmed", "reversed"})
	assert.Error(t, err)
}

func TestTransformerNamesSorted(t *testing.T) {
	names := TransformerNames()
	require.NotEmpty(t, names)
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "lowercased")
	assert.Contains(t, names, "removingWhitespace")
}
