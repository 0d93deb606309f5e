package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue_ZeroIsAbsent(t *testing.T) {
	var v Value[int]

	got, ok := v.Get()
	assert.False(t, ok)
	assert.Equal(t, 0, got)
	assert.Equal(t, 7, v.OrElse(7))
}

func TestValue_SomeHoldsZeroValue(t *testing.T) {
	v := Some(0)

	got, ok := v.Get()
	assert.True(t, ok)
	assert.Equal(t, 0, got)
	assert.True(t, v.Present())
}

func TestNonBlank(t *testing.T) {
	blank := "   "
	padded := "  AF-1  "

	assert.False(t, NonBlank(nil).Present())
	assert.False(t, NonBlank(&blank).Present())

	got, ok := NonBlank(&padded).Get()
	assert.True(t, ok)
	assert.Equal(t, "AF-1", got)
}

func TestFromPtr(t *testing.T) {
	n := 3
	assert.False(t, FromPtr[int](nil).Present())
	assert.Equal(t, 3, FromPtr(&n).OrElse(0))
}
