package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPos_String(t *testing.T) {
	assert.Equal(t, "<input>", Pos{}.String())
	assert.Equal(t, "a.yaml", Pos{File: "a.yaml"}.String())
	assert.Equal(t, "a.yaml:3:7", Pos{File: "a.yaml", Line: 3, Column: 7}.String())
	assert.Equal(t, "<input>:1:1", Pos{Line: 1, Column: 1}.String())
}

func TestDiagnostic_ErrorAndUnwrap(t *testing.T) {
	d := New(KindMalformedDirective, Pos{File: "a.yaml", Line: 2, Column: 4}, "expected %s", "x")
	assert.Equal(t, "a.yaml:2:4: expected x", d.Error())
	assert.True(t, errors.Is(d, ErrMalformedDirective))
	assert.False(t, errors.Is(d, ErrInvalidType))

	wrapped := fmt.Errorf("derive: %w", d)
	var got *Diagnostic
	require.True(t, errors.As(wrapped, &got))
	assert.Same(t, d, got)
}

func TestList_Err(t *testing.T) {
	var empty List
	assert.NoError(t, empty.Err())

	one := List{New(KindInvalidType, Pos{Line: 1}, "one")}
	assert.Same(t, one[0], one.Err())

	late := New(KindNameCollision, Pos{File: "a", Line: 9, Column: 1}, "late")
	early := New(KindInvalidType, Pos{File: "a", Line: 2, Column: 5}, "early")
	var l List
	l.Add(late)
	l.Add(nil)
	l.Add(early)
	require.Len(t, l, 2)

	err := l.Err()
	assert.Equal(t, "a:2:5: early\na:9:1: late", err.Error())
	assert.True(t, errors.Is(err, ErrNameCollision))
	assert.True(t, errors.Is(err, ErrInvalidType))
	assert.Equal(t, []*Diagnostic{early, late}, Flatten(err))
	assert.Equal(t, late, l[0], "Err must not reorder the receiver")
}

func TestList_Merge(t *testing.T) {
	var l List
	l.Merge(nil, Pos{})
	assert.Empty(t, l)

	d := New(KindInvalidGeneric, Pos{Line: 1}, "bad")
	l.Merge(d, Pos{})
	l.Merge(List{d, d}, Pos{})
	l.Merge(errors.New("plain"), Pos{File: "m.yaml"})
	require.Len(t, l, 4)
	assert.Equal(t, KindManifest, l[3].Kind)
	assert.Equal(t, "m.yaml: plain", l[3].Error())
}

func TestFlatten(t *testing.T) {
	assert.Nil(t, Flatten(nil))
	assert.Nil(t, Flatten(errors.New("x")))
	d := New(KindManifest, Pos{}, "m")
	assert.Equal(t, []*Diagnostic{d}, Flatten(fmt.Errorf("wrap: %w", d)))
}
