package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType_Named(t *testing.T) {
	tests := []struct {
		src  string
		want string
		path []string
		args int
	}{
		{src: "String", want: "String", path: []string{"String"}},
		{src: "std::vec::Vec<String>", want: "std::vec::Vec<String>", path: []string{"std", "vec", "Vec"}, args: 1},
		{src: "HashMap<K,V>", want: "HashMap<K, V>", path: []string{"HashMap"}, args: 2},
		{src: "Vec<Vec<T>>", want: "Vec<Vec<T>>", path: []string{"Vec"}, args: 1},
		{src: "Vec::<u8>", want: "Vec<u8>", path: []string{"Vec"}, args: 1},
		{src: "Vec<T,>", want: "Vec<T>", path: []string{"Vec"}, args: 1},
		{src: "T::Value", want: "T::Value", path: []string{"T", "Value"}},
		{src: "r#type", want: "r#type", path: []string{"r#type"}},
		{src: "Option<&'a T>", want: "Option<&'a T>", path: []string{"Option"}, args: 1},
		{src: "Box<dyn Fn(u8) -> u8>", want: "Box<dyn Fn(u8) -> u8>", path: []string{"Box"}, args: 1},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := ParseType(tt.src)
			require.NoError(t, err)
			named, ok := got.(*Named)
			require.True(t, ok, "want *Named, got %T", got)
			assert.Equal(t, tt.want, named.String())
			assert.Equal(t, tt.path, named.Path)
			assert.Len(t, named.Args, tt.args)
		})
	}
}

func TestParseType_Global(t *testing.T) {
	got, err := ParseType("::std::option::Option<u8>")
	require.NoError(t, err)
	named := got.(*Named)
	assert.True(t, named.Global)
	assert.Equal(t, "Option", named.Name())
	assert.Equal(t, "::std::option::Option<u8>", named.String())
}

func TestParseType_Opaque(t *testing.T) {
	for _, src := range []string{
		"&'a str",
		"(u8, u16)",
		"[u8; 4]",
		"*const T",
		"<T as Trait>::Assoc",
		"Foo<T>::Bar",
		"dyn std::error::Error",
		"fn(u8) -> u8",
	} {
		t.Run(src, func(t *testing.T) {
			got, err := ParseType(src)
			require.NoError(t, err)
			assert.Equal(t, &Opaque{Text: src}, got)
		})
	}
}

func TestParseType_OpaqueArgument(t *testing.T) {
	got, err := ParseType("Option<&'a T>")
	require.NoError(t, err)
	named := got.(*Named)
	require.Len(t, named.Args, 1)
	assert.Equal(t, &Opaque{Text: "&'a T"}, named.Args[0])
}

func TestParseType_Errors(t *testing.T) {
	tests := map[string]string{
		"":         "empty type",
		"Vec<":     "unclosed '<'",
		"(u8":      "unbalanced brackets",
		"Vec<u8>>": `unexpected ">"`,
		"a $ b":    "unexpected character",
	}
	for src, want := range tests {
		t.Run(src, func(t *testing.T) {
			_, err := ParseType(src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), want)
		})
	}
}

func TestIsIdent(t *testing.T) {
	assert.True(t, IsIdent("arg"))
	assert.True(t, IsIdent("r#type"))
	assert.True(t, IsIdent("_private"))
	assert.False(t, IsIdent("_"))
	assert.False(t, IsIdent(""))
	assert.False(t, IsIdent("9lives"))
	assert.False(t, IsIdent("kebab-case"))
	assert.Equal(t, "type", Unraw("r#type"))
	assert.Equal(t, "plain", Unraw("plain"))
}

func TestNamed_IsIdent(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{src: "T", want: true},
		{src: "::T", want: false},
		{src: "other::T", want: false},
		{src: "T<u8>", want: false},
	}
	for _, tt := range tests {
		ty, err := ParseType(tt.src)
		require.NoError(t, err)
		named, ok := ty.(*Named)
		require.True(t, ok, tt.src)
		assert.Equal(t, tt.want, named.IsIdent("T"), tt.src)
	}
}

func TestOpaque_Components(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{src: "&'a T", want: []string{"T"}},
		{src: "&'a mut Vec<T>", want: []string{"Vec<T>"}},
		{src: "(T, u8)", want: []string{"T", "u8"}},
		{src: "[T; 4]", want: []string{"T"}},
		{src: "&'a T::Value", want: []string{"T::Value"}},
		{src: "*const std::marker::PhantomData<T>", want: []string{"std::marker::PhantomData<T>"}},
		{src: "dyn Fn(T) -> U + 'static", want: []string{"Fn", "T", "U"}},
		{src: "&'static str", want: []string{"str"}},
	}
	for _, tt := range tests {
		ty, err := ParseType(tt.src)
		require.NoError(t, err)
		op, ok := ty.(*Opaque)
		require.True(t, ok, tt.src)
		got := []string{}
		for _, c := range op.Components() {
			got = append(got, c.String())
		}
		assert.Equal(t, tt.want, got, tt.src)
	}
}
