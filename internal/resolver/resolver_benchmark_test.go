package resolver

import (
	"fmt"
	"testing"

	"github.com/seitarof/derive-gen/internal/parser"
)

func BenchmarkResolverResolveBuilder_MixedRules(b *testing.B) {
	r := New(DefaultRules()...)
	info := benchmarkInfo(48)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		plan, err := r.ResolveBuilder(info)
		if err != nil {
			b.Fatal(err)
		}
		if len(plan.Fields) != len(info.Fields) {
			b.Fatalf("unexpected plan count: got %d want %d", len(plan.Fields), len(info.Fields))
		}
	}
}

func BenchmarkResolverResolveDebug_Inference(b *testing.B) {
	r := New(DefaultRules()...)
	info := benchmarkInfo(48)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.ResolveDebug(info); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkInfo(n int) *parser.StructInfo {
	types := []string{"String", "Option<T>", "Vec<T::Value>", "PhantomData<U>"}
	info := &parser.StructInfo{
		Name: "Wide",
		Generics: []parser.GenericParam{
			{Kind: parser.GenericType, Name: "T", Bounds: "Trait"},
			{Kind: parser.GenericType, Name: "U"},
		},
	}
	for i := 0; i < n; i++ {
		ty, err := parser.ParseType(types[i%len(types)])
		if err != nil {
			panic(err)
		}
		f := parser.FieldInfo{Name: fmt.Sprintf("field_%d", i), Type: ty}
		if i%len(types) == 2 {
			f.Attrs = []parser.Source{{Text: fmt.Sprintf(`builder(each = "item_%d")`, i)}}
		}
		info.Fields = append(info.Fields, f)
	}
	return info
}
