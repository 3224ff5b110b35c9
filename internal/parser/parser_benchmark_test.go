package parser

import (
	"fmt"
	"testing"
)

func BenchmarkParse_WideStruct(b *testing.B) {
	decl := Declaration{Name: "Wide", Generics: []Source{{Text: "T: Clone"}}}
	for i := 0; i < 64; i++ {
		decl.Fields = append(decl.Fields, RawField{
			Name: fmt.Sprintf("field_%d", i),
			Type: Source{Text: "std::collections::HashMap<String, Vec<Option<T>>>"},
		})
	}
	p := New()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		info, err := p.Parse(decl)
		if err != nil {
			b.Fatal(err)
		}
		if len(info.Fields) != 64 {
			b.Fatal("unexpected field count")
		}
	}
}

func BenchmarkParseType(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := ParseType("Option<Box<dyn Fn(&str) -> Result<u8, String> + Send>>"); err != nil {
			b.Fatal(err)
		}
	}
}
