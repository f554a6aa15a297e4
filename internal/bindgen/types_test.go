package bindgen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/ayamsys/internal/bindgen/clangast"
)

func TestTypeMap_Resolve(t *testing.T) {
	m := newTypeMap()
	m.variants["ay_result_t"] = goType{Expr: "AyResultT", Conv: "C.ay_result_t"}
	m.aliases["ay_object"] = "AyObject"
	m.aliases["struct ay_object_s"] = "AyObjectS"

	cases := []struct {
		in   string
		pos  position
		want goType
	}{
		{"int", posParam, goType{Expr: "C.int"}},
		{"unsigned long", posParam, goType{Expr: "C.ulong"}},
		{"const char *", posParam, goType{Expr: "*C.char"}},
		{"const char *const *", posParam, goType{Expr: "**C.char"}},
		{"void *", posParam, goType{Expr: "unsafe.Pointer"}},
		{"void **", posParam, goType{Expr: "*unsafe.Pointer"}},
		{"void", posResult, goType{}},
		{"_Bool", posResult, goType{Expr: "C._Bool"}},
		{"double [4]", posParam, goType{Expr: "*C.double"}},
		{"double [4]", posVar, goType{Expr: "[4]C.double"}},
		{"double [4][4]", posVar, goType{Expr: "[4][4]C.double"}},
		{"double [4][4]", posParam, goType{Expr: "*[4]C.double"}},
		{"int (*)(void *, int)", posParam, goType{Expr: "*[0]byte"}},
		{"ay_result_t", posParam, goType{Expr: "AyResultT", Conv: "C.ay_result_t"}},
		{"ay_result_t", posVar, goType{Expr: "C.ay_result_t"}},
		{"ay_result_t *", posParam, goType{Expr: "*C.ay_result_t"}},
		{"ay_object *", posResult, goType{Expr: "*AyObject"}},
		{"struct ay_object_s *", posParam, goType{Expr: "*AyObjectS"}},
		{"struct other_s", posParam, goType{Expr: "C.struct_other_s"}},
		{"union ay_value_u", posParam, goType{Expr: "C.union_ay_value_u"}},
		{"enum ay_mode", posParam, goType{Expr: "C.enum_ay_mode"}},
		{"size_t", posParam, goType{Expr: "C.size_t"}},
	}
	for _, tc := range cases {
		got, err := m.resolve(tc.in, tc.pos)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}
}

func TestTypeMap_Unsupported(t *testing.T) {
	m := newTypeMap()
	for _, in := range []string{
		"long double",
		"_Complex double",
		"__int128",
		"int (*)[4]",
		"void",
		"int []",
	} {
		pos := posParam
		if in == "int []" {
			pos = posVar
		}
		_, err := m.resolve(in, pos)
		require.ErrorIs(t, err, errUnsupported, in)
	}
}

func enumValues(vs ...int64) []clangast.Enumerator {
	out := make([]clangast.Enumerator, 0, len(vs))
	for _, v := range vs {
		out = append(out, clangast.Enumerator{Value: v})
	}
	return out
}

func TestUnderlyingType(t *testing.T) {
	cases := []struct {
		values []clangast.Enumerator
		want   string
	}{
		{enumValues(0, 1), "int32"},
		{enumValues(-1, 4), "int32"},
		{enumValues(0, 1<<31), "uint32"},
		{enumValues(-1, 1<<31), "int64"},
		{enumValues(1 << 40), "int64"},
		{append(enumValues(0), clangast.Enumerator{Value: -1, Unsigned: true}), "uint64"},
	}
	for _, tc := range cases {
		got, err := underlyingType(tc.values)
		require.NoError(t, err)
		require.Equal(t, tc.want, got)
	}

	_, err := underlyingType(append(enumValues(-1), clangast.Enumerator{Value: -1, Unsigned: true}))
	require.Error(t, err)
}
