package waveform

import (
	"errors"
	"math"
	"strings"
	"testing"

	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"github.com/stretchr/testify/require"
)

func evalString(t *testing.T, src string, env Env) float64 {
	t.Helper()
	e, err := Compile(src)
	require.NoError(t, err, "выражение %q должно компилироваться", src)
	v, err := e.Eval(env)
	require.NoError(t, err, "выражение %q должно вычисляться", src)
	return v
}

func TestExprArithmeticAndPrecedence(t *testing.T) {
	cases := map[string]float64{
		"1 + 2 * 3":          7,
		"(1 + 2) * 3":        9,
		"2 ** 3 ** 2":        512,
		"-2 ** 2":            -4,
		"2 ** -1":            0.5,
		"7 % 3":              1,
		"-7 % 3":             2,
		"1.5e2 / 3":          50,
		"pow(2, 10)":         1024,
		"abs(-3) + sqrt(16)": 7,
		"log(e)":             1,
		"log(8, 2)":          3,
		"log10(1000)":        3,
		"+-+1":               -1,
	}
	for src, want := range cases {
		require.InDelta(t, want, evalString(t, src, Env{}), 1e-9, src)
	}
}

func TestExprVariables(t *testing.T) {
	env := Env{T: 0.5, A: 100, V: 0.2}
	got := evalString(t, "A/2 * (1 - cos(2*pi*V*t))", env)
	want := 50 * (1 - math.Cos(2*math.Pi*0.2*0.5))
	require.InDelta(t, want, got, 1e-12)
}

func TestExprRejectsUnsafeInput(t *testing.T) {
	bad := []string{
		"",
		"os.system('x')",
		"__import__",
		"exec(1)",
		"x + 1",
		"sin(1, 2)",
		"(1 + 2",
		"1 +",
		"2 ^ 3",
		strings.Repeat("1+", 200) + "1",
		strings.Repeat("(", 40) + "1" + strings.Repeat(")", 40),
	}
	for _, src := range bad {
		_, err := Compile(src)
		require.Error(t, err, "ожидалась ошибка для %q", src)
		require.True(t, errors.Is(err, apperr.ErrEvaluation), "вид ошибки для %q", src)
	}
}

func TestExprRuntimeErrors(t *testing.T) {
	for _, src := range []string{"1 / (t - t)", "5 % 0", "sqrt(-1)", "log(0)", "0 ** -1", "exp(1000)"} {
		e, err := Compile(src)
		require.NoError(t, err, src)
		_, err = e.Eval(Env{T: 1})
		require.Error(t, err, src)
		require.True(t, errors.Is(err, apperr.ErrEvaluation), src)
	}
}
