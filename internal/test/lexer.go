package test

import (
	"math/rand"
	"strings"
)

const validTokens = "def;extern;foo;bar123;x;(;);,;+;-;*;/;<;>;1;3.14;.5;42.;# comment\n;\n"

func GetRandomTokens(size int) string {
	return GetRandomTokensWithSep(size, " ")
}

func GetRandomTokensWithSep(size int, sep string) string {
	valid := strings.Split(validTokens, ";")

	var toks []string
	for len(toks) < size {
		toks = append(toks, valid[rand.Intn(len(valid))])
	}

	return strings.Join(toks, sep)
}

// GetRandomProgram returns size syntactically valid top-level constructs
// separated by ';'. Repeated definitions are expected to be rejected when
// lowered.
func GetRandomProgram(size int) string {
	constructs := []string{
		"def add(a b) a + b",
		"extern sin(x)",
		"def poly(x) x * x - 2 * x + 1 < 10",
		"printd(1.5 * 2)",
		"putchard(65)",
		"(1 + 2) * 3 / 4 > 0.5",
	}

	var out []string
	for i := 0; i < size; i++ {
		out = append(out, constructs[rand.Intn(len(constructs))])
	}

	return strings.Join(out, ";\n")
}
