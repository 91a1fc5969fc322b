package codegen

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/smilemakc/blockflow/internal/domain"
)

// exprLangToC translates the bounded subset of expr-lang syntax that
// internal/blocks/evaluate.go and condition.go's expressions actually use
// (arithmetic, comparisons, and/or/not over in0..inN) into equivalent C.
// expr-lang is a full expression VM; transpiling its complete grammar
// would be a project of its own, so codegen only covers the operator
// subset a block author would plausibly write here, documented as a
// deliberate scope limit rather than attempted exhaustively.
var (
	exprAndRe = regexp.MustCompile(`(?i)\band\b`)
	exprOrRe  = regexp.MustCompile(`(?i)\bor\b`)
	exprNotRe = regexp.MustCompile(`(?i)\bnot\b`)
)

func exprLangToC(expr string) string {
	out := exprAndRe.ReplaceAllString(expr, "&&")
	out = exprOrRe.ReplaceAllString(out, "||")
	out = exprNotRe.ReplaceAllString(out, "!")
	return strings.TrimSpace(out)
}

// emitCondition writes a `condition` block's statement: the scalar
// predicate "op value" applied to in0, reusing the predicate text
// verbatim since C and expr-lang comparison operators coincide.
func emitCondition(w *Writer, ctx *emitContext, id domain.BlockId, p domain.ConditionParams) {
	in0 := ctx.inputExpr(id, 0)
	predicate := strings.TrimSpace(p.Condition)
	w.Line("%s = %s;", ctx.sig(id, 0), cBoolExpr(in0+" "+predicate))
}

// emitEvaluate writes an `evaluate` block's statement: the free-form
// expression with in0..inN substituted for their wired C expressions.
func emitEvaluate(w *Writer, ctx *emitContext, id domain.BlockId, p domain.EvaluateParams) {
	expr := exprLangToC(p.Expression)
	ins := ctx.inputsOf(id)
	for i := len(ins) - 1; i >= 0; i-- {
		name := "in" + strconv.Itoa(i)
		expr = regexp.MustCompile(`\b`+name+`\b`).ReplaceAllString(expr, "("+ctx.inputExpr(id, i)+")")
	}
	w.Line("%s = (double)(%s);", ctx.sig(id, 0), expr)
}
