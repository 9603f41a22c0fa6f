// Parser builds an internal/expr tree from the token stream lexer.go
// produces: a recursive-descent compiler front end for the practical
// XPath 2.0 / XQuery 1.0 subset this package's doc comment names. Each
// grammar production below is a method named after its EBNF production:
// one method per nonterminal, no backtracking, and no decision looks more
// than three tokens ahead (an axis name's "::", a prefixed function
// name's "(").
package parse

import (
	"fmt"
	"strconv"

	"github.com/oxhq/xpathcore/internal/collate"
	"github.com/oxhq/xpathcore/internal/eval"
	"github.com/oxhq/xpathcore/internal/expr"
	"github.com/oxhq/xpathcore/internal/node"
	"github.com/oxhq/xpathcore/internal/value"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// StaticContext carries the compile-time configuration a parse needs: the function library a
// call resolves against, the default collation new comparisons use, and
// the implicit timezone fed to comparisons between calendar values with
// and without a timezone.
type StaticContext struct {
	Functions               *expr.FunctionLibrary
	DefaultCollation        collate.StringCollator
	ImplicitTimezoneMinutes int

	// ExternalVariables declares the names a caller may bind before
	// evaluation, so that a
	// VarRef to one of them resolves statically instead of raising
	// XPST0008. Each is reachable afterward via ExternalVariableKey.
	ExternalVariables map[string]xdm.SequenceType
}

// DefaultStaticContext returns a StaticContext wired to the core
// function library and the codepoint collation, the baseline every
// facade.compileXPath caller gets unless it supplies its own.
func DefaultStaticContext() *StaticContext {
	return &StaticContext{
		Functions:        expr.NewCoreFunctionLibrary(),
		DefaultCollation: collate.Codepoint,
	}
}

// ExternalVariableKey returns the VarKey a compiled expression resolves a
// reference to an external variable named name to, stable across parses
// of the same StaticContext so a caller can bind it on every evaluation.
func ExternalVariableKey(name string) eval.VarKey {
	return eval.VarKey{URI: "external", Local: name}
}

// parser holds the token stream and the lexical scope of variables
// declared by enclosing for/let/quantified clauses, resolved to VarKeys
// at parse time the way a real compiler resolves lexical scope before
// any evaluation occurs.
type parser struct {
	toks []token
	pos  int
	sc   *StaticContext
	// scope maps a declared variable's source name to the VarKey the
	// innermost enclosing binding for that name was assigned; parser
	// generates a fresh key per binding (rather than reusing the source
	// name) so that shadowed names resolve unambiguously.
	scope   map[string][]eval.VarKey
	counter int
}

// ParseError reports a syntax or static-resolution error encountered
// while compiling source, with no evaluation context.
type ParseError struct{ inner error }

func (e *ParseError) Error() string { return e.inner.Error() }
func (e *ParseError) Unwrap() error { return e.inner }

// Parse compiles source into an expr.Expression using sc's function
// library and default collation. The returned tree has not yet run
// through simplify/typeCheck/optimize/promote; a caller (normally the
// facade package) runs those passes before evaluation.
func Parse(source string, sc *StaticContext) (expr.Expression, error) {
	if sc == nil {
		sc = DefaultStaticContext()
	}
	toks, err := tokenize(source)
	if err != nil {
		return nil, &ParseError{err}
	}
	p := &parser{toks: toks, sc: sc, scope: make(map[string][]eval.VarKey)}
	for name := range sc.ExternalVariables {
		p.scope[name] = []eval.VarKey{ExternalVariableKey(name)}
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, &ParseError{err}
	}
	if p.cur().kind != tokEOF {
		return nil, &ParseError{fmt.Errorf("parse: unexpected trailing input at token %d", p.pos)}
	}
	return e, nil
}

func tokenize(source string) ([]token, error) {
	l := newLexer(source)
	var out []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		if t.kind == tokEOF {
			return out, nil
		}
	}
}

func (p *parser) cur() token  { return p.toks[p.pos] }
func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) isName(text string) bool {
	return p.cur().kind == tokName && p.cur().text == text
}

func (p *parser) expectName(text string) error {
	if !p.isName(text) {
		return fmt.Errorf("parse: expected %q, got %q", text, p.cur().text)
	}
	p.advance()
	return nil
}

func (p *parser) expect(kind tokenKind, what string) error {
	if p.cur().kind != kind {
		return fmt.Errorf("parse: expected %s", what)
	}
	p.advance()
	return nil
}

// pushVar declares name in the current lexical scope, returning the
// fresh VarKey assigned to this binding.
func (p *parser) pushVar(name string) eval.VarKey {
	p.counter++
	key := eval.VarKey{URI: "local", Local: fmt.Sprintf("%s#%d", name, p.counter)}
	p.scope[name] = append(p.scope[name], key)
	return key
}

// popVar removes the innermost binding for name, restoring whatever
// (possibly none) binding shadowed it.
func (p *parser) popVar(name string) {
	stack := p.scope[name]
	p.scope[name] = stack[:len(stack)-1]
}

func (p *parser) lookupVar(name string) (eval.VarKey, bool) {
	stack := p.scope[name]
	if len(stack) == 0 {
		return eval.VarKey{}, false
	}
	return stack[len(stack)-1], true
}

// ---- Expr ::= ExprSingle ("," ExprSingle)* ----

func (p *parser) parseExpr() (expr.Expression, error) {
	first, err := p.parseExprSingle()
	if err != nil {
		return nil, err
	}
	if p.cur().kind != tokComma {
		return first, nil
	}
	parts := []expr.Expression{first}
	for p.cur().kind == tokComma {
		p.advance()
		next, err := p.parseExprSingle()
		if err != nil {
			return nil, err
		}
		parts = append(parts, next)
	}
	return expr.NewSequenceConstructor(parts), nil
}

// ExprSingle ::= ForExpr | QuantifiedExpr | IfExpr | OrExpr
func (p *parser) parseExprSingle() (expr.Expression, error) {
	switch {
	case p.isName("for"):
		return p.parseFor()
	case p.isName("let"):
		return p.parseLet()
	case p.isName("some"), p.isName("every"):
		return p.parseQuantified()
	case p.isName("if"):
		return p.parseIf()
	default:
		return p.parseOrExpr()
	}
}

func (p *parser) parseFor() (expr.Expression, error) {
	if err := p.expectName("for"); err != nil {
		return nil, err
	}
	if err := p.expect(tokVar, "variable after 'for'"); err != nil {
		return nil, err
	}
	name := p.toks[p.pos-1].text
	if err := p.expectName("in"); err != nil {
		return nil, err
	}
	source, err := p.parseExprSingle()
	if err != nil {
		return nil, err
	}
	key := p.pushVar(name)
	defer p.popVar(name)

	var positionKey eval.VarKey
	hasPosition := false
	if p.isName("at") {
		p.advance()
		if err := p.expect(tokVar, "variable after 'at'"); err != nil {
			return nil, err
		}
		posName := p.toks[p.pos-1].text
		positionKey = p.pushVar(posName)
		hasPosition = true
		defer p.popVar(posName)
	}
	if err := p.expectName("return"); err != nil {
		return nil, err
	}
	body, err := p.parseExprSingle()
	if err != nil {
		return nil, err
	}
	f := expr.NewForExpression(key, name, source, body)
	if hasPosition {
		f.WithPositionalVariable(positionKey)
	}
	return f, nil
}

func (p *parser) parseLet() (expr.Expression, error) {
	if err := p.expectName("let"); err != nil {
		return nil, err
	}
	if err := p.expect(tokVar, "variable after 'let'"); err != nil {
		return nil, err
	}
	name := p.toks[p.pos-1].text
	if err := p.expect(tokColon, "':=' after variable name"); err != nil {
		return nil, err
	}
	if err := p.expect(tokEq, "':=' after variable name"); err != nil {
		return nil, err
	}
	source, err := p.parseExprSingle()
	if err != nil {
		return nil, err
	}
	key := p.pushVar(name)
	defer p.popVar(name)
	if err := p.expectName("return"); err != nil {
		return nil, err
	}
	body, err := p.parseExprSingle()
	if err != nil {
		return nil, err
	}
	return expr.NewLetExpression(key, name, source, body), nil
}

func (p *parser) parseQuantified() (expr.Expression, error) {
	kind := expr.QuantifierSome
	if p.isName("every") {
		kind = expr.QuantifierEvery
	}
	p.advance()
	if err := p.expect(tokVar, "variable after quantifier"); err != nil {
		return nil, err
	}
	name := p.toks[p.pos-1].text
	if err := p.expectName("in"); err != nil {
		return nil, err
	}
	source, err := p.parseExprSingle()
	if err != nil {
		return nil, err
	}
	key := p.pushVar(name)
	defer p.popVar(name)
	if err := p.expectName("satisfies"); err != nil {
		return nil, err
	}
	test, err := p.parseExprSingle()
	if err != nil {
		return nil, err
	}
	return expr.NewQuantifiedExpression(kind, key, name, source, test), nil
}

func (p *parser) parseIf() (expr.Expression, error) {
	if err := p.expectName("if"); err != nil {
		return nil, err
	}
	if err := p.expect(tokLParen, "'(' after 'if'"); err != nil {
		return nil, err
	}
	test, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokRParen, "')' after if test"); err != nil {
		return nil, err
	}
	if err := p.expectName("then"); err != nil {
		return nil, err
	}
	thenExpr, err := p.parseExprSingle()
	if err != nil {
		return nil, err
	}
	if err := p.expectName("else"); err != nil {
		return nil, err
	}
	elseExpr, err := p.parseExprSingle()
	if err != nil {
		return nil, err
	}
	return expr.NewIfExpression(test, thenExpr, elseExpr), nil
}

// OrExpr ::= AndExpr ("or" AndExpr)*
func (p *parser) parseOrExpr() (expr.Expression, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.isName("or") {
		p.advance()
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = expr.NewOrExpression(left, right)
	}
	return left, nil
}

// AndExpr ::= ComparisonExpr ("and" ComparisonExpr)*
func (p *parser) parseAndExpr() (expr.Expression, error) {
	left, err := p.parseComparisonExpr()
	if err != nil {
		return nil, err
	}
	for p.isName("and") {
		p.advance()
		right, err := p.parseComparisonExpr()
		if err != nil {
			return nil, err
		}
		left = expr.NewAndExpression(left, right)
	}
	return left, nil
}

// ComparisonExpr ::= RangeExpr ( (ValueComp|GeneralComp|NodeComp) RangeExpr )?
func (p *parser) parseComparisonExpr() (expr.Expression, error) {
	left, err := p.parseRangeExpr()
	if err != nil {
		return nil, err
	}
	if op, isValue, ok := p.generalOrValueCompareOp(); ok {
		p.advance()
		right, err := p.parseRangeExpr()
		if err != nil {
			return nil, err
		}
		if isValue {
			return expr.NewValueComparison(op, left, right, p.sc.DefaultCollation, p.sc.ImplicitTimezoneMinutes), nil
		}
		return expr.NewGeneralComparison(op, left, right, p.sc.DefaultCollation, p.sc.ImplicitTimezoneMinutes), nil
	}
	if nodeOp, ok := p.nodeCompareOp(); ok {
		p.advance()
		right, err := p.parseRangeExpr()
		if err != nil {
			return nil, err
		}
		return expr.NewNodeComparison(nodeOp, left, right, false), nil
	}
	return left, nil
}

// RangeExpr ::= AdditiveExpr ("to" AdditiveExpr)?
func (p *parser) parseRangeExpr() (expr.Expression, error) {
	left, err := p.parseAdditiveExpr()
	if err != nil {
		return nil, err
	}
	if p.isName("to") {
		p.advance()
		right, err := p.parseAdditiveExpr()
		if err != nil {
			return nil, err
		}
		return expr.NewRangeExpression(left, right), nil
	}
	return left, nil
}

// generalOrValueCompareOp recognizes "=", "!=", "<", "<=", ">", ">=" (a
// general comparison) and the keyword spellings "eq"/"ne"/"lt"/"le"/
// "gt"/"ge" (a value comparison).
func (p *parser) generalOrValueCompareOp() (expr.CompareOp, bool, bool) {
	switch p.cur().kind {
	case tokEq:
		return expr.OpEQ, false, true
	case tokNe:
		return expr.OpNE, false, true
	case tokLt:
		return expr.OpLT, false, true
	case tokLe:
		return expr.OpLE, false, true
	case tokGt:
		return expr.OpGT, false, true
	case tokGe:
		return expr.OpGE, false, true
	}
	if p.cur().kind == tokName {
		switch p.cur().text {
		case "eq":
			return expr.OpEQ, true, true
		case "ne":
			return expr.OpNE, true, true
		case "lt":
			return expr.OpLT, true, true
		case "le":
			return expr.OpLE, true, true
		case "gt":
			return expr.OpGT, true, true
		case "ge":
			return expr.OpGE, true, true
		}
	}
	return 0, false, false
}

func (p *parser) nodeCompareOp() (expr.NodeComparisonOp, bool) {
	switch p.cur().kind {
	case tokLtLt:
		return expr.NodePrecedes, true
	case tokGtGt:
		return expr.NodeFollows, true
	}
	if p.isName("is") {
		return expr.NodeIs, true
	}
	return 0, false
}

// AdditiveExpr ::= MultiplicativeExpr (("+"|"-") MultiplicativeExpr)*
func (p *parser) parseAdditiveExpr() (expr.Expression, error) {
	left, err := p.parseMultiplicativeExpr()
	if err != nil {
		return nil, err
	}
	for p.cur().kind == tokPlus || p.cur().kind == tokMinus {
		op := expr.OpAdd
		if p.cur().kind == tokMinus {
			op = expr.OpSub
		}
		p.advance()
		right, err := p.parseMultiplicativeExpr()
		if err != nil {
			return nil, err
		}
		left = expr.NewArithmetic(op, left, right)
	}
	return left, nil
}

// MultiplicativeExpr ::= UnionExpr (("*"|"div"|"idiv"|"mod") UnionExpr)*
func (p *parser) parseMultiplicativeExpr() (expr.Expression, error) {
	left, err := p.parseUnionExpr()
	if err != nil {
		return nil, err
	}
	for {
		var op expr.ArithOp
		matched := true
		switch {
		case p.cur().kind == tokStar:
			op = expr.OpMul
		case p.isName("div"):
			op = expr.OpDiv
		case p.isName("idiv"):
			op = expr.OpIDiv
		case p.isName("mod"):
			op = expr.OpMod
		default:
			matched = false
		}
		if !matched {
			break
		}
		p.advance()
		right, err := p.parseUnionExpr()
		if err != nil {
			return nil, err
		}
		left = expr.NewArithmetic(op, left, right)
	}
	return left, nil
}

// UnionExpr ::= InstanceofExpr (("|"|"union") InstanceofExpr)*
// Implemented as a document-order-merged sequence constructor, since
// this package's scope does not include a dedicated Union node: a
// union of two node-sets is exactly "both sequences, deduplicated and
// sorted into document order", which DocumentOrderExpression already
// provides over a SequenceConstructor of the two operands.
func (p *parser) parseUnionExpr() (expr.Expression, error) {
	left, err := p.parseInstanceofExpr()
	if err != nil {
		return nil, err
	}
	for p.cur().kind == tokPipe || p.isName("union") {
		p.advance()
		right, err := p.parseInstanceofExpr()
		if err != nil {
			return nil, err
		}
		left = expr.NewDocumentOrderExpression(expr.NewSequenceConstructor([]expr.Expression{left, right}), false)
	}
	return left, nil
}

// InstanceofExpr ::= CastExpr ("instance" "of" SequenceType)?
func (p *parser) parseInstanceofExpr() (expr.Expression, error) {
	operand, err := p.parseCastExpr()
	if err != nil {
		return nil, err
	}
	if p.isName("instance") {
		p.advance()
		if err := p.expectName("of"); err != nil {
			return nil, err
		}
		st, err := p.parseSequenceType()
		if err != nil {
			return nil, err
		}
		return expr.NewInstanceOf(operand, st), nil
	}
	return operand, nil
}

// CastExpr ::= UnaryExpr ("cast" "as" SingleType)?
func (p *parser) parseCastExpr() (expr.Expression, error) {
	operand, err := p.parseUnaryExpr()
	if err != nil {
		return nil, err
	}
	if p.isName("cast") {
		p.advance()
		if err := p.expectName("as"); err != nil {
			return nil, err
		}
		target, allowsEmpty, err := p.parseSingleType()
		if err != nil {
			return nil, err
		}
		return expr.NewCastExpression(operand, target, allowsEmpty), nil
	}
	return operand, nil
}

func (p *parser) parseSingleType() (xdm.Type, bool, error) {
	name, err := p.parseQName()
	if err != nil {
		return 0, false, err
	}
	t, ok := xdm.LookupByName(name)
	if !ok {
		return 0, false, fmt.Errorf("parse: unknown type name %q", name)
	}
	allowsEmpty := false
	if p.cur().kind == tokQuestion {
		p.advance()
		allowsEmpty = true
	}
	return t, allowsEmpty, nil
}

func (p *parser) parseSequenceType() (xdm.SequenceType, error) {
	if p.isName("empty-sequence") {
		p.advance()
		if err := p.expect(tokLParen, "'(' after empty-sequence"); err != nil {
			return xdm.SequenceType{}, err
		}
		if err := p.expect(tokRParen, "')' after empty-sequence("); err != nil {
			return xdm.SequenceType{}, err
		}
		return xdm.EmptySequenceType, nil
	}
	name, err := p.parseQName()
	if err != nil {
		return xdm.SequenceType{}, err
	}
	// KindTest-style "node()", "element()" etc: consume an optional
	// empty parameter list.
	if p.cur().kind == tokLParen {
		p.advance()
		if err := p.expect(tokRParen, "')'"); err != nil {
			return xdm.SequenceType{}, err
		}
	}
	t, ok := xdm.LookupByName(name)
	if !ok {
		return xdm.SequenceType{}, fmt.Errorf("parse: unknown type name %q", name)
	}
	card := xdm.CardinalityExactlyOne
	switch p.cur().kind {
	case tokQuestion:
		p.advance()
		card = xdm.CardinalityZeroOrOne
	case tokStar:
		p.advance()
		card = xdm.CardinalityZeroOrMore
	case tokPlus:
		p.advance()
		card = xdm.CardinalityOneOrMore
	}
	return xdm.SequenceType{ItemType: t, Cardinality: card}, nil
}

// UnaryExpr ::= ("-"|"+")* ValueExpr
func (p *parser) parseUnaryExpr() (expr.Expression, error) {
	negate := false
	for p.cur().kind == tokPlus || p.cur().kind == tokMinus {
		if p.cur().kind == tokMinus {
			negate = !negate
		}
		p.advance()
	}
	operand, err := p.parsePathExpr()
	if err != nil {
		return nil, err
	}
	if !negate {
		return operand, nil
	}
	zero := expr.NewAtomicLiteral(value.NewInteger(xdm.TypeInteger, 0))
	return expr.NewArithmetic(expr.OpSub, zero, operand), nil
}

// PathExpr / RelativePathExpr: a chain of StepExprs separated by "/" or
// "//", with a leading "/" or "//" meaning "relative to the context
// item" (this package does not model an external document root, so a
// leading slash is parsed but has no distinguished root step — it
// behaves like a relative path, the same context-item-rooted
// evaluation every other path expression uses; a hosting facade layer
// that establishes a document root for absolute paths can wrap the
// compiled tree in its own context-item binding before evaluation).
func (p *parser) parsePathExpr() (expr.Expression, error) {
	leadingDoubleSlash := false
	if p.cur().kind == tokSlashSlash {
		leadingDoubleSlash = true
		p.advance()
	} else if p.cur().kind == tokSlash {
		p.advance()
	}
	first, err := p.parseStepExpr()
	if err != nil {
		return nil, err
	}
	result := first
	if leadingDoubleSlash {
		descAll := expr.NewAxisStep(node.AxisDescendantOrSelf, expr.KindTest{Kind: xdm.TypeNode}, nil)
		result = expr.NewPathExpression(descAll, first)
	}
	for p.cur().kind == tokSlash || p.cur().kind == tokSlashSlash {
		doubleSlash := p.cur().kind == tokSlashSlash
		p.advance()
		next, err := p.parseStepExpr()
		if err != nil {
			return nil, err
		}
		if doubleSlash {
			descAll := expr.NewAxisStep(node.AxisDescendantOrSelf, expr.KindTest{Kind: xdm.TypeNode}, nil)
			result = expr.NewPathExpression(result, expr.NewPathExpression(descAll, next))
		} else {
			result = expr.NewPathExpression(result, next)
		}
	}
	return result, nil
}

// StepExpr ::= AxisStep | FilterExpr(PrimaryExpr predicates)
func (p *parser) parseStepExpr() (expr.Expression, error) {
	switch {
	case p.cur().kind == tokDotDot:
		p.advance()
		return p.parsePredicates(expr.NewAxisStep(node.AxisParent, expr.KindTest{Kind: xdm.TypeNode}, nil))
	case p.cur().kind == tokAt:
		p.advance()
		test, err := p.parseNodeTest(xdm.TypeAttribute)
		if err != nil {
			return nil, err
		}
		return p.parsePredicates(expr.NewAxisStep(node.AxisAttribute, test, nil))
	case p.isName("child"), p.isName("descendant"), p.isName("descendant-or-self"),
		p.isName("parent"), p.isName("ancestor"), p.isName("ancestor-or-self"),
		p.isName("following-sibling"), p.isName("preceding-sibling"),
		p.isName("following"), p.isName("preceding"), p.isName("self"),
		p.isName("attribute"), p.isName("namespace"):
		if p.peekAxisSeparator() {
			axis, err := p.parseAxisName()
			if err != nil {
				return nil, err
			}
			principal := xdm.TypeElement
			if axis == node.AxisAttribute {
				principal = xdm.TypeAttribute
			}
			test, err := p.parseNodeTest(principal)
			if err != nil {
				return nil, err
			}
			return p.parsePredicates(expr.NewAxisStep(axis, test, nil))
		}
		return p.parsePrimaryOrBareName()
	case p.cur().kind == tokDot, p.cur().kind == tokStar, p.cur().kind == tokName:
		return p.parsePrimaryOrBareName()
	default:
		return p.parsePrimaryExprPredicated()
	}
}

// peekAxisSeparator reports whether the upcoming tokens form an
// "axisname ::" pair without consuming anything.
func (p *parser) peekAxisSeparator() bool {
	return p.toks[p.pos+1].kind == tokColonColon
}

func (p *parser) parseAxisName() (node.Axis, error) {
	name := p.advance().text
	if err := p.expect(tokColonColon, "'::' after axis name"); err != nil {
		return 0, err
	}
	switch name {
	case "child":
		return node.AxisChild, nil
	case "descendant":
		return node.AxisDescendant, nil
	case "descendant-or-self":
		return node.AxisDescendantOrSelf, nil
	case "parent":
		return node.AxisParent, nil
	case "ancestor":
		return node.AxisAncestor, nil
	case "ancestor-or-self":
		return node.AxisAncestorOrSelf, nil
	case "following-sibling":
		return node.AxisFollowingSibling, nil
	case "preceding-sibling":
		return node.AxisPrecedingSibling, nil
	case "following":
		return node.AxisFollowing, nil
	case "preceding":
		return node.AxisPreceding, nil
	case "self":
		return node.AxisSelf, nil
	case "attribute":
		return node.AxisAttribute, nil
	case "namespace":
		return node.AxisNamespace, nil
	default:
		return 0, fmt.Errorf("parse: unknown axis %q", name)
	}
}

// parsePrimaryOrBareName handles the ambiguity between a bare NCName
// step (an abbreviated child::NCName axis step, or a KindTest like
// node()/text(), or a function call if followed immediately by "(")
// and every other PrimaryExpr production.
func (p *parser) parsePrimaryOrBareName() (expr.Expression, error) {
	if p.cur().kind == tokDot {
		p.advance()
		return p.parsePredicates(expr.NewContextItemExpression())
	}
	if p.cur().kind == tokStar {
		p.advance()
		test, err := p.finishQNameTest("*", xdm.TypeElement)
		if err != nil {
			return nil, err
		}
		return p.parsePredicates(expr.NewAxisStep(node.AxisChild, test, nil))
	}
	if p.cur().kind == tokName {
		name := p.cur().text
		switch name {
		case "node", "text", "comment", "processing-instruction", "document-node", "element", "attribute", "schema-element", "schema-attribute":
			if p.toks[p.pos+1].kind == tokLParen {
				return p.parseKindTestStep()
			}
		}
		if p.toks[p.pos+1].kind == tokLParen {
			return p.parsePrimaryExprPredicated()
		}
		// A prefixed name directly followed by "(" is a function call
		// (xs:dateTime("..."), my:f(1)), never a name-test step.
		if p.toks[p.pos+1].kind == tokColon && p.pos+3 < len(p.toks) &&
			p.toks[p.pos+2].kind == tokName && p.toks[p.pos+3].kind == tokLParen {
			return p.parsePrimaryExprPredicated()
		}
		// Bare NCName or prefixed QName: an abbreviated child:: step,
		// unless it's a keyword with special meaning at this position
		// (handled by the caller before reaching here).
		test, err := p.parseNodeTest(xdm.TypeElement)
		if err != nil {
			return nil, err
		}
		return p.parsePredicates(expr.NewAxisStep(node.AxisChild, test, nil))
	}
	return p.parsePrimaryExprPredicated()
}

func (p *parser) parseKindTestStep() (expr.Expression, error) {
	test, err := p.parseNodeTest(xdm.TypeElement)
	if err != nil {
		return nil, err
	}
	return p.parsePredicates(expr.NewAxisStep(node.AxisChild, test, nil))
}

// parseNodeTest parses a NameTest or a KindTest as it appears after an
// axis (or as an abbreviated child step), given the axis's principal
// node kind (element for most axes, attribute for attribute::/@).
func (p *parser) parseNodeTest(principal xdm.Type) (expr.NodeTest, error) {
	if p.cur().kind == tokStar {
		p.advance()
		return p.finishQNameTest("*", principal)
	}
	if p.cur().kind != tokName {
		return nil, fmt.Errorf("parse: expected a node test")
	}
	name := p.advance().text
	switch name {
	case "node":
		return p.finishKindTest(xdm.TypeNode)
	case "text":
		return p.finishKindTest(xdm.TypeText)
	case "comment":
		return p.finishKindTest(xdm.TypeComment)
	case "processing-instruction":
		return p.finishKindTest(xdm.TypeProcessingInstruction)
	case "document-node":
		return p.finishKindTest(xdm.TypeDocument)
	case "element":
		return p.finishKindTest(xdm.TypeElement)
	case "attribute":
		return p.finishKindTest(xdm.TypeAttribute)
	}
	return p.finishQNameTest(name, principal)
}

func (p *parser) finishKindTest(kind xdm.Type) (expr.NodeTest, error) {
	if p.cur().kind == tokLParen {
		p.advance()
		if err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
	}
	return expr.KindTest{Kind: kind}, nil
}

// finishQNameTest builds a NameTest from the already-consumed first
// component (a local name, a prefix before ':', or "*"), resolving the
// optional ":local" or ":*" continuation.
func (p *parser) finishQNameTest(first string, principal xdm.Type) (expr.NodeTest, error) {
	if p.cur().kind == tokColon {
		p.advance()
		if p.cur().kind == tokStar {
			p.advance()
			return expr.NameTest{PrincipalKind: principal, URI: first, LocalWildcard: true}, nil
		}
		if p.cur().kind != tokName {
			return nil, fmt.Errorf("parse: expected local name after ':'")
		}
		local := p.advance().text
		if first == "*" {
			return expr.NameTest{PrincipalKind: principal, Local: local, URIWildcard: true}, nil
		}
		return expr.NameTest{PrincipalKind: principal, URI: first, Local: local}, nil
	}
	if first == "*" {
		return expr.NameTest{PrincipalKind: principal, URIWildcard: true, LocalWildcard: true}, nil
	}
	return expr.NameTest{PrincipalKind: principal, Local: first}, nil
}

// parseQName consumes an NCName or prefixed QName as plain text,
// without resolving it against a node test principal kind (used by
// cast/instance-of target type names and function names).
func (p *parser) parseQName() (string, error) {
	if p.cur().kind != tokName {
		return "", fmt.Errorf("parse: expected a name")
	}
	first := p.advance().text
	if p.cur().kind == tokColon && p.toks[p.pos+1].kind != tokColon {
		p.advance()
		if p.cur().kind != tokName {
			return "", fmt.Errorf("parse: expected local name after ':'")
		}
		second := p.advance().text
		return first + ":" + second, nil
	}
	return first, nil
}

// parsePredicates wraps base with zero or more "[Expr]" predicates.
func (p *parser) parsePredicates(base expr.Expression) (expr.Expression, error) {
	result := base
	for p.cur().kind == tokLBracket {
		p.advance()
		pred, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRBracket, "']'"); err != nil {
			return nil, err
		}
		result = expr.NewFilterExpression(result, pred)
	}
	return result, nil
}

// parsePrimaryExprPredicated parses a PrimaryExpr and then any trailing
// predicates, the shape every non-axis-step primary still allows
// ("(1,2,3)[2]", "$seq[. > 1]", "f()[1]").
func (p *parser) parsePrimaryExprPredicated() (expr.Expression, error) {
	prim, err := p.parsePrimaryExpr()
	if err != nil {
		return nil, err
	}
	return p.parsePredicates(prim)
}

// PrimaryExpr ::= Literal | VarRef | ParenthesizedExpr | ContextItemExpr
//
//	| FunctionCall
func (p *parser) parsePrimaryExpr() (expr.Expression, error) {
	switch p.cur().kind {
	case tokNumber:
		return p.parseNumericLiteral()
	case tokString:
		lit := expr.NewAtomicLiteral(value.NewString(p.advance().text))
		return lit, nil
	case tokVar:
		name := p.advance().text
		key, ok := p.lookupVar(name)
		if !ok {
			return nil, fmt.Errorf("parse: reference to undeclared variable $%s", name)
		}
		declared := xdm.SequenceType{ItemType: xdm.TypeItem, Cardinality: xdm.CardinalityZeroOrMore}
		if st, ok := p.sc.ExternalVariables[name]; ok {
			declared = st
		}
		return expr.NewVariableReference(key, name, declared), nil
	case tokLParen:
		p.advance()
		if p.cur().kind == tokRParen {
			p.advance()
			return expr.EmptyLiteral, nil
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	case tokDot:
		p.advance()
		return expr.NewContextItemExpression(), nil
	case tokName:
		return p.parseFunctionCall()
	}
	return nil, fmt.Errorf("parse: unexpected token in expression")
}

func (p *parser) parseNumericLiteral() (expr.Expression, error) {
	text := p.advance().text
	if !containsAny(text, ".eE") {
		var n int64
		if _, err := fmt.Sscanf(text, "%d", &n); err != nil {
			return nil, fmt.Errorf("parse: invalid integer literal %q", text)
		}
		return expr.NewAtomicLiteral(value.NewInteger(xdm.TypeInteger, n)), nil
	}
	// An exponent makes the literal an xs:double; a bare decimal point
	// makes it an xs:decimal, per the XPath numeric-literal rules.
	if containsAny(text, "eE") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("parse: invalid double literal %q", text)
		}
		return expr.NewAtomicLiteral(value.NewDouble(f)), nil
	}
	d, ok := value.ParseDecimal(text)
	if !ok {
		return nil, fmt.Errorf("parse: invalid numeric literal %q", text)
	}
	return expr.NewAtomicLiteral(value.NewDecimal(d)), nil
}

func containsAny(s, chars string) bool {
	for _, c := range chars {
		for _, r := range s {
			if r == c {
				return true
			}
		}
	}
	return false
}

// FunctionCall ::= QName "(" (ExprSingle ("," ExprSingle)*)? ")"
func (p *parser) parseFunctionCall() (expr.Expression, error) {
	name, err := p.parseQName()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokLParen, "'(' after function name"); err != nil {
		return nil, err
	}
	var args []expr.Expression
	if p.cur().kind != tokRParen {
		for {
			a, err := p.parseExprSingle()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.cur().kind != tokComma {
				break
			}
			p.advance()
		}
	}
	if err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	qualified := name
	if !containsColon(name) {
		qualified = "fn:" + name
	}
	return expr.NewFunctionCall(p.sc.Functions, qualified, args)
}

func containsColon(s string) bool {
	for _, r := range s {
		if r == ':' {
			return true
		}
	}
	return false
}
