package expr

import (
	"strings"

	"github.com/oxhq/xpathcore/internal/collate"
	"github.com/oxhq/xpathcore/internal/compare"
	"github.com/oxhq/xpathcore/internal/eval"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/value"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// SortKey pairs a key-selecting expression with its ordering:
// ascending/descending, the collation to compare
// strings under, and which end empty sequences sort to. It is the
// compiled form of one xsl:sort or FLWOR "order by" key specification.
type SortKey struct {
	Select    Expression
	Ascending bool
	Collator  collate.StringCollator
	Empty     compare.EmptyOrder
}

// SortExpression sorts the items of Source by one or more SortKeys,
// stable on ties. It evaluates every key
// expression with the candidate item as the context item, exactly the
// way xsl:sort's select attribute and a FLWOR order-by clause both work.
type SortExpression struct {
	base
	Source Expression
	Keys   []SortKey
}

// NewSortExpression builds a SortExpression with Source's own item type
// and cardinality (sorting never changes which items are present).
func NewSortExpression(source Expression, keys []SortKey) *SortExpression {
	s := &SortExpression{Source: source, Keys: keys}
	s.staticType = source.StaticType()
	return s
}

func (s *SortExpression) Iterate(ctx *eval.Context) (sequence.Iterator, error) {
	it, err := s.Source.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	items, err := sequence.Drain(it)
	if err != nil {
		return nil, err
	}
	records := make([]compare.Record, len(items))
	for i, item := range items {
		keys := make([]value.AtomicValue, len(s.Keys))
		for k, sk := range s.Keys {
			itemCtx := ctx.WithContextItem(item)
			kv, err := atomizeOne(sk.Select, itemCtx)
			if err != nil {
				return nil, err
			}
			keys[k] = kv
		}
		records[i] = compare.Record{Item: item, Keys: keys, Original: i}
	}
	specs := make([]compare.SortKeySpec, len(s.Keys))
	for k, sk := range s.Keys {
		specs[k] = compare.SortKeySpec{
			Comparer:  compare.NewSortComparer(compare.NewGeneralComparer(sk.Collator, 0)),
			Ascending: sk.Ascending,
			Empty:     sk.Empty,
		}
	}
	if err := compare.Sort(records, specs); err != nil {
		return nil, err
	}
	out := make([]sequence.Item, len(records))
	for i, r := range records {
		out[i] = r.Item
	}
	return sequence.NewGroundedSequence(out).Iterate(), nil
}

func (s *SortExpression) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	return eval.EvaluateItem(s, ctx)
}

func (s *SortExpression) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	return eval.EffectiveBooleanValue(s, ctx)
}

func (s *SortExpression) Simplify() (Expression, error) { return defaultSimplify(s) }
func (s *SortExpression) TypeCheck(xdm.SequenceType) (Expression, error) {
	return defaultTypeCheck(s)
}

// Optimize combines adjacent sorts: a SortExpression directly wrapping
// another SortExpression (xsl:sort's own "stable" semantics means
// re-sorting an already-sorted sequence is equivalent to one sort whose
// key list is the outer keys followed by the inner ones as tiebreakers)
// collapses into a single SortExpression over the inner Source.
func (s *SortExpression) Optimize() (Expression, error) {
	optimized, err := defaultOptimize(s)
	if err != nil {
		return nil, err
	}
	s, ok := optimized.(*SortExpression)
	if !ok {
		return optimized, nil
	}
	if inner, ok := s.Source.(*SortExpression); ok {
		combined := make([]SortKey, 0, len(s.Keys)+len(inner.Keys))
		combined = append(combined, s.Keys...)
		combined = append(combined, inner.Keys...)
		return NewSortExpression(inner.Source, combined), nil
	}
	return s, nil
}

func (s *SortExpression) Promote(offer *PromotionOffer) (Expression, error) {
	return defaultPromote(s, offer)
}

func (s *SortExpression) SubExpressions() []Expression {
	subs := make([]Expression, 0, len(s.Keys)+1)
	subs = append(subs, s.Source)
	for _, k := range s.Keys {
		subs = append(subs, k.Select)
	}
	return subs
}

func (s *SortExpression) ReplaceSubExpression(old, replacement Expression) bool {
	if s.Source == old {
		s.Source = replacement
		return true
	}
	for i, k := range s.Keys {
		if k.Select == old {
			s.Keys[i].Select = replacement
			return true
		}
	}
	return false
}

func (s *SortExpression) Display(indent int) string {
	pad := strings.Repeat("  ", indent)
	var b strings.Builder
	b.WriteString(pad + "sort\n" + s.Source.Display(indent+1))
	for _, k := range s.Keys {
		dir := "ascending"
		if !k.Ascending {
			dir = "descending"
		}
		b.WriteString("\n" + pad + "  key(" + dir + ")\n" + k.Select.Display(indent+2))
	}
	return b.String()
}

// DocumentOrderExpression wraps Source with document-order dedup/sort
// postprocessing, applied to any node-set expression not already
// statically known ordered (PropOrderedNodeset).
type DocumentOrderExpression struct {
	base
	Source         Expression
	SingleDocument bool
}

// NewDocumentOrderExpression builds a DocumentOrderExpression. If Source
// is already ordered this is a cheap idempotent pass-through.
func NewDocumentOrderExpression(source Expression, singleDocument bool) *DocumentOrderExpression {
	d := &DocumentOrderExpression{Source: source, SingleDocument: singleDocument}
	d.staticType = source.StaticType()
	d.props = PropOrderedNodeset
	if singleDocument {
		d.props |= PropSingleDocumentNodeset
	}
	return d
}

func (d *DocumentOrderExpression) Iterate(ctx *eval.Context) (sequence.Iterator, error) {
	it, err := d.Source.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	items, err := sequence.Drain(it)
	if err != nil {
		return nil, err
	}
	alreadyOrdered := d.Source.SpecialProperties().Has(PropOrderedNodeset)
	ordered, err := compare.DocumentOrder(items, d.SingleDocument, alreadyOrdered)
	if err != nil {
		return nil, err
	}
	return sequence.NewGroundedSequence(ordered).Iterate(), nil
}

func (d *DocumentOrderExpression) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	return eval.EvaluateItem(d, ctx)
}

func (d *DocumentOrderExpression) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	return eval.EffectiveBooleanValue(d, ctx)
}

func (d *DocumentOrderExpression) Simplify() (Expression, error) { return defaultSimplify(d) }
func (d *DocumentOrderExpression) TypeCheck(xdm.SequenceType) (Expression, error) {
	return defaultTypeCheck(d)
}

// Optimize eliminates the wrapper entirely once Source is statically
// known ordered. Doing this at compile time instead of leaving it to the
// runtime check inside Iterate means a later pass sees the plain Source
// node, not a DocumentOrderExpression around it.
func (d *DocumentOrderExpression) Optimize() (Expression, error) {
	optimized, err := defaultOptimize(d)
	if err != nil {
		return nil, err
	}
	d, ok := optimized.(*DocumentOrderExpression)
	if !ok {
		return optimized, nil
	}
	if d.Source.SpecialProperties().Has(PropOrderedNodeset) {
		return d.Source, nil
	}
	return d, nil
}

func (d *DocumentOrderExpression) Promote(offer *PromotionOffer) (Expression, error) {
	return defaultPromote(d, offer)
}

func (d *DocumentOrderExpression) SubExpressions() []Expression { return []Expression{d.Source} }

func (d *DocumentOrderExpression) ReplaceSubExpression(old, replacement Expression) bool {
	if d.Source == old {
		d.Source = replacement
		return true
	}
	return false
}

func (d *DocumentOrderExpression) Display(indent int) string {
	pad := strings.Repeat("  ", indent)
	return pad + "document-order\n" + d.Source.Display(indent+1)
}
