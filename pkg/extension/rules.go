package extension

import (
	"strings"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"blockpad/pkg/blocks"
	"blockpad/pkg/parser"
)

// PlaceholderName is the reserved synthetic identifier rendered as a
// drop-target spacer instead of code.
const PlaceholderName = "__placeholder__"

// defaultSentinels are the property-access expressions recognized out of the
// box. Comparison is against the node's whitespace-stripped printed text.
var defaultSentinels = []string{
	"context.cart.total",
	"context.customer.email",
}

// liquidCalleePattern matches the qualified liquid accessor after whitespace
// normalization.
var liquidCalleePattern = regexp2.MustCompile(`^context\.shopify\.liquid\.get$`, regexp2.None)

var titleCaser = cases.Title(language.English)

func stripWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HumanizeLiquidPath turns a liquid accessor argument such as
// "product.price | currency" into the label "Product Price": whitespace is
// stripped, filters after the first pipe are dropped, and the dotted path
// becomes space-separated title-cased words.
func HumanizeLiquidPath(arg string) string {
	s := stripWhitespace(arg)
	if i := strings.IndexByte(s, '|'); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, ".", " ")
	return titleCaser.String(s)
}

func placeholderRule() Rule {
	return Rule{
		Name:     "placeholder-spacer",
		Priority: 400,
		Match: func(node parser.Node, _ RenderFunc) *blocks.Block {
			id, ok := node.(*parser.Identifier)
			if !ok || id.Value != PlaceholderName {
				return nil
			}
			return blocks.NewSpacer(id)
		},
	}
}

func liquidGetRule() Rule {
	return Rule{
		Name:     "liquid-get",
		Priority: 300,
		Match: func(node parser.Node, _ RenderFunc) *blocks.Block {
			call, ok := node.(*parser.CallExpression)
			if !ok || call.Function == nil || len(call.Arguments) == 0 {
				return nil
			}
			callee := stripWhitespace(call.Function.String())
			if m, err := liquidCalleePattern.MatchString(callee); err != nil || !m {
				return nil
			}
			lit, ok := call.Arguments[0].(*parser.StringLiteral)
			if !ok {
				return nil
			}
			return blocks.NewWidget(call, HumanizeLiquidPath(lit.Value))
		},
	}
}

func sentinelRule(sentinels map[string]bool) Rule {
	return Rule{
		Name:     "sentinel-access",
		Priority: 200,
		Match: func(node parser.Node, _ RenderFunc) *blocks.Block {
			member, ok := node.(*parser.MemberExpression)
			if !ok {
				return nil
			}
			text := stripWhitespace(member.String())
			if !sentinels[text] {
				return nil
			}
			return blocks.NewWidget(member, HumanizeLiquidPath(text))
		},
	}
}

// stateAssignmentRule claims `state.<prop> = <value>` and presents it as a
// "Set <Prop> To <value>" widget. Boolean values get a toggle control; any
// other value renders through the normal pipeline.
func stateAssignmentRule() Rule {
	return Rule{
		Name:     "state-assignment",
		Priority: 100,
		Match: func(node parser.Node, render RenderFunc) *blocks.Block {
			assign, ok := node.(*parser.AssignmentExpression)
			if !ok || assign.Operator != "=" {
				return nil
			}
			member, ok := assign.Left.(*parser.MemberExpression)
			if !ok || member.Property == nil {
				return nil
			}
			obj, ok := member.Object.(*parser.Identifier)
			if !ok || obj.Value != "state" {
				return nil
			}
			w := blocks.NewWidget(assign, "Set "+titleCaser.String(member.Property.Value)+" To")
			if lit, ok := assign.Value.(*parser.BooleanLiteral); ok {
				w.Add(blocks.NewToggle(lit, lit.Value))
			} else if assign.Value != nil && render != nil {
				w.Add(render(assign.Value))
			}
			return w
		},
	}
}
