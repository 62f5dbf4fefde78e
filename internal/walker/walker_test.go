package walker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/typstmath/internal/decoration"
	"github.com/zjrosen/typstmath/internal/symbols"
	"github.com/zjrosen/typstmath/internal/syntax"
)

func walk(t *testing.T, src string, opts Options) *decoration.Set {
	t.Helper()
	set, err := Walk(syntax.Parse(src).Root(), opts, nil)
	require.NoError(t, err)
	return set
}

func get(t *testing.T, set *decoration.Set, ns, name string) decoration.Decoration {
	t.Helper()
	d, ok := set.Get(decoration.Key{Namespace: ns, Name: name})
	require.True(t, ok, "missing decoration %s%s, have %v", ns, name, set.Keys())
	return d
}

func span(start, end int) syntax.Span {
	return syntax.Span{Start: start, End: end}
}

func TestWalk_Symbols(t *testing.T) {
	set := walk(t, "$alpha + beta$", Options{})

	require.Equal(t, 3, set.Len())
	alpha := get(t, set, "", "alpha")
	assert.Equal(t, "α", alpha.Content)
	assert.Equal(t, symbols.Letter, alpha.Color)
	assert.Equal(t, []syntax.Span{span(1, 6)}, alpha.Spans)

	plus := get(t, set, "", "+")
	assert.Equal(t, symbols.Operator, plus.Color)
	assert.Equal(t, []syntax.Span{span(7, 8)}, plus.Spans)

	assert.Equal(t, []syntax.Span{span(9, 13)}, get(t, set, "", "beta").Spans)
}

func TestWalk_RepeatedSymbolSharesKey(t *testing.T) {
	set := walk(t, "$alpha alpha$", Options{})

	require.Equal(t, 1, set.Len())
	assert.Equal(t, []syntax.Span{span(1, 6), span(7, 12)}, get(t, set, "", "alpha").Spans)
}

func TestWalk_UnknownIdentIsLeftAlone(t *testing.T) {
	set := walk(t, "$foo x$", Options{RenderingMode: MaxRenderingMode})
	assert.Equal(t, 0, set.Len())
}

func TestWalk_FieldAccess(t *testing.T) {
	set := walk(t, "$arrow.r.double$", Options{})

	d := get(t, set, "", "arrow.r.double")
	assert.Equal(t, "⇒", d.Content)
	assert.Equal(t, symbols.Comparison, d.Color)
	assert.Equal(t, []syntax.Span{span(1, 15)}, d.Spans)
}

func TestWalk_Sigil(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		outside bool
		spans   []syntax.Span
	}{
		{"markup reference off", "#sym.alpha", false, nil},
		{"markup reference on covers hash", "#sym.alpha", true, []syntax.Span{span(0, 10)}},
		{"math reference off", "$#sym.alpha$", false, nil},
		{"math reference on covers hash", "$#sym.alpha$", true, []syntax.Span{span(1, 11)}},
		{"prefix without hash off", "$sym.alpha$", false, nil},
		{"prefix without hash on keeps span", "$sym.alpha$", true, []syntax.Span{span(1, 10)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := walk(t, tt.src, Options{RenderOutsideMath: tt.outside})
			if tt.spans == nil {
				assert.Equal(t, 0, set.Len())
				return
			}
			require.Equal(t, 1, set.Len())
			d := get(t, set, "", "alpha")
			assert.Equal(t, "α", d.Content)
			assert.Equal(t, tt.spans, d.Spans)
		})
	}
}

func TestWalk_Linebreak(t *testing.T) {
	set := walk(t, `$x \ y$`, Options{})

	d := get(t, set, "", "linebreak")
	assert.Equal(t, linebreakGlyph, d.Content)
	assert.Equal(t, symbols.Comparison, d.Color)
	assert.Equal(t, linebreakStyle, d.Style)
	assert.Equal(t, []syntax.Span{span(3, 4)}, d.Spans)
}

func TestWalk_Shorthand(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		key   string
		color symbols.Color
		style string
		span  syntax.Span
	}{
		{"arrow keeps glyph", "$a -> b$", "→", symbols.Comparison, boldMathFont, span(3, 5)},
		{"minus becomes ascii", "$a - b$", "-", symbols.Operator, "", span(3, 4)},
		{"asterisk becomes ascii", "$a * b$", "*", symbols.Operator, "", span(3, 4)},
		{"double bracket is a set", "$[| a$", "⟦", symbols.Set, "", span(1, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := walk(t, tt.src, Options{})
			require.Equal(t, 1, set.Len())
			d := get(t, set, "", tt.key)
			assert.Equal(t, tt.key, d.Content)
			assert.Equal(t, tt.color, d.Color)
			assert.Equal(t, tt.style, d.Style)
			assert.Equal(t, []syntax.Span{tt.span}, d.Spans)
		})
	}
}

func TestWalk_TextOperators(t *testing.T) {
	set := walk(t, "$a = b < c$", Options{})

	require.Equal(t, 2, set.Len())
	assert.Equal(t, symbols.Comparison, get(t, set, "", "=").Color)
	assert.Equal(t, []syntax.Span{span(7, 8)}, get(t, set, "", "<").Spans)
}

func TestWalk_Attachments(t *testing.T) {
	t.Run("symbols tier keeps attachments on the baseline", func(t *testing.T) {
		set := walk(t, "$x^alpha$", Options{RenderingMode: TierSymbols})

		require.Equal(t, 1, set.Len())
		d := get(t, set, topNamespace, "alpha")
		assert.Empty(t, d.Style)
		assert.Equal(t, []syntax.Span{span(3, 8)}, d.Spans)
	})

	t.Run("stacking lifts the top and covers the marker", func(t *testing.T) {
		set := walk(t, "$x^alpha$", Options{RenderingMode: TierStacking})

		require.Equal(t, 1, set.Len())
		d := get(t, set, topNamespace, "alpha")
		assert.Equal(t, topStyle, d.Style)
		assert.Equal(t, []syntax.Span{span(2, 8)}, d.Spans)
	})

	t.Run("stacked text is decorated", func(t *testing.T) {
		set := walk(t, "$x_1$", Options{RenderingMode: TierStacking})

		require.Equal(t, 1, set.Len())
		d := get(t, set, bottomNamespace, "text-1")
		assert.Equal(t, "1", d.Content)
		assert.Equal(t, symbols.Number, d.Color)
		assert.Equal(t, bottomStyle, d.Style)
		assert.Equal(t, []syntax.Span{span(2, 4)}, d.Spans)
	})

	t.Run("plain text attachment is not decorated", func(t *testing.T) {
		set := walk(t, "$x_1$", Options{RenderingMode: TierSymbols})
		assert.Equal(t, 0, set.Len())
	})

	t.Run("base keeps the caller namespace", func(t *testing.T) {
		set := walk(t, "$alpha^2$", Options{RenderingMode: TierStacking})

		require.Equal(t, 2, set.Len())
		assert.Equal(t, []syntax.Span{span(1, 6)}, get(t, set, "", "alpha").Spans)
		assert.Equal(t, []syntax.Span{span(6, 8)}, get(t, set, topNamespace, "text-2").Spans)
	})

	t.Run("top and bottom together", func(t *testing.T) {
		set := walk(t, "$sum_(i)^n$", Options{RenderingMode: TierStacking})

		assert.Equal(t, []syntax.Span{span(1, 4)}, get(t, set, "", "sum").Spans)
		assert.Equal(t, []syntax.Span{span(6, 7)}, get(t, set, bottomNamespace, "text-i").Spans)
		assert.Equal(t, []syntax.Span{span(8, 10)}, get(t, set, topNamespace, "text-n").Spans)
		assert.Equal(t, []syntax.Span{span(4, 6), span(7, 8)}, get(t, set, "", "hide").Spans)
	})
}

func TestWalk_TransparentGroup(t *testing.T) {
	set := walk(t, "$x^(alpha)$", Options{RenderingMode: TierStacking})

	require.Equal(t, 2, set.Len())
	alpha := get(t, set, topNamespace, "alpha")
	assert.Equal(t, topStyle, alpha.Style)
	assert.Equal(t, []syntax.Span{span(4, 9)}, alpha.Spans)

	hide := get(t, set, "", "hide")
	assert.Equal(t, symbols.Noop, hide.Color)
	assert.Empty(t, hide.Content)
	assert.Equal(t, []syntax.Span{span(2, 4), span(9, 10)}, hide.Spans)
}

func TestWalk_OpaqueGroupIsWalkedPlain(t *testing.T) {
	set := walk(t, "$x^(alpha beta)$", Options{RenderingMode: TierStacking})

	require.Equal(t, 2, set.Len())
	assert.Empty(t, get(t, set, "", "alpha").Style)
	assert.Empty(t, get(t, set, "", "beta").Style)
}

func TestWalk_Fences(t *testing.T) {
	t.Run("abs shares one key across both fences", func(t *testing.T) {
		set := walk(t, "$abs(x)$", Options{RenderingMode: TierRewrites})

		// Both parens accumulate into the same decoration on purpose.

		require.Equal(t, 2, set.Len())
		fence := get(t, set, "", "func-|")
		assert.Equal(t, "|", fence.Content)
		assert.Equal(t, symbols.Operator, fence.Color)
		assert.Equal(t, []syntax.Span{span(4, 5), span(6, 7)}, fence.Spans)
		assert.Equal(t, []syntax.Span{span(1, 4)}, get(t, set, "", "hide").Spans)
	})

	t.Run("norm walks its arguments", func(t *testing.T) {
		set := walk(t, "$norm(alpha)$", Options{RenderingMode: TierRewrites})

		assert.Equal(t, []syntax.Span{span(5, 6), span(11, 12)}, get(t, set, "", "func-‖").Spans)
		assert.Equal(t, []syntax.Span{span(6, 11)}, get(t, set, "", "alpha").Spans)
	})

	t.Run("below the rewrite tier", func(t *testing.T) {
		set := walk(t, "$abs(x)$", Options{RenderingMode: TierStacking})
		assert.Equal(t, 0, set.Len())
	})

	t.Run("unclosed call falls back", func(t *testing.T) {
		set := walk(t, "$abs(alpha$", Options{RenderingMode: TierRewrites})

		require.Equal(t, 1, set.Len())
		assert.Equal(t, []syntax.Span{span(5, 10)}, get(t, set, "", "alpha").Spans)
	})
}

func TestWalk_Accents(t *testing.T) {
	t.Run("hat", func(t *testing.T) {
		set := walk(t, "$hat(x)$", Options{RenderingMode: MaxRenderingMode})

		require.Equal(t, 2, set.Len())
		d := get(t, set, "", "func-^")
		assert.Equal(t, "^", d.Content)
		assert.Equal(t, symbols.Number, d.Color)
		assert.Equal(t, accents["hat"].style, d.Style)
		assert.Equal(t, []syntax.Span{span(1, 5)}, d.Spans)
		assert.Equal(t, []syntax.Span{span(6, 7)}, get(t, set, "", "hide").Spans)
	})

	t.Run("attachment operand is not walked", func(t *testing.T) {
		set := walk(t, "$hat(x_1)$", Options{RenderingMode: TierRewrites})

		require.Equal(t, 2, set.Len())
		get(t, set, "", "func-^")
		assert.Equal(t, []syntax.Span{span(8, 9)}, get(t, set, "", "hide").Spans)
	})

	t.Run("dotted accent name", func(t *testing.T) {
		set := walk(t, "$dot.double(y)$", Options{RenderingMode: TierRewrites})

		assert.Equal(t, []syntax.Span{span(1, 12)}, get(t, set, "", "func-¨").Spans)
	})

	t.Run("symbol tier resolves the callee as a symbol", func(t *testing.T) {
		set := walk(t, "$dot(x)$", Options{RenderingMode: TierSymbols})

		require.Equal(t, 1, set.Len())
		assert.Equal(t, []syntax.Span{span(1, 4)}, get(t, set, "", "dot").Spans)
	})

	t.Run("hat below the rewrite tier", func(t *testing.T) {
		set := walk(t, "$hat(x)$", Options{RenderingMode: TierSymbols})
		assert.Equal(t, 0, set.Len())
	})

	t.Run("unsupported operand walks arguments plain", func(t *testing.T) {
		set := walk(t, "$x^hat(alpha beta)$", Options{RenderingMode: TierRewrites})

		assert.Empty(t, get(t, set, "", "alpha").Style)
		_, ok := set.Get(decoration.Key{Namespace: topNamespace, Name: "alpha"})
		assert.False(t, ok)
	})
}

func TestWalk_Alphabets(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		style string
		text  string
		span  syntax.Span
	}{
		{"blackboard", "$bb(R)$", "bb", "R", span(1, 6)},
		{"calligraphic", "$cal(A)$", "cal", "A", span(1, 7)},
		{"fraktur string", `$frak("g")$`, "frak", "g", span(1, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alphabet, ok := symbols.LetterMap(tt.style)
			require.True(t, ok)
			want := alphabet.Remap(tt.text)

			set := walk(t, tt.src, Options{RenderingMode: TierRewrites})
			require.Equal(t, 1, set.Len())
			d := get(t, set, "", alphabetKeyPrefix+want)
			assert.Equal(t, want, d.Content)
			assert.Equal(t, symbols.Number, d.Color)
			assert.Equal(t, alphabetStyles[tt.style], d.Style)
			assert.Equal(t, []syntax.Span{tt.span}, d.Spans)
		})
	}
}

func TestWalk_AlphabetInAttachment(t *testing.T) {
	alphabet, _ := symbols.LetterMap("bb")
	want := alphabet.Remap("N")

	set := walk(t, "$x^bb(N)$", Options{RenderingMode: TierRewrites})

	d := get(t, set, topNamespace, alphabetKeyPrefix+want)
	assert.Equal(t, topStyle, d.Style)
	assert.Equal(t, []syntax.Span{span(2, 8)}, d.Spans)
}

func TestWalk_Radicals(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		scale float64
		bar   syntax.Span
		root  syntax.Span
		hide  syntax.Span
	}{
		{"plain operand", "$sqrt(x)$", 1.2, span(5, 6), span(1, 5), span(7, 8)},
		{"attachment operand", "$sqrt(x^2)$", 1.8, span(5, 6), span(1, 5), span(9, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := walk(t, tt.src, Options{RenderingMode: TierRewrites})

			require.Equal(t, 3, set.Len())
			bar := get(t, set, "", fmt.Sprintf("func-%c-size-%.1f", overlineGlyph, tt.scale))
			assert.Equal(t, fmt.Sprintf(radicalBarStyle, tt.scale), bar.Style)
			assert.Equal(t, []syntax.Span{tt.bar}, bar.Spans)
			assert.Equal(t, []syntax.Span{tt.root}, get(t, set, "", "func-√").Spans)
			assert.Equal(t, []syntax.Span{tt.hide}, get(t, set, "", "hide").Spans)
		})
	}

	t.Run("deeper operand is not rewritten", func(t *testing.T) {
		set := walk(t, "$sqrt(x y)$", Options{RenderingMode: TierRewrites})
		assert.Equal(t, 0, set.Len())
	})
}

func TestWalk_Resolver(t *testing.T) {
	resolver := symbols.NewResolver(
		map[string]symbols.Glyph{"foo": {Content: "F", Color: symbols.Keyword}},
		[]string{"alpha"},
	)

	set, err := Walk(syntax.Parse("$foo alpha beta$").Root(), Options{}, resolver)
	require.NoError(t, err)

	require.Equal(t, 2, set.Len())
	assert.Equal(t, "F", get(t, set, "", "foo").Content)
	get(t, set, "", "beta")
}

func TestWalk_ShapeErrorSkipsSubtree(t *testing.T) {
	broken := syntax.NewInner(syntax.KindMathAttach,
		syntax.NewLeaf(syntax.KindText, span(0, 1), "x"),
		syntax.NewLeaf(syntax.KindHat, span(1, 2), "^"),
	)
	root := syntax.NewInner(syntax.KindMarkup,
		broken,
		syntax.NewLeaf(syntax.KindText, span(2, 3), "+"),
	)

	set, err := Walk(root, Options{RenderingMode: TierStacking}, nil)

	var shapeErr *syntax.ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, syntax.KindMathAttach, shapeErr.Kind)
	require.Equal(t, 1, set.Len())
	assert.Equal(t, []syntax.Span{span(2, 3)}, get(t, set, "", "+").Spans)
}

func TestWalk_AlphabetMissKeepsOperatorKey(t *testing.T) {
	set, err := Walk(syntax.Parse("$bb(+) +$").Root(), Options{RenderingMode: TierRewrites}, nil)
	require.NoError(t, err)

	stylized := get(t, set, "", alphabetKeyPrefix+"+")
	assert.Equal(t, symbols.Number, stylized.Color)
	assert.Equal(t, []syntax.Span{span(1, 6)}, stylized.Spans)

	op := get(t, set, "", "+")
	assert.Equal(t, symbols.Operator, op.Color)
	assert.Equal(t, []syntax.Span{span(7, 8)}, op.Spans)
}

func TestWalk_ConflictIsReported(t *testing.T) {
	resolver := symbols.NewResolver(map[string]symbols.Glyph{
		"linebreak": {Content: "L", Color: symbols.Keyword},
	}, nil)

	set, err := Walk(syntax.Parse(`$linebreak \ y$`).Root(), Options{}, resolver)

	var conflict *decoration.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "content", conflict.Field)

	d := get(t, set, "", "linebreak")
	assert.Equal(t, "L", d.Content)
	assert.Equal(t, []syntax.Span{span(1, 10)}, d.Spans)
}

func TestWalk_RewriteMissKeepsCallerStyle(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		ns    string
		style string
	}{
		{"alphabet over an identifier", "$x^cal(alpha)$", topNamespace, topStyle},
		{"radical over two arguments", "$x^sqrt(alpha, beta)$", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := walk(t, tt.src, Options{RenderingMode: TierRewrites})

			start := strings.Index(tt.src, "alpha")
			d := get(t, set, tt.ns, "alpha")
			assert.Equal(t, "α", d.Content)
			assert.Equal(t, tt.style, d.Style)
			assert.Equal(t, []syntax.Span{span(start, start+5)}, d.Spans)
		})
	}
}

func TestWalk_EmptyInput(t *testing.T) {
	set := walk(t, "", Options{RenderingMode: MaxRenderingMode})
	assert.Equal(t, 0, set.Len())
	assert.Empty(t, set.Covered())
}

// mathVocabulary are fragments that combine into arbitrary, often
// malformed, equations.
var mathVocabulary = []string{
	"x", "y", "2", "alpha", "beta", "arrow.r", "sum",
	"^", "_", "(", ")", " ", ",", "'", "+", "=", "-", "->", `\ `, `"s"`,
	"abs(", "norm(", "sqrt(", "hat(", "dot(", "bb(", "cal(", "#sym.pi", "sym.pi",
}

func genEquation(rt *rapid.T) string {
	parts := rapid.SliceOfN(rapid.SampledFrom(mathVocabulary), 0, 12).Draw(rt, "parts")
	return "$" + strings.Join(parts, "") + "$"
}

func genOptions(rt *rapid.T) Options {
	return Options{
		RenderingMode:     rapid.IntRange(0, MaxRenderingMode).Draw(rt, "mode"),
		RenderOutsideMath: rapid.Bool().Draw(rt, "outside"),
	}
}

func TestWalk_SpansStayInsideSourceProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		src := genEquation(rt)
		set, _ := Walk(syntax.Parse(src).Root(), genOptions(rt), nil)

		for _, s := range set.Covered() {
			if s.Start < 0 || s.Start > s.End || s.End > len(src) {
				rt.Fatalf("span %v outside %q", s, src)
			}
		}
	})
}

func TestWalk_SpansDoNotOverlapProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		src := genEquation(rt)
		set, _ := Walk(syntax.Parse(src).Root(), genOptions(rt), nil)

		spans := set.Covered()
		for i := 1; i < len(spans); i++ {
			if spans[i-1].End > spans[i].Start {
				rt.Fatalf("spans %v and %v overlap in %q", spans[i-1], spans[i], src)
			}
		}
	})
}

func TestWalk_StateOnlySetInsideAttachmentsProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		src := genEquation(rt)
		opts := genOptions(rt)
		root := syntax.Parse(src).Root()

		w := &walker{opts: opts, resolver: symbols.Default(), limit: root.Span().End}
		w.observe = func(n *syntax.Node, st State) {
			if st.IsAttachment && !opts.stacking() {
				rt.Fatalf("%s at %v marked as attachment below the stacking tier", n.Kind(), n.Span())
			}
			if st != (State{}) && !insideAttach(n) {
				rt.Fatalf("%s at %v has state %+v outside any attachment", n.Kind(), n.Span(), st)
			}
		}
		_, _ = w.walkChildren(root, params{})
	})
}

func insideAttach(n *syntax.Node) bool {
	for p := n; p != nil; p = p.Parent() {
		if p.Kind() == syntax.KindMathAttach {
			return true
		}
	}
	return false
}

func TestWalk_Deterministic(t *testing.T) {
	src := "$sum_(i=1)^n abs(x_i) + sqrt(alpha^2) -> hat(v) != bb(R)$"
	opts := Options{RenderingMode: MaxRenderingMode}

	first, err := Walk(syntax.Parse(src).Root(), opts, nil)
	require.NoError(t, err)
	require.NotZero(t, first.Len())

	for range 5 {
		again, err := Walk(syntax.Parse(src).Root(), opts, nil)
		require.NoError(t, err)
		assert.Equal(t, first.Entries(), again.Entries())
	}
}
