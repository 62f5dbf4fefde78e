package symbols

import "sort"

// Glyph is what a symbol name resolves to.
type Glyph struct {
	Content string `json:"content"`
	Color   Color  `json:"color"`
}

// table maps symbol names (without the "sym." prefix) to glyphs.
var table = map[string]Glyph{
	// Greek
	"alpha":       {"α", Letter},
	"beta":        {"β", Letter},
	"beta.alt":    {"ϐ", Letter},
	"gamma":       {"γ", Letter},
	"delta":       {"δ", Letter},
	"epsilon":     {"ε", Letter},
	"epsilon.alt": {"ϵ", Letter},
	"zeta":        {"ζ", Letter},
	"eta":         {"η", Letter},
	"theta":       {"θ", Letter},
	"theta.alt":   {"ϑ", Letter},
	"iota":        {"ι", Letter},
	"kappa":       {"κ", Letter},
	"kappa.alt":   {"ϰ", Letter},
	"lambda":      {"λ", Letter},
	"mu":          {"μ", Letter},
	"nu":          {"ν", Letter},
	"xi":          {"ξ", Letter},
	"omicron":     {"ο", Letter},
	"pi":          {"π", Letter},
	"pi.alt":      {"ϖ", Letter},
	"rho":         {"ρ", Letter},
	"rho.alt":     {"ϱ", Letter},
	"sigma":       {"σ", Letter},
	"sigma.alt":   {"ς", Letter},
	"tau":         {"τ", Letter},
	"upsilon":     {"υ", Letter},
	"phi":         {"φ", Letter},
	"phi.alt":     {"ϕ", Letter},
	"chi":         {"χ", Letter},
	"psi":         {"ψ", Letter},
	"omega":       {"ω", Letter},

	"Alpha":   {"Α", BigLetter},
	"Beta":    {"Β", BigLetter},
	"Gamma":   {"Γ", BigLetter},
	"Delta":   {"Δ", BigLetter},
	"Epsilon": {"Ε", BigLetter},
	"Zeta":    {"Ζ", BigLetter},
	"Eta":     {"Η", BigLetter},
	"Theta":   {"Θ", BigLetter},
	"Iota":    {"Ι", BigLetter},
	"Kappa":   {"Κ", BigLetter},
	"Lambda":  {"Λ", BigLetter},
	"Mu":      {"Μ", BigLetter},
	"Nu":      {"Ν", BigLetter},
	"Xi":      {"Ξ", BigLetter},
	"Omicron": {"Ο", BigLetter},
	"Pi":      {"Π", BigLetter},
	"Rho":     {"Ρ", BigLetter},
	"Sigma":   {"Σ", BigLetter},
	"Tau":     {"Τ", BigLetter},
	"Upsilon": {"Υ", BigLetter},
	"Phi":     {"Φ", BigLetter},
	"Chi":     {"Χ", BigLetter},
	"Psi":     {"Ψ", BigLetter},
	"Omega":   {"Ω", BigLetter},

	// Hebrew and letter-like
	"aleph":     {"ℵ", Letter},
	"alef":      {"ℵ", Letter},
	"beth":      {"ℶ", Letter},
	"bet":       {"ℶ", Letter},
	"gimel":     {"ℷ", Letter},
	"gimmel":    {"ℷ", Letter},
	"ell":       {"ℓ", Letter},
	"planck":    {"ℏ", Letter},
	"hbar":      {"ℏ", Letter},
	"Re":        {"ℜ", BigLetter},
	"Im":        {"ℑ", BigLetter},
	"dotless.i": {"ı", Letter},
	"dotless.j": {"ȷ", Letter},

	// Numbers
	"infinity":     {"∞", Number},
	"oo":           {"∞", Number},
	"degree":       {"°", Number},
	"prime":        {"′", Number},
	"prime.double": {"″", Number},
	"prime.triple": {"‴", Number},

	// Operators
	"plus":             {"+", Operator},
	"plus.minus":       {"±", Operator},
	"minus.plus":       {"∓", Operator},
	"plus.circle":      {"⊕", Operator},
	"plus.circle.big":  {"⨁", Operator},
	"minus":            {"−", Operator},
	"minus.circle":     {"⊖", Operator},
	"times":            {"×", Operator},
	"times.big":        {"⨉", Operator},
	"times.circle":     {"⊗", Operator},
	"times.circle.big": {"⨂", Operator},
	"div":              {"÷", Operator},
	"dot":              {"⋅", Operator},
	"dot.op":           {"⋅", Operator},
	"dot.c":            {"·", Operator},
	"dot.circle":       {"⊙", Operator},
	"ast":              {"∗", Operator},
	"ast.op":           {"∗", Operator},
	"star":             {"⋆", Operator},
	"star.op":          {"⋆", Operator},
	"compose":          {"∘", Operator},
	"circle.small":     {"∘", Operator},
	"convolve":         {"∗", Operator},
	"wreath":           {"≀", Operator},
	"dagger":           {"†", Operator},
	"sum":              {"∑", Operator},
	"sum.integral":     {"⨋", Operator},
	"product":          {"∏", Operator},
	"product.co":       {"∐", Operator},
	"integral":         {"∫", Operator},
	"integral.double":  {"∬", Operator},
	"integral.triple":  {"∭", Operator},
	"integral.cont":    {"∮", Operator},
	"integral.surf":    {"∯", Operator},
	"partial":          {"∂", Operator},
	"diff":             {"∂", Operator},
	"nabla":            {"∇", Operator},
	"laplace":          {"∆", Operator},
	"and":              {"∧", Operator},
	"and.big":          {"⋀", Operator},
	"or":               {"∨", Operator},
	"or.big":           {"⋁", Operator},
	"not":              {"¬", Operator},
	"xor":              {"⊕", Operator},
	"divides":          {"∣", Operator},
	"divides.not":      {"∤", Operator},
	"parallel":         {"∥", Operator},
	"parallel.not":     {"∦", Operator},
	"perp":             {"⟂", Operator},
	"angle":            {"∠", Operator},
	"bar.v":            {"|", Operator},
	"bar.v.double":     {"‖", Operator},
	"bar.h":            {"―", Operator},
	"dots.h":           {"…", Operator},
	"dots.h.c":         {"⋯", Operator},
	"dots.c":           {"⋯", Operator},
	"dots.v":           {"⋮", Operator},
	"dots.down":        {"⋱", Operator},
	"dots.up":          {"⋰", Operator},

	// Relations
	"eq":            {"=", Comparison},
	"eq.not":        {"≠", Comparison},
	"eq.def":        {"≝", Comparison},
	"eq.delta":      {"≜", Comparison},
	"eq.quest":      {"≟", Comparison},
	"eq.colon":      {"≕", Comparison},
	"eq.triple":     {"≡", Comparison},
	"colon.eq":      {"≔", Comparison},
	"equiv":         {"≡", Comparison},
	"equiv.not":     {"≢", Comparison},
	"lt":            {"<", Comparison},
	"lt.eq":         {"≤", Comparison},
	"lt.not":        {"≮", Comparison},
	"lt.eq.not":     {"≰", Comparison},
	"lt.double":     {"≪", Comparison},
	"lt.triple":     {"⋘", Comparison},
	"lt.gt":         {"≶", Comparison},
	"gt":            {">", Comparison},
	"gt.eq":         {"≥", Comparison},
	"gt.not":        {"≯", Comparison},
	"gt.eq.not":     {"≱", Comparison},
	"gt.double":     {"≫", Comparison},
	"gt.triple":     {"⋙", Comparison},
	"gt.lt":         {"≷", Comparison},
	"approx":        {"≈", Comparison},
	"approx.eq":     {"≊", Comparison},
	"approx.not":    {"≉", Comparison},
	"tilde":         {"∼", Comparison},
	"tilde.op":      {"∼", Comparison},
	"tilde.eq":      {"≃", Comparison},
	"tilde.equiv":   {"≅", Comparison},
	"tilde.not":     {"≁", Comparison},
	"prop":          {"∝", Comparison},
	"prec":          {"≺", Comparison},
	"prec.eq":       {"⪯", Comparison},
	"succ":          {"≻", Comparison},
	"succ.eq":       {"⪰", Comparison},
	"tack.r":        {"⊢", Comparison},
	"tack.l":        {"⊣", Comparison},
	"tack.r.double": {"⊨", Comparison},
	"models":        {"⊧", Comparison},

	// Arrows
	"arrow":                 {"→", Comparison},
	"arrow.r":               {"→", Comparison},
	"arrow.l":               {"←", Comparison},
	"arrow.t":               {"↑", Comparison},
	"arrow.b":               {"↓", Comparison},
	"arrow.l.r":             {"↔", Comparison},
	"arrow.t.b":             {"↕", Comparison},
	"arrow.ne":              {"↗", Comparison},
	"arrow.nw":              {"↖", Comparison},
	"arrow.se":              {"↘", Comparison},
	"arrow.sw":              {"↙", Comparison},
	"arrow.r.double":        {"⇒", Comparison},
	"arrow.l.double":        {"⇐", Comparison},
	"arrow.l.r.double":      {"⇔", Comparison},
	"arrow.r.long":          {"⟶", Comparison},
	"arrow.l.long":          {"⟵", Comparison},
	"arrow.l.r.long":        {"⟷", Comparison},
	"arrow.r.double.long":   {"⟹", Comparison},
	"arrow.l.double.long":   {"⟸", Comparison},
	"arrow.l.r.double.long": {"⟺", Comparison},
	"arrow.r.bar":           {"↦", Comparison},
	"arrow.r.long.bar":      {"⟼", Comparison},
	"arrow.r.hook":          {"↪", Comparison},
	"arrow.l.hook":          {"↩", Comparison},
	"arrow.r.squiggly":      {"⇝", Comparison},
	"arrow.l.squiggly":      {"⇜", Comparison},
	"arrow.r.twohead":       {"↠", Comparison},
	"arrow.l.twohead":       {"↞", Comparison},
	"arrow.r.tail":          {"↣", Comparison},
	"arrow.l.tail":          {"↢", Comparison},
	"arrow.r.dashed":        {"⇢", Comparison},
	"arrow.zigzag":          {"↯", Comparison},
	"arrows.rr":             {"⇉", Comparison},
	"arrows.ll":             {"⇇", Comparison},
	"harpoon.rt":            {"⇀", Comparison},
	"harpoon.lt":            {"↼", Comparison},
	"harpoons.rtlb":         {"⇌", Comparison},
	"implies":               {"⟹", Comparison},
	"implied.by":            {"⟸", Comparison},
	"iff":                   {"⟺", Comparison},

	// Sets
	"NN":               {"ℕ", Set},
	"ZZ":               {"ℤ", Set},
	"QQ":               {"ℚ", Set},
	"RR":               {"ℝ", Set},
	"CC":               {"ℂ", Set},
	"PP":               {"ℙ", Set},
	"HH":               {"ℍ", Set},
	"emptyset":         {"∅", Set},
	"nothing":          {"∅", Set},
	"in":               {"∈", Set},
	"in.not":           {"∉", Set},
	"in.rev":           {"∋", Set},
	"in.rev.not":       {"∌", Set},
	"in.small":         {"∊", Set},
	"subset":           {"⊂", Set},
	"subset.eq":        {"⊆", Set},
	"subset.not":       {"⊄", Set},
	"subset.eq.not":    {"⊈", Set},
	"subset.neq":       {"⊊", Set},
	"supset":           {"⊃", Set},
	"supset.eq":        {"⊇", Set},
	"supset.not":       {"⊅", Set},
	"supset.eq.not":    {"⊉", Set},
	"supset.neq":       {"⊋", Set},
	"union":            {"∪", Set},
	"union.big":        {"⋃", Set},
	"union.plus":       {"⊎", Set},
	"union.sq":         {"⊔", Set},
	"sect":             {"∩", Set},
	"sect.big":         {"⋂", Set},
	"sect.sq":          {"⊓", Set},
	"without":          {"∖", Set},
	"complement":       {"∁", Set},
	"angle.l":          {"⟨", Set},
	"angle.r":          {"⟩", Set},
	"bracket.l.double": {"⟦", Set},
	"bracket.r.double": {"⟧", Set},
	"floor.l":          {"⌊", Set},
	"floor.r":          {"⌋", Set},
	"ceil.l":           {"⌈", Set},
	"ceil.r":           {"⌉", Set},
	"brace.l":          {"{", Set},
	"brace.r":          {"}", Set},
	"bracket.l":        {"[", Set},
	"bracket.r":        {"]", Set},
	"paren.l":          {"(", Set},
	"paren.r":          {")", Set},

	// Logic and keywords
	"forall":     {"∀", Keyword},
	"exists":     {"∃", Keyword},
	"exists.not": {"∄", Keyword},
	"top":        {"⊤", Keyword},
	"bot":        {"⊥", Keyword},
	"therefore":  {"∴", Keyword},
	"because":    {"∵", Keyword},
	"qed":        {"∎", Keyword},
	"square":     {"□", Keyword},
	"diamond":    {"◇", Keyword},
	"triangle":   {"△", Keyword},
	"lozenge":    {"◊", Keyword},
	"checkmark":  {"✓", Keyword},
	"crossmark":  {"✗", Keyword},
}

// Lookup resolves a symbol name against the static table only.
func Lookup(name string) (Glyph, bool) {
	g, ok := table[name]
	return g, ok
}

// Names returns every name in the static table, sorted.
func Names() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
