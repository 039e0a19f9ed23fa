// Package extract turns a raw user utterance into candidate structured facts.
//
// Extraction is a pure function: no storage, no network, never errors. The
// provided implementation is regex-based with Portuguese and English patterns
// side by side; it sits behind the Extractor interface so a classifier can
// replace it without touching the memory or cache contracts.
package extract

import (
	"regexp"
	"strings"
)

// Candidate is one extracted (type, value) pair, pre-normalization of the
// fact id (the memory store owns id derivation).
type Candidate struct {
	Type  string
	Value string
}

// Result is the outcome of scanning one utterance. Correction is set when
// the utterance contains revision/change language; callers use it only to
// bias confidence upward when promoting singleton facts.
type Result struct {
	Candidates []Candidate
	Correction bool
}

// Extractor extracts candidate facts from text.
type Extractor interface {
	Extract(text string) Result
}

type pattern struct {
	re    *regexp.Regexp
	group int
}

var (
	prefPat = pattern{regexp.MustCompile(`(?i)\b(prefiro|prefer|gosto de|i prefer)\s+([^.;,\n]+)`), 2}
	workPat = pattern{regexp.MustCompile(`(?i)\b(trabalho (?:no|na|em)|work at|i work at)\s+([^.;,\n]+)`), 2}
	teamPat = pattern{regexp.MustCompile(`(?i)\b(?:time|squad|equipe|team)\s+([^.;,\n]+)`), 1}

	locPats = []pattern{
		{regexp.MustCompile(`(?i)\b(?:moro|vivo|resido)\s+(?:no|na|em)\s+([^.;,\n]+)`), 1},
		{regexp.MustCompile(`(?i)\b(?:sou\s+de|sou\s+do|sou\s+da)\s+([^.;,\n]+)`), 1},
		{regexp.MustCompile(`(?i)\b(?:based in|i live in|i'm from|im from)\s+([^.;,\n]+)`), 1},
	}

	langPats = []pattern{
		{regexp.MustCompile(`(?i)\b(?:falo|prefiro)\s+(portugu[eê]s|ingl[eê]s)\b`), 1},
		{regexp.MustCompile(`(?i)\b(?:language)\s*[:\-]?\s*(english|portuguese)\b`), 1},
	}

	tzPats = []pattern{
		{regexp.MustCompile(`(?i)\b(?:timezone|fuso\s*hor[aá]rio)\s*[:\-]?\s*([a-zA-Z_\/\-+0-9]+)`), 1},
		{regexp.MustCompile(`(?i)\bUTC ?([+\-]\d{1,2})\b`), 1},
	}

	toolPats = []pattern{
		{regexp.MustCompile(`(?i)\b(?:uso|usamos|trabalh(?:o|amos)\s+com)\s+(kubernetes|docker|redis|postgres|mysql|vs\s*code|pycharm)\b`), 1},
		{regexp.MustCompile(`(?i)\b(?:we\s+use|using)\s+(kubernetes|docker|redis|postgres|mysql|vs\s*code|pycharm)\b`), 1},
	}

	expertPats = []pattern{
		{regexp.MustCompile(`(?i)\b(?:sou especialista|tenho experi[eê]ncia em)\s+([^.;,\n]+)`), 1},
		{regexp.MustCompile(`(?i)\b(?:experienced in|expert in)\s+([^.;,\n]+)`), 1},
	}
	goalPats = []pattern{
		{regexp.MustCompile(`(?i)\b(?:quero|pretendo|planejo)\s+([^.;,\n]+)`), 1},
		{regexp.MustCompile(`(?i)\b(?:i want to|i plan to)\s+([^.;,\n]+)`), 1},
	}
	constraintPats = []pattern{
		{regexp.MustCompile(`(?i)\b(?:n[aã]o posso|tenho NDA|sem acesso a)\s+([^.;,\n]+)`), 1},
		{regexp.MustCompile(`(?i)\b(?:cannot|under NDA|no access to)\s+([^.;,\n]+)`), 1},
	}

	namePats = []pattern{
		{regexp.MustCompile(`(?i)\bme chamo\s+([^.;,\n]+)`), 1},
		{regexp.MustCompile(`(?i)\bmeu nome (?:é|eh)\s+([^.;,\n]+)`), 1},
		{regexp.MustCompile(`\bI(?:'| a)m\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`), 1},
	}
	companyPats = []pattern{
		{regexp.MustCompile(`(?i)\btrabalho (?:no|na|em)\s+([^.;,\n]+)`), 1},
		{regexp.MustCompile(`(?i)\bwork (?:at|for)\s+([^.;,\n]+)`), 1},
	}

	cityPats    = []pattern{{regexp.MustCompile(`(?i)\b(?:moro|estou)\s+em\s+([^.;,\n]+)`), 1}}
	countryPats = []pattern{{regexp.MustCompile(`(?i)\b(?:no|na)\s+(brasil|brazil|eua|estados unidos|usa|portugal|spain)\b`), 1}}

	contactPats = []pattern{
		{regexp.MustCompile(`(?i)\b(?:prefiro|fale comigo) (?:por|via)\s+(e-?mail|email|whatsapp|telefone|call)`), 1},
		{regexp.MustCompile(`(?i)\bprefer (?:to\s+be\s+contacted\s+)?via\s+(email|whatsapp|phone|call)`), 1},
	}
	currencyPats = []pattern{
		{regexp.MustCompile(`(?i)\b(?:trabalhar|cotar|orçar)\s+em\s+(brl|usd|eur|real|dólar|dolar|euro)`), 1},
		{regexp.MustCompile(`(?i)\b(?:currency|moeda)\s*[:\-]?\s*(brl|usd|eur)`), 1},
	}

	riskPats = []pattern{
		{regexp.MustCompile(`(?i)\bperfil de risco\s*[:\-]?\s*(conservador|moderado|arrojado)`), 1},
		{regexp.MustCompile(`(?i)\b(?:risk profile)\s*[:\-]?\s*(conservative|moderate|aggressive)`), 1},
	}
	horizonPats = []pattern{
		{regexp.MustCompile(`(?i)\b(?:horizonte|prazo)\s*(?:de|:)?\s*(curto|m[eé]dio|longo)`), 1},
		{regexp.MustCompile(`(?i)\b(?:investment horizon)\s*[:\-]?\s*(short|medium|long)`), 1},
	}

	correctionPat = regexp.MustCompile(`(?i)\b(na verdade|corrigindo|mudei|me mudei|agora)\b`)
)

// RegexExtractor is the SDK-provided Extractor. First match per category
// wins; the scan order below is the output order.
type RegexExtractor struct{}

// NewRegexExtractor creates the default regex-based extractor.
func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{}
}

// Extract scans the utterance for every fact category. Absence of matches
// is a normal empty result, never an error.
func (e *RegexExtractor) Extract(text string) Result {
	var out Result
	if text == "" {
		return out
	}

	add := func(ftype, value string) {
		out.Candidates = append(out.Candidates, Candidate{Type: ftype, Value: value})
	}
	firstMatch := func(pats []pattern) (string, bool) {
		for _, p := range pats {
			if m := p.re.FindStringSubmatch(text); m != nil {
				return strings.TrimSpace(m[p.group]), true
			}
		}
		return "", false
	}

	if m := prefPat.re.FindStringSubmatch(text); m != nil {
		add("preference", strings.TrimSpace(m[prefPat.group]))
	}
	if m := workPat.re.FindStringSubmatch(text); m != nil {
		add("org", strings.TrimSpace(m[workPat.group]))
	}
	if m := teamPat.re.FindStringSubmatch(text); m != nil {
		add("team", strings.TrimSpace(m[teamPat.group]))
	}

	if v, ok := firstMatch(locPats); ok {
		add("location", NormalizePlace(v))
	}
	if v, ok := firstMatch(langPats); ok {
		add("locale", NormalizeLanguage(v))
	}
	if v, ok := firstMatch(tzPats); ok {
		add("timezone", NormalizeTimezone(v))
	}

	if v, ok := firstMatch(toolPats); ok {
		add("tool", v)
	}
	if v, ok := firstMatch(expertPats); ok {
		add("expertise", v)
	}
	if v, ok := firstMatch(goalPats); ok {
		add("goal", v)
	}
	if v, ok := firstMatch(constraintPats); ok {
		add("constraint", v)
	}

	if v, ok := firstMatch(namePats); ok {
		add("name", v)
	}
	if v, ok := firstMatch(companyPats); ok {
		add("company", v)
	}

	if v, ok := firstMatch(cityPats); ok {
		add("location_city", NormalizePlace(v))
	}
	if v, ok := firstMatch(countryPats); ok {
		add("location_country", NormalizePlace(v))
	}

	if v, ok := firstMatch(contactPats); ok {
		add("contact_preference", strings.ToLower(v))
	}
	if v, ok := firstMatch(currencyPats); ok {
		add("currency", NormalizeCurrency(v))
	}

	if v, ok := firstMatch(riskPats); ok {
		add("risk_profile", strings.ToLower(v))
	}
	if v, ok := firstMatch(horizonPats); ok {
		add("investment_horizon", strings.ToLower(v))
	}

	out.Correction = correctionPat.MatchString(text)
	return out
}
