package store

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// predicateKind tags which of the grammar's four clause shapes a
// parsed Predicate represents.
type predicateKind int

const (
	kindCompare predicateKind = iota
	kindBetween
	kindIn
	kindNotIn
	kindIsNull
	kindIsNotNull
)

// CompareOp is one of the six comparison operators the grammar accepts.
type CompareOp string

const (
	OpEQ CompareOp = "="
	OpNE CompareOp = "!="
	OpLT CompareOp = "<"
	OpLE CompareOp = "<="
	OpGT CompareOp = ">"
	OpGE CompareOp = ">="
)

// Predicate is a parsed single-clause boolean expression over a
// document's JSON value. The engine composes no AND/OR.
type Predicate struct {
	kind predicateKind
	path []string // path segments with the leading "value" dropped
	op   CompareOp
	lit  any
	list []string
	lo   float64
	hi   float64
}

// grammar patterns, tried in an order that makes sure a BETWEEN or
// IS NULL clause is never mistaken for a bare comparison.
var (
	reBetween = regexp.MustCompile(`(?i)^(\w+(?:\.\w+)+)\s+BETWEEN\s+(-?\d+)\s+AND\s+(-?\d+)$`)
	reInList  = regexp.MustCompile(`(?i)^(\w+(?:\.\w+)+)\s+(NOT\s+IN|IN)\s*\(([^)]*)\)$`)
	reIsNull  = regexp.MustCompile(`(?i)^(\w+(?:\.\w+)+)\s+IS\s+(NOT\s+)?NULL$`)
	reCompare = regexp.MustCompile(`(?i)^(\w+(?:\.\w+)+)\s*(!=|<=|>=|=|<|>)\s*(.+)$`)

	// reCompound catches an AND/OR joining two clauses; the engine
	// parses exactly one clause and must reject compounds rather than
	// mis-parse the tail as a literal.
	reCompound = regexp.MustCompile(`(?i)\s(AND|OR)\s`)
)

// ParsePredicate parses a single `where` clause. It never panics; on a
// malformed clause it returns an InvalidQuery error carrying the
// offending string.
func ParsePredicate(where string) (*Predicate, error) {
	q := strings.TrimSpace(where)

	if m := reBetween.FindStringSubmatch(q); m != nil {
		lo, errLo := strconv.Atoi(m[2])
		hi, errHi := strconv.Atoi(m[3])
		if errLo != nil || errHi != nil {
			return nil, errInvalidQuery("invalid BETWEEN bounds: %s", where)
		}
		return &Predicate{kind: kindBetween, path: splitPath(m[1]), lo: float64(lo), hi: float64(hi)}, nil
	}

	if m := reInList.FindStringSubmatch(q); m != nil {
		k := kindIn
		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(m[2])), "NOT") {
			k = kindNotIn
		}
		return &Predicate{kind: k, path: splitPath(m[1]), list: splitList(m[3])}, nil
	}

	if m := reIsNull.FindStringSubmatch(q); m != nil {
		k := kindIsNull
		if strings.TrimSpace(m[2]) != "" {
			k = kindIsNotNull
		}
		return &Predicate{kind: k, path: splitPath(m[1])}, nil
	}

	if m := reCompare.FindStringSubmatch(q); m != nil {
		lit := strings.TrimSpace(m[3])
		if looksCompound(lit) {
			return nil, errInvalidQuery("compound predicates are not supported: %s", where)
		}
		return &Predicate{
			kind: kindCompare,
			path: splitPath(m[1]),
			op:   CompareOp(m[2]),
			lit:  parseLiteral(lit),
		}, nil
	}

	return nil, errInvalidQuery("invalid query syntax: %s", where)
}

// splitPath splits a dotted path and drops the leading "value" segment.
func splitPath(path string) []string {
	parts := strings.Split(path, ".")
	if len(parts) <= 1 {
		return nil
	}
	return parts[1:]
}

// splitList splits an IN-list body on commas; items are always
// strings (caller responsibility to coerce for numeric fields).
func splitList(body string) []string {
	raw := strings.Split(body, ",")
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		out = append(out, strings.Trim(strings.TrimSpace(item), `'"`))
	}
	return out
}

// looksCompound reports whether a comparison literal is actually the
// tail of a compound clause (`25 AND value.status = 'active'`). A
// single well-formed quoted string may contain AND/OR; anything else
// with a bare AND/OR token is a compound.
func looksCompound(lit string) bool {
	if len(lit) >= 2 && (lit[0] == '\'' || lit[0] == '"') {
		q := lit[0]
		if lit[len(lit)-1] == q && !strings.ContainsRune(lit[1:len(lit)-1], rune(q)) {
			return false
		}
	}
	return reCompound.MatchString(lit)
}

// parseLiteral parses a scalar literal: integer, then float (a `.`
// forces float), then a quote-stripped string, with NULL (any case)
// mapping to nil.
func parseLiteral(s string) any {
	if strings.EqualFold(s, "NULL") {
		return nil
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	} else if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return strings.Trim(s, `'"`)
}

// Eval evaluates the predicate against a single record, never
// panicking: a type mismatch on a numeric comparison is simply false.
func (p *Predicate) Eval(rec *Record) bool {
	val := resolvePath(rec, p.path)

	switch p.kind {
	case kindIsNull:
		return val == nil
	case kindIsNotNull:
		return val != nil
	case kindBetween:
		f, ok := toFloat(val)
		return ok && f >= p.lo && f <= p.hi
	case kindIn, kindNotIn:
		member := false
		if s, ok := val.(string); ok {
			for _, item := range p.list {
				if item == s {
					member = true
					break
				}
			}
		}
		if p.kind == kindIn {
			return member
		}
		return !member
	case kindCompare:
		return evalCompare(val, p.op, p.lit)
	default:
		return false
	}
}

// resolvePath walks rec's JSON value by the dotted path, returning nil
// as soon as the current node isn't a JSON object or the segment is
// missing.
func resolvePath(rec *Record, path []string) any {
	if rec.IsTombstone() {
		return nil
	}
	var cur any
	if err := json.Unmarshal(rec.Value, &cur); err != nil {
		return nil
	}
	for _, seg := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, exists := m[seg]
		if !exists {
			return nil
		}
		cur = v
	}
	return cur
}

func evalCompare(val any, op CompareOp, lit any) bool {
	switch op {
	case OpEQ:
		return jsonEqual(val, lit)
	case OpNE:
		return !jsonEqual(val, lit)
	default:
		vf, vok := toFloat(val)
		lf, lok := toFloat(lit)
		if !vok || !lok {
			return false
		}
		switch op {
		case OpLT:
			return vf < lf
		case OpLE:
			return vf <= lf
		case OpGT:
			return vf > lf
		case OpGE:
			return vf >= lf
		}
		return false
	}
}

// jsonEqual implements "types must match for true" (5 = '5' is false).
// JSON numbers always decode to float64, so a numeric literal is
// normalized to float64 before comparing against a decoded value.
func jsonEqual(val, lit any) bool {
	if val == nil || lit == nil {
		return val == nil && lit == nil
	}
	switch lv := lit.(type) {
	case int:
		vf, ok := val.(float64)
		return ok && vf == float64(lv)
	case float64:
		vf, ok := val.(float64)
		return ok && vf == lv
	case string:
		vs, ok := val.(string)
		return ok && vs == lv
	case bool:
		vb, ok := val.(bool)
		return ok && vb == lv
	default:
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
