package token

// keyword pairs a reserved word with the token Kind it lexes to.
type keyword struct {
	val string
	typ Kind
}

// reserved holds every keyword in the language, bucketed by word length so that a lookup
// only scans words of the right length instead of hashing or scanning the full set.
// Grounded on the teacher's frontend/lang.go "rw" table.
var reserved = [...][]keyword{
	// 1-grams
	{},
	// 2-grams
	{
		{"in", IN},
		{"if", IF},
		{"or", OR},
		{"fn", FN},
	},
	// 3-grams
	{
		{"let", LET},
		{"for", FOR},
		{"and", AND},
		{"not", NOT},
		{"int", TYPE_INT},
		{"str", TYPE_STR},
	},
	// 4-grams
	{
		{"else", ELSE},
		{"bool", TYPE_BOOL},
		{"char", TYPE_CHAR},
		{"void", TYPE_VOID},
		{"true", BOOL},
	},
	// 5-grams
	{
		{"while", WHILE},
		{"float", TYPE_FLOAT},
		{"false", BOOL},
	},
	// 6-grams
	{
		{"return", RETURN},
	},
}

// Lookup reports whether s is a reserved keyword, and if so, which Kind it lexes to.
// A false return means s should be lexed as IDENT.
func Lookup(s string) (Kind, bool) {
	if len(s) == 0 || len(s) > len(reserved) {
		return IDENT, false
	}
	for _, kw := range reserved[len(s)-1] {
		if kw.val == s {
			return kw.typ, true
		}
	}
	return IDENT, false
}
