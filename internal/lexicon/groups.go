package lexicon

// DefaultGroups returns the built-in English homophone groups.
//
// The pair family is expressed as four links (pair/pear, pairs/pears,
// pear/pears, pair/pairs) so "pears" resolves to {pairs, pear} instead of the
// whole family.
func DefaultGroups() [][]string {
	return [][]string{
		{"to", "too", "two"},
		{"there", "their", "they're"},
		{"your", "you're"},
		{"its", "it's"},
		{"hear", "here"},
		{"write", "right", "rite"},
		{"new", "knew"},
		{"four", "for", "fore"},
		{"eight", "ate"},
		{"one", "won"},
		{"sun", "son"},
		{"flower", "flour"},
		{"break", "brake"},
		{"pair", "pear"},
		{"pairs", "pears"},
		{"pear", "pears"},
		{"pair", "pairs"},
		{"sea", "see"},
		{"meat", "meet"},
		{"peace", "piece"},
		{"no", "know"},
		{"by", "buy", "bye"},
		{"read", "red"},
		{"tail", "tale"},
		{"mail", "male"},
		{"sail", "sale"},
		{"wait", "weight"},
		{"weak", "week"},
		{"steel", "steal"},
		{"bear", "bare"},
		{"fair", "fare"},
	}
}
