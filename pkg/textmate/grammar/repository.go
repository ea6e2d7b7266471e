package grammar

// Repository is an immutable-after-construction chain of named rule
// maps. Rules nested inside a begin/end rule see their own repository
// first, then every enclosing one, which lets repository entries
// reference each other and themselves.
type Repository struct {
	parent *Repository
	rules  map[string]*Rule
}

// NewRepository creates an empty repository chained to parent.
// parent may be nil for a grammar's root repository.
func NewRepository(parent *Repository) *Repository {
	return &Repository{parent: parent, rules: make(map[string]*Rule)}
}

// Lookup resolves name against this repository, innermost map first.
func (r *Repository) Lookup(name string) (*Rule, bool) {
	for cur := r; cur != nil; cur = cur.parent {
		if rule, ok := cur.rules[name]; ok {
			return rule, true
		}
	}
	return nil, false
}

// define registers a rule under name in this repository's own map.
// Used only during document construction.
func (r *Repository) define(name string, rule *Rule) {
	r.rules[name] = rule
}
