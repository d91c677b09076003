package upstream

// NewAliasResolver builds an AliasResolver from an alias table and a default
// model. Unknown or empty names resolve to the default; the caller-supplied
// name never selects the upstream model directly.
func NewAliasResolver(aliases map[string]string, defaultModel string) AliasResolver {
	return func(name string) string {
		if model, ok := aliases[name]; ok {
			return model
		}
		return defaultModel
	}
}
