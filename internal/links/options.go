package links

// Options controls how hrefs are normalized and filtered.
type Options struct {
	InternalOnly  bool `json:"internalOnly" mapstructure:"internal_only"`
	RemoveQuery   bool `json:"removeQuery" mapstructure:"remove_query"`
	RemoveAnchors bool `json:"removeAnchors" mapstructure:"remove_anchors"`
}

// DefaultOptions keeps internal links only and strips queries and fragments.
func DefaultOptions() Options {
	return Options{
		InternalOnly:  true,
		RemoveQuery:   true,
		RemoveAnchors: true,
	}
}

// OptionOverrides carries caller-supplied options; nil fields fall back to the defaults.
type OptionOverrides struct {
	InternalOnly  *bool `json:"internalOnly,omitempty"`
	RemoveQuery   *bool `json:"removeQuery,omitempty"`
	RemoveAnchors *bool `json:"removeAnchors,omitempty"`
}

// Resolve merges the overrides over DefaultOptions. A nil receiver yields the defaults.
func (o *OptionOverrides) Resolve() Options {
	opts := DefaultOptions()
	if o == nil {
		return opts
	}
	opts.InternalOnly = boolOrDefault(o.InternalOnly, opts.InternalOnly)
	opts.RemoveQuery = boolOrDefault(o.RemoveQuery, opts.RemoveQuery)
	opts.RemoveAnchors = boolOrDefault(o.RemoveAnchors, opts.RemoveAnchors)
	return opts
}

func boolOrDefault(ptr *bool, def bool) bool {
	if ptr == nil {
		return def
	}
	return *ptr
}
