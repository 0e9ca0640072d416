package tools

// FilterResult holds the outcome of filtering tool calls against the
// enabled tool set.
type FilterResult struct {
	// Allowed contains tool calls that passed the filter, in model order.
	Allowed []ToolCall

	// Dropped contains calls naming a disabled tool. They are treated like
	// unknown tools: no result is produced for them.
	Dropped []ToolCall
}

// FilterAllowedTools checks each tool call against the enabled list.
// If enabled is empty or nil, all tool calls are allowed.
func FilterAllowedTools(calls []ToolCall, enabled []string) FilterResult {
	if len(enabled) == 0 {
		return FilterResult{Allowed: calls}
	}

	allowed := toSet(enabled)

	var result FilterResult
	for _, call := range calls {
		if allowed[call.Name] {
			result.Allowed = append(result.Allowed, call)
		} else {
			result.Dropped = append(result.Dropped, call)
		}
	}
	return result
}

// FilterSpecs keeps the declarations of enabled tools, preserving order.
// If enabled is empty or nil, all specs are kept.
func FilterSpecs(specs []ToolSpec, enabled []string) []ToolSpec {
	if len(enabled) == 0 {
		return specs
	}

	allowed := toSet(enabled)

	var out []ToolSpec
	for _, s := range specs {
		if allowed[s.Name] {
			out = append(out, s)
		}
	}
	return out
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
