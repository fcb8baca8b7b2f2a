package llm

// Tool is a function the model may call. Gateways such as Arcade resolve
// tools by qualified name ("Google.SendEmail") and need no parameter schema.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolOptions configures a tool-enabled completion.
type ToolOptions struct {
	Tools []Tool
	// ToolChoice is passed through verbatim ("auto", "required", or a
	// gateway-specific value such as "generate").
	ToolChoice string
	// User identifies the end user on whose behalf tools run.
	User string
}

// NamedTools builds schema-less tools from qualified names.
func NamedTools(names ...string) []Tool {
	out := make([]Tool, 0, len(names))
	for _, n := range names {
		out = append(out, Tool{Name: n})
	}
	return out
}
