// types.go
package main

// Represents the JSON output for one CFG node.
type NodeOutput struct {
	Node        int    `json:"node"`
	Kind        string `json:"kind"`
	Instruction string `json:"instruction,omitempty"`
	Partition   string `json:"partition"`
}

// Represents the JSON output for a whole analysis run.
type AnalysisOutput struct {
	File             string       `json:"file,omitempty"`
	Function         string       `json:"function,omitempty"`
	UniverseSize     int          `json:"universe_size"`
	Iterations       int          `json:"iterations"`
	InitialPartition string       `json:"initial_partition"`
	Nodes            []NodeOutput `json:"nodes"`
	ErrorMessage     string       `json:"error,omitempty"`
}

// Represents the JSON output for one rewrite.
type ReplacementOutput struct {
	Instruction int    `json:"instruction"`
	Old         string `json:"old"`
	New         string `json:"new"`
}

// Represents the JSON output of the rewrite command.
type RewriteOutput struct {
	File         string              `json:"file"`
	Replacements []ReplacementOutput `json:"replacements"`
	Program      string              `json:"program"`
}

// Represents the result of the explain command.
type ExplainOutput struct {
	File    string `json:"file"`
	Model   string `json:"model"`
	Summary string `json:"summary"`
	Caveats string `json:"caveats,omitempty"`
}
