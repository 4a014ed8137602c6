package mcpserver

// Tool descriptions with interpretation guidance for LLMs.
// Each description explains what the tool does, when to use it,
// and how to interpret results.

func describeContext() string {
	return `Ranks indexed files against a set of seed files and returns a context bundle for review or editing.

USE WHEN:
- Deciding which files to read before changing the seed files
- Building a review context for a diff touching the seeds
- Estimating the blast radius of a planned change

INTERPRETING RESULTS:
- Buckets: primary (the seeds), causal (most related non-seeds), contract (API/schema-shaped files), guardrail (tests and sensitive paths)
- score blends graph relevance (0.45), risk (0.25), boundary impact (0.15), test gap (0.10), freshness (0.05); all in [0, 1]
- reasons name which signal dominated: high-graph-relevance, high-risk-path, cross-module-impact, test-gap-suspected, stale-index-signal
- A file can appear in more than one bucket

REQUIRES: a built index (run 'repomap build' in the repository first).`
}

func describeSymbols() string {
	return `Lists the symbols a file defines plus the files it depends on and the files depending on it.

USE WHEN:
- Inspecting what a file exports before refactoring it
- Finding callers of a module through the dependency graph
- Checking how widely referenced a definition is

INTERPRETING RESULTS:
- definitions: name, grammar capture type (function, class, method, ...), 1-based line, inbound reference count
- dependencies / dependents: file-level import edges, deduplicated and sorted
- A zero reference count means nothing in the indexed set resolved to that definition

REQUIRES: a built index.`
}

func describeGraph() string {
	return `Reports dependency graph statistics, or renders the file-level graph as a Mermaid diagram.

USE WHEN:
- Getting a structural overview of an unfamiliar repository
- Checking for dependency cycles (strongly connected components)
- Producing an embeddable architecture diagram

INTERPRETING RESULTS:
- Statistics include node/edge counts by relation, connected components, strongly connected components (fewer SCCs than files means cycles exist), density, and average degree
- fingerprint is a stable digest of the graph structure; it changes only when nodes or edges change
- With mermaid=true the result is a 'graph LR' diagram capped at max_nodes/max_edges

REQUIRES: a built index.`
}
