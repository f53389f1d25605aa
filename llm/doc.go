// Package llm is a config-driven LLM client built on httpclient.
//
// Provider differences live in a [Dialect], registered by name much like
// database/sql drivers. The [Adapter] combines an httpclient.Client with a
// dialect; [Complete] and [CompleteStructured] are the helpers the guide
// generator calls.
//
//	import _ "github.com/kbukum/guidegen/llm/ollama"
//
//	adapter, err := llm.New(llm.Config{Dialect: "ollama", Model: "qwen2.5:7b"})
//	var guide Draft
//	err = llm.CompleteStructured(ctx, adapter, system, prompt, &guide)
package llm
