/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package promptbuilder provides injection-resistant prompt construction. It
works like a prepared statement for LLM prompts.

Templates are literal strings with {{name}} placeholders. They are tokenized
once, so a bound value is never scanned for further placeholders. Data that
comes from outside the program is bound through an encoder (JSON or YAML).
Only developer-written literals bypass encoding.

	var instruction = promptbuilder.MustNewPrompt(`
	Score the call against these criteria:
	{{criteria}}

	Respond with keys {{names}}.
	`)

	p, err := instruction.BindYAML("criteria", criteria)
	if err != nil {
		return err
	}
	p, err = p.BindJSON("names", names)
	if err != nil {
		return err
	}
	text, err := p.Build()

Every Bind method returns a new Prompt and leaves the receiver untouched. One
template can therefore serve concurrent evaluations. A placeholder must be
bound exactly once before Build succeeds.

Build output is deterministic. JSON and YAML encode struct fields in
declaration order, so identical inputs produce byte-identical prompts.
*/
package promptbuilder
