/*
Package schema defines declarative command definitions for chat-command
parsing.

A command names its positional options in matching order. Definitions
are assembled with a fluent builder and frozen by Build:

	ban, err := schema.New("ban").
		SetDescription("Ban a member from the server").
		AddMentionableOption(func(o *schema.OptionBuilder) {
			o.SetName("target").SetDescription("Member to ban")
		}).
		AddNumberOption(func(o *schema.OptionBuilder) {
			o.SetName("days").SetDescription("Days of messages to purge").
				SetMin(0).SetMax(7).Optional()
		}).
		Build()

Build enforces every definition rule: non-empty names and descriptions,
unique option names, required options before optional ones, min not
above max, choices only on the types that support them. The first
violation is returned as a ConfigError. MustBuild panics instead, for
command sets assembled at program start.

Definition mistakes are a separate error class from input validation.
They surface here, once, at build time. Malformed user input never
produces a ConfigError; it produces a validation.Result with the full
list of input errors.
*/
package schema
