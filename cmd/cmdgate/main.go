// Package main is the entry point for cmdgate, a command gateway for
// chat bots: declare command schemas once, let the dispatcher tokenize,
// validate and coerce every incoming line before a handler runs.
package main

func main() {
	Execute()
}
