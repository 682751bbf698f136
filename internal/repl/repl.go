// Package repl drives an interactive session. One evaluator, and with it
// one call stack and one heap strategy, is shared across all lines, so heap
// state built on an earlier line stays observable on later ones.
package repl

import (
	"fmt"
	"io"

	"github.com/chzyer/readline"

	"slang/internal/evaluator"
	"slang/internal/lexer"
	"slang/internal/object"
	"slang/internal/parser"
)

const PROMPT = ">> "

// Start reads lines until EOF or interrupt. Evaluation errors are printed
// and the session continues; only input errors end it.
func Start(e *evaluator.Evaluator, out io.Writer) error {
	rl, err := readline.New(PROMPT)
	if err != nil {
		return fmt.Errorf("failed to initialise readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return nil
		}
		if line == "" {
			continue
		}

		l := lexer.New(line)
		p := parser.New(l, line)

		program := p.ParseProgram()
		if len(p.Errors()) != 0 {
			printParserErrors(out, p.Errors())
			continue
		}

		evaluated := e.Eval(program)
		if evaluated == nil {
			continue
		}
		if evalErr, ok := evaluated.(*object.Error); ok {
			fmt.Fprintln(out, evalErr.Inspect())
			continue
		}
		if _, ok := evaluated.(*object.Nothing); ok {
			continue
		}
		fmt.Fprintln(out, evaluated.Inspect())
	}
}

func printParserErrors(out io.Writer, errors []string) {
	io.WriteString(out, "parser errors:\n")
	for _, msg := range errors {
		io.WriteString(out, "\t"+msg+"\n")
	}
}
