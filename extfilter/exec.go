package extfilter

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

const DefaultPython = "python3"

// Python runs the code of ':python' filters with an external interpreter,
// which receives the code on its standard input.
//
// The code runs with the privileges of the compiler. Never use it to compile untrusted input.
type Python struct {
	// Interpreter is the path of the interpreter, DefaultPython if empty
	Interpreter string
}

// Available returns true if the interpreter can be found.
func (p *Python) Available() bool {
	_, err := exec.LookPath(p.interpreter())
	return err == nil
}

// Execute runs the code and returns its standard output.
// When the interpreter fails, the error includes its standard error.
func (p *Python) Execute(code string) (string, error) {
	interpreter := p.interpreter()

	cmd := exec.Command(interpreter, "-")
	cmd.Stdin = strings.NewReader(code)

	var out bytes.Buffer
	var cmderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &cmderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running %s: %w: %s", interpreter, err, strings.TrimSpace(cmderr.String()))
	}

	return out.String(), nil
}

func (p *Python) interpreter() string {
	if len(p.Interpreter) == 0 {
		return DefaultPython
	}
	return p.Interpreter
}
