/*
Package runner implements the line-based prompt loop for the walkthrough engine.

It is the plain counterpart of the terminal UI: each step is printed as text,
the user types a command (a button number, a label, "back", "p linux", ...)
and the runner dispatches it to the engine. Output goes through a pluggable
IOHandler so the same loop serves humans (TextHandler) and scripts
(JSONHandler, one JSON view per line).

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
		runner.WithLogger(logger),
	)
	if err := r.Run(ctx, eng); err != nil {
		log.Fatal(err)
	}
*/
package runner
