package main

import (
	"fmt"
	"io"
)

var helpText = map[string]string{
	"BYE":   "Exit from BASIC",
	"HELP":  "List the commands, or describe one of them",
	"LIST":  "List the current program in line number order",
	"NEW":   "Erase the current program",
	"RUN":   "Execute the current program",
	"STATS": "Toggle printing execution statistics when the program stops",
	"TRACE": "Toggle dumping each program line as it is entered",
}

var helpOrder = []string{"bye", "help", "list", "new", "run", "stats", "trace"}

func executeHelp(w io.Writer, args []string) {

	if len(args) == 0 {
		for _, cmd := range helpOrder {
			fmt.Fprintln(w, cmd)
		}

		fmt.Fprintln(w, "Lines starting with a number are added to the program;")
		fmt.Fprintln(w, "a number by itself deletes that line")
		return
	}

	for _, arg := range args {
		if text, ok := helpText[arg]; ok {
			fmt.Fprintln(w, text)
		} else {
			fmt.Fprintf(w, "No help for %q\n", arg)
		}
	}
}
