package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	Patients(ctx context.Context) error
	AddPatient(ctx context.Context) error
	EditPatient(ctx context.Context, args []string) error
	DeletePatient(ctx context.Context, args []string) error
	Predict(ctx context.Context) error
	History(ctx context.Context, args []string) error
	Report(ctx context.Context, args []string) error
}

// runREPL starts a simple read–eval–print loop for the riskdash CLI.
//
// It reads a line from reader, parses the first token as the command and
// the rest as its arguments, and dispatches to methods on 'a'. The loop
// exits on EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help                   show available commands
//	  - register               create an account and log in
//	  - login                  authenticate
//	  - exit | quit            leave the program
//
//	Logged in:
//	  - help                   show available commands
//	  - me                     show the signed-in user
//	  - patients               list patients
//	  - addpatient             create a patient
//	  - editpatient <id>       change a patient's contact details
//	  - deletepatient <id>     delete a patient
//	  - predict                run a risk prediction
//	  - history [patient_id]   list predictions
//	  - report <id>            download a prediction report
//	  - logout                 log out
//	  - exit | quit            leave the program
//
// Any errors returned by command handlers are ignored here; handlers
// print their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("riskdash %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn("Available commands: me, patients, addpatient, editpatient <id>, deletepatient <id>, predict, history [patient_id], report <id>, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "me":
			_ = a.Me(ctx)

		case "patients":
			_ = a.Patients(ctx)

		case "addpatient":
			_ = a.AddPatient(ctx)

		case "editpatient":
			_ = a.EditPatient(ctx, args)

		case "deletepatient":
			_ = a.DeletePatient(ctx, args)

		case "predict":
			_ = a.Predict(ctx)

		case "history":
			_ = a.History(ctx, args)

		case "report":
			_ = a.Report(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
