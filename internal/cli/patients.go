package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/glycorisk/riskdash/internal/models"
)

const (
	listPatientsFallback  = "Failed to load patients"
	savePatientFallback   = "Operation failed"
	deletePatientFallback = "Delete failed"
)

func idArg(args []string, usage string) (int64, error) {
	if len(args) == 0 {
		return 0, badInput("Usage: %s", usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, badInput("%q is not a valid id", args[0])
	}
	return id, nil
}

func (a *App) Patients(ctx context.Context) error {
	patients, err := a.patients.List(ctx)
	if err != nil {
		return a.fail(ctx, err, listPatientsFallback)
	}
	if len(patients) == 0 {
		fmt.Fprintln(a.out, "No patients yet.")
		return nil
	}
	for _, p := range patients {
		fmt.Fprintf(a.out, "#%d  %s  dob=%s  phone=%s  emergency=%s\n",
			p.ID, p.PatientCode, dash(p.DateOfBirth), dash(p.Phone), dash(p.EmergencyContact))
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

type prompt struct {
	label string
	dst   *string
}

// readPatient prompts for the patient fields. Answers left blank keep the
// values of cur.
func (a *App) readPatient(cur models.PatientInput, withCode bool) (models.PatientInput, error) {
	in := cur
	var prompts []prompt
	if withCode {
		prompts = append(prompts, prompt{"Patient code", &in.PatientCode})
	}
	prompts = append(prompts,
		prompt{"Date of birth (YYYY-MM-DD)", &in.DateOfBirth},
		prompt{"Phone", &in.Phone},
		prompt{"Address", &in.Address},
		prompt{"Emergency contact", &in.EmergencyContact},
	)

	for _, p := range prompts {
		label := "Enter " + p.label
		if *p.dst != "" {
			label += fmt.Sprintf(" (blank keeps %q)", *p.dst)
		}
		v, err := getSimpleText(a.reader, label, a.out)
		if err != nil {
			return models.PatientInput{}, err
		}
		if v != "" {
			*p.dst = v
		}
	}
	return in, nil
}

func (a *App) AddPatient(ctx context.Context) error {
	in, err := a.readPatient(models.PatientInput{}, true)
	if err != nil {
		return err
	}
	p, err := a.patients.Create(ctx, in)
	if err != nil {
		return a.fail(ctx, err, savePatientFallback)
	}
	fmt.Fprintf(a.out, "Created patient #%d (%s).\n", p.ID, p.PatientCode)
	return nil
}

func (a *App) EditPatient(ctx context.Context, args []string) error {
	id, err := idArg(args, "editpatient <id>")
	if err != nil {
		return a.fail(ctx, err, savePatientFallback)
	}
	cur, err := a.patients.Get(ctx, id)
	if err != nil {
		return a.fail(ctx, err, savePatientFallback)
	}
	in, err := a.readPatient(cur.Input(), false)
	if err != nil {
		return err
	}
	if _, err := a.patients.Update(ctx, id, in); err != nil {
		return a.fail(ctx, err, savePatientFallback)
	}
	fmt.Fprintf(a.out, "Updated patient #%d.\n", id)
	return nil
}

func (a *App) DeletePatient(ctx context.Context, args []string) error {
	id, err := idArg(args, "deletepatient <id>")
	if err != nil {
		return a.fail(ctx, err, deletePatientFallback)
	}
	ok, err := GetYesNo(a.reader, "Are you sure you want to delete this patient?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	if err := a.patients.Delete(ctx, id); err != nil {
		return a.fail(ctx, err, deletePatientFallback)
	}
	fmt.Fprintf(a.out, "Deleted patient #%d.\n", id)
	return nil
}
