package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/glycorisk/riskdash/internal/filex"
	"github.com/glycorisk/riskdash/internal/models"
	"github.com/glycorisk/riskdash/internal/prediction"
)

const (
	predictFallback  = "Prediction failed. Please try again."
	historyFallback  = "Failed to load history"
	downloadFallback = "Failed to download report"
)

// Predict walks through the prediction form. Patient users are assigned
// their own record; doctors pick one. Optional fields left blank take their
// defaults.
func (a *App) Predict(ctx context.Context) error {
	pc, err := a.predictions.Prepare(ctx)
	if err != nil {
		return a.fail(ctx, err, listPatientsFallback)
	}
	a.setUser(pc.User)

	form := prediction.NewForm()
	if pc.SelectedPatientID != 0 {
		form.PatientID = strconv.FormatInt(pc.SelectedPatientID, 10)
		fmt.Fprintf(a.out, "Assessing patient #%d.\n", pc.SelectedPatientID)
	} else {
		if len(pc.Patients) == 0 {
			return a.fail(ctx, badInput("No patients yet, add one with addpatient"), predictFallback)
		}
		for _, p := range pc.Patients {
			fmt.Fprintf(a.out, "#%d  %s\n", p.ID, p.PatientCode)
		}
		if form.PatientID, err = getSimpleText(a.reader, "Enter patient id", a.out); err != nil {
			return err
		}
	}

	for _, s := range prediction.Selects {
		c, err := GetChoice(a.reader, s.Label, s.Options, s.Default, a.out)
		if err != nil {
			return a.fail(ctx, err, predictFallback)
		}
		form.Choices[s.Name] = c
	}
	for _, f := range prediction.Fields {
		prompt := f.Label + " (required)"
		if !f.Required {
			prompt = fmt.Sprintf("%s (default %s)", f.Label, strconv.FormatFloat(f.Default, 'f', -1, 64))
		}
		v, err := getSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return err
		}
		form.Numbers[f.Name] = v
	}
	for _, fl := range prediction.Flags {
		yes, err := GetYesNo(a.reader, fl.Label+"?", a.out)
		if err != nil {
			return err
		}
		form.Checks[fl.Name] = yes
	}

	out, err := a.predictions.Submit(ctx, form)
	for _, adv := range out.Advisories {
		fmt.Fprintln(a.out, "Note:", adv)
	}
	if err != nil {
		return a.fail(ctx, err, predictFallback)
	}

	p := out.Prediction
	fmt.Fprintf(a.out, "Prediction #%d: %.1f%% risk, level %s\n%s\n",
		p.ID, p.RiskProbability, strings.ToUpper(p.RiskLevel), p.RiskInterpretation)
	fmt.Fprintf(a.out, "Download the report with: report %d\n", p.ID)
	return nil
}

// History lists every prediction, or one patient's with a patient id.
func (a *App) History(ctx context.Context, args []string) error {
	var (
		list []models.Prediction
		err  error
	)
	if len(args) > 0 {
		id, perr := idArg(args, "history [patient_id]")
		if perr != nil {
			return a.fail(ctx, perr, historyFallback)
		}
		list, err = a.predictions.PatientHistory(ctx, id)
	} else {
		list, err = a.predictions.History(ctx)
	}
	if err != nil {
		return a.fail(ctx, err, historyFallback)
	}

	if len(list) == 0 {
		fmt.Fprintln(a.out, "No predictions yet.")
		return nil
	}
	for _, p := range list {
		fmt.Fprintf(a.out, "#%d  %s  patient #%d  %.1f%%  %s\n",
			p.ID, p.CreatedAt.Display(), p.PatientID, p.RiskProbability, strings.ToUpper(p.RiskLevel))
	}
	return nil
}

// Report downloads a prediction report into the report directory.
func (a *App) Report(ctx context.Context, args []string) error {
	id, err := idArg(args, "report <id>")
	if err != nil {
		return a.fail(ctx, err, downloadFallback)
	}

	r, err := a.predictions.DownloadReport(ctx, id)
	if err != nil {
		return a.fail(ctx, err, downloadFallback)
	}

	path, err := filex.WriteFile(a.reportDir, r.Filename, r.Data)
	if err != nil {
		return a.fail(ctx, err, downloadFallback)
	}
	fmt.Fprintln(a.out, "Saved", path)
	if r.ArchiveKey != "" {
		fmt.Fprintln(a.out, "Archived as", r.ArchiveKey)
	}
	return nil
}
