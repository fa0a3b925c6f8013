package account

import (
	"sort"

	"github.com/julianstephens/reto21d/internal/assessment"
	"github.com/julianstephens/reto21d/internal/cli"
	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/models"
)

type AssessmentCmd struct {
	Show     AssessmentShowCmd     `cmd:"" help:"Show an assessment." default:"1"`
	Start    AssessmentStartCmd    `cmd:"" help:"Fill in the assessment wizard."`
	Complete AssessmentCompleteCmd `cmd:"" help:"Mark an assessment as completed."`
	Compare  AssessmentCompareCmd  `cmd:"" help:"Compare the initial and final assessments."`
}

type AssessmentShowCmd struct {
	Kind string `arg:"" optional:"" enum:"initial,final" default:"initial" help:"Which assessment (initial or final)."`
}

func (c *AssessmentShowCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	rec, err := a.Assessments.Get(ctx.Context(), assessment.Kind(c.Kind))
	if errors.Is(err, errors.ErrNotFound) {
		ctx.Printf("No %s assessment yet. Run 'reto21d assessment start --kind %s'.\n", c.Kind, c.Kind)
		return nil
	}
	if err != nil {
		return err
	}
	PrintAssessment(ctx, rec)
	return nil
}

// PrintAssessment renders the sections that have values
func PrintAssessment(ctx *cli.Context, a models.Assessment) {
	status := "in progress"
	if a.Completed {
		status = "completed"
	}
	ctx.Printf("%s (%s)\n", a.PersonalInfo.Name, status)
	if a.PersonalInfo.Age > 0 {
		ctx.Printf("  Age: %d\n", a.PersonalInfo.Age)
	}
	if a.PersonalInfo.Occupation != "" {
		ctx.Printf("  Occupation: %s\n", a.PersonalInfo.Occupation)
	}
	pm := a.PhysicalMeasurements
	if pm.Weight > 0 {
		ctx.Printf("  Weight: %.1f kg\n", pm.Weight)
	}
	if pm.Height > 0 {
		ctx.Printf("  Height: %.1f cm\n", pm.Height)
	}
	if pm.BMI != nil {
		ctx.Printf("  BMI: %.1f\n", *pm.BMI)
	}
	el := a.EnergyLevels
	ctx.Printf("  Energy %d  Sleep %d  Stress %d  Wellness %d\n", el.Energy, el.Sleep, el.Stress, el.Wellness)
	if a.Goals.Primary != "" {
		ctx.Printf("  Goal: %s\n", a.Goals.Primary)
	}
	for _, g := range a.Goals.Secondary {
		ctx.Printf("    - %s\n", g)
	}
}

type AssessmentStartCmd struct {
	Kind string `enum:"initial,final" default:"initial" help:"Which assessment to fill in (initial or final)."`
}

func (c *AssessmentStartCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	kind := assessment.Kind(c.Kind)
	existing, err := a.Assessments.Get(ctx.Context(), kind)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		return err
	}

	w := NewWizardModel(existing)
	title := "Evaluación inicial"
	if kind == assessment.Final {
		title = "Evaluación final"
	}
	if err := NewWizardForm(w, title).Run(); err != nil {
		return err
	}
	rec, err := SaveWizard(ctx, kind, w)
	if err != nil {
		return err
	}
	ctx.Printf("Saved %s assessment for %s\n", kind, rec.PersonalInfo.Name)
	return nil
}

// SaveWizard stores the wizard fields and completes the record when asked
func SaveWizard(ctx *cli.Context, kind assessment.Kind, w *WizardModel) (models.Assessment, error) {
	a, err := ctx.App()
	if err != nil {
		return models.Assessment{}, err
	}
	in, err := w.Input()
	if err != nil {
		return models.Assessment{}, err
	}
	rec, err := a.Assessments.Save(ctx.Context(), kind, in)
	if err != nil {
		return models.Assessment{}, err
	}
	if w.Complete {
		if rec, err = a.Assessments.CompleteAssessment(ctx.Context(), kind); err != nil {
			return models.Assessment{}, err
		}
	}
	a.Persist(ctx.Context())
	return rec, nil
}

type AssessmentCompleteCmd struct {
	Kind string `arg:"" optional:"" enum:"initial,final" default:"initial" help:"Which assessment (initial or final)."`
}

func (c *AssessmentCompleteCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	rec, err := a.Assessments.CompleteAssessment(ctx.Context(), assessment.Kind(c.Kind))
	if err != nil {
		return err
	}
	a.Persist(ctx.Context())
	ctx.Printf("%s assessment completed at %s\n", c.Kind, rec.CompletedAt.Format("2006-01-02 15:04"))
	return nil
}

type AssessmentCompareCmd struct{}

func (c *AssessmentCompareCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	cmp, err := a.Assessments.CompareStored(ctx.Context())
	if err != nil {
		return err
	}
	ctx.Printf("Weight: %+.1f kg\n", cmp.WeightChange)
	ctx.Printf("Energy: %+d  Sleep: %+d  Wellness: %+d\n", cmp.EnergyChange, cmp.SleepChange, cmp.WellnessChange)
	names := make([]string, 0, len(cmp.MeasurementChanges))
	for name := range cmp.MeasurementChanges {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ctx.Printf("  %-7s %+.1f\n", name, cmp.MeasurementChanges[name])
	}
	ctx.Printf("Overall improvement: %.1f%%\n", cmp.OverallImprovement)
	return nil
}
