package account

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/models"
)

// WizardModel holds the raw text of the assessment wizard fields
type WizardModel struct {
	Name       string
	Age        string
	Gender     string
	Occupation string

	Weight string
	Height string
	Waist  string
	Chest  string
	Hips   string
	Arms   string
	Thighs string

	Energy   string
	Sleep    string
	Stress   string
	Wellness string

	Primary    string
	Secondary  string
	Motivation string

	Complete bool
}

// NewWizardModel prefills the wizard from an existing record
func NewWizardModel(a models.Assessment) *WizardModel {
	pm, el := a.PhysicalMeasurements, a.EnergyLevels
	return &WizardModel{
		Name:       a.PersonalInfo.Name,
		Age:        intText(a.PersonalInfo.Age),
		Gender:     a.PersonalInfo.Gender,
		Occupation: a.PersonalInfo.Occupation,
		Weight:     floatText(pm.Weight),
		Height:     floatText(pm.Height),
		Waist:      floatText(pm.Waist),
		Chest:      floatText(pm.Chest),
		Hips:       floatText(pm.Hips),
		Arms:       floatText(pm.Arms),
		Thighs:     floatText(pm.Thighs),
		Energy:     intText(el.Energy),
		Sleep:      intText(el.Sleep),
		Stress:     intText(el.Stress),
		Wellness:   intText(el.Wellness),
		Primary:    a.Goals.Primary,
		Secondary:  strings.Join(a.Goals.Secondary, ", "),
		Motivation: a.Goals.Motivation,
		Complete:   a.Completed,
	}
}

func intText(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func floatText(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseFloat(field, s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, errors.Validationf("%s must be a positive number", field)
	}
	return v, nil
}

func parseScore(field, s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 || v > 10 {
		return 0, errors.Validationf("%s must be between 1 and 10", field)
	}
	return v, nil
}

func validateFloat(field string) func(string) error {
	return func(s string) error {
		_, err := parseFloat(field, s)
		return err
	}
}

func validateScore(field string) func(string) error {
	return func(s string) error {
		_, err := parseScore(field, s)
		return err
	}
}

// Input converts the wizard fields into a full assessment save
func (w *WizardModel) Input() (models.AssessmentInput, error) {
	info := models.PersonalInfo{
		Name:       strings.TrimSpace(w.Name),
		Gender:     w.Gender,
		Occupation: strings.TrimSpace(w.Occupation),
	}
	if s := strings.TrimSpace(w.Age); s != "" {
		age, err := strconv.Atoi(s)
		if err != nil || age < 0 {
			return models.AssessmentInput{}, errors.Validationf("age must be a positive number")
		}
		info.Age = age
	}

	var pm models.PhysicalMeasurements
	for _, f := range []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"weight", w.Weight, &pm.Weight},
		{"height", w.Height, &pm.Height},
		{"waist", w.Waist, &pm.Waist},
		{"chest", w.Chest, &pm.Chest},
		{"hips", w.Hips, &pm.Hips},
		{"arms", w.Arms, &pm.Arms},
		{"thighs", w.Thighs, &pm.Thighs},
	} {
		v, err := parseFloat(f.name, f.raw)
		if err != nil {
			return models.AssessmentInput{}, err
		}
		*f.dst = v
	}

	var el models.EnergyLevels
	for _, f := range []struct {
		name string
		raw  string
		dst  *int
	}{
		{"energy", w.Energy, &el.Energy},
		{"sleep", w.Sleep, &el.Sleep},
		{"stress", w.Stress, &el.Stress},
		{"wellness", w.Wellness, &el.Wellness},
	} {
		v, err := parseScore(f.name, f.raw)
		if err != nil {
			return models.AssessmentInput{}, err
		}
		*f.dst = v
	}

	goals := models.Goals{Primary: strings.TrimSpace(w.Primary), Motivation: strings.TrimSpace(w.Motivation)}
	for _, s := range strings.Split(w.Secondary, ",") {
		if s = strings.TrimSpace(s); s != "" {
			goals.Secondary = append(goals.Secondary, s)
		}
	}

	return models.AssessmentInput{
		PersonalInfo:         &info,
		PhysicalMeasurements: &pm,
		EnergyLevels:         &el,
		Goals:                &goals,
	}, nil
}

// NewWizardForm builds the four-step assessment wizard
func NewWizardForm(w *WizardModel, title string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(title).Description("Información personal"),
			huh.NewInput().
				Title("Nombre").
				Value(&w.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Edad").
				Value(&w.Age).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if v, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || v < 0 {
						return fmt.Errorf("age must be a positive number")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Género").
				Options(
					huh.NewOption("Prefiero no decirlo", ""),
					huh.NewOption("Femenino", "femenino"),
					huh.NewOption("Masculino", "masculino"),
					huh.NewOption("Otro", "otro"),
				).
				Value(&w.Gender),
			huh.NewInput().
				Title("Ocupación").
				Value(&w.Occupation),
		),
		huh.NewGroup(
			huh.NewNote().Title("Medidas físicas").Description("Peso en kg, medidas en cm"),
			huh.NewInput().Title("Peso").Value(&w.Weight).Validate(validateFloat("weight")),
			huh.NewInput().Title("Altura").Value(&w.Height).Validate(validateFloat("height")),
			huh.NewInput().Title("Cintura").Value(&w.Waist).Validate(validateFloat("waist")),
			huh.NewInput().Title("Pecho").Value(&w.Chest).Validate(validateFloat("chest")),
			huh.NewInput().Title("Cadera").Value(&w.Hips).Validate(validateFloat("hips")),
			huh.NewInput().Title("Brazos").Value(&w.Arms).Validate(validateFloat("arms")),
			huh.NewInput().Title("Muslos").Value(&w.Thighs).Validate(validateFloat("thighs")),
		),
		huh.NewGroup(
			huh.NewNote().Title("Energía y bienestar").Description("Puntúa del 1 al 10"),
			huh.NewInput().Title("Energía").Value(&w.Energy).Validate(validateScore("energy")),
			huh.NewInput().Title("Sueño").Value(&w.Sleep).Validate(validateScore("sleep")),
			huh.NewInput().Title("Estrés").Value(&w.Stress).Validate(validateScore("stress")),
			huh.NewInput().Title("Bienestar").Value(&w.Wellness).Validate(validateScore("wellness")),
		),
		huh.NewGroup(
			huh.NewInput().Title("Objetivo principal").Value(&w.Primary),
			huh.NewInput().Title("Objetivos secundarios").Description("Separados por comas").Value(&w.Secondary),
			huh.NewText().Title("Motivación").Value(&w.Motivation),
			huh.NewConfirm().Title("¿Marcar como completada?").Value(&w.Complete),
		),
	).WithTheme(huh.ThemeDracula())
}
