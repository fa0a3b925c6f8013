package privacy

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/reto21d/internal/models"
)

// Sheet names of the XLSX export
const (
	SheetSummary      = "Resumen"
	SheetHabits       = "Hábitos"
	SheetChallenges   = "Retos"
	SheetProgress     = "Progreso"
	SheetPoints       = "Puntos"
	SheetAchievements = "Logros"
)

type sheet struct {
	name   string
	header []interface{}
	rows   [][]interface{}
}

func writeXLSX(w io.Writer, b models.ExportBundle) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets(b) {
		if i == 0 {
			// the default sheet becomes the summary so it stays active
			f.SetSheetName("Sheet1", s.name)
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}
		if err := f.SetSheetRow(s.name, "A1", &s.header); err != nil {
			return err
		}
		for r, row := range s.rows {
			row := row
			if err := f.SetSheetRow(s.name, fmt.Sprintf("A%d", r+2), &row); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

func sheets(b models.ExportBundle) []sheet {
	summary := sheet{name: SheetSummary, header: []interface{}{"Campo", "Valor"}}
	summary.rows = [][]interface{}{
		{"Exportado", b.ExportedAt.Format(time.RFC3339)},
		{"Puntos totales", b.TotalPoints},
		{"Logros desbloqueados", len(b.Achievements)},
		{"Consentimiento analítica", b.Consents.Analytics},
		{"Consentimiento marketing", b.Consents.Marketing},
		{"Consentimiento datos compartidos", b.Consents.DataSharing},
		{"Consentimiento fotos", b.Consents.PhotoStorage},
		{"Notificaciones", b.NotificationSettings.Enabled},
	}
	if a := b.Assessment; a != nil {
		summary.rows = append(summary.rows,
			[]interface{}{"Peso inicial (kg)", a.PhysicalMeasurements.Weight},
			[]interface{}{"Evaluación inicial completada", a.Completed})
	}
	if a := b.FinalAssessment; a != nil {
		summary.rows = append(summary.rows,
			[]interface{}{"Peso final (kg)", a.PhysicalMeasurements.Weight},
			[]interface{}{"Evaluación final completada", a.Completed})
	}

	habits := sheet{name: SheetHabits, header: []interface{}{"ID", "Nombre", "Categoría", "Meta", "Unidad", "Racha actual", "Mejor racha", "Días completados"}}
	for _, h := range b.Habits {
		habits.rows = append(habits.rows, []interface{}{
			h.ID, h.Name, h.Category, h.Goal.Target, h.Goal.Unit, h.CurrentStreak, h.BestStreak, strings.Join(h.CompletionDates, ", "),
		})
	}

	challenges := sheet{name: SheetChallenges, header: []interface{}{"ID", "Nombre", "Inicio", "Día actual", "Días completados", "Activo", "Completado"}}
	for _, c := range b.Challenges {
		challenges.rows = append(challenges.rows, []interface{}{
			c.ID, c.Name, c.StartDate, c.CurrentDay, joinInts(c.CompletedDays), c.IsActive, c.IsCompleted,
		})
	}
	for _, m := range b.MiniChallenges {
		challenges.rows = append(challenges.rows, []interface{}{
			fmt.Sprintf("mini-%d", m.ID), m.Title, "", m.Progress.Current, joinInts(m.Progress.CompletedDays), "", m.IsCompleted,
		})
	}

	progress := sheet{name: SheetProgress, header: []interface{}{"Día", "Fecha", "Completados", "Total", "%"}}
	for _, p := range b.DayProgress {
		progress.rows = append(progress.rows, []interface{}{p.Day, p.Date, p.HabitsCompleted, p.TotalHabits, p.Percentage()})
	}

	points := sheet{name: SheetPoints, header: []interface{}{"Fecha", "Acción", "Puntos", "Detalle", "Total"}}
	for _, e := range b.PointsHistory {
		points.rows = append(points.rows, []interface{}{e.Timestamp.Format(time.RFC3339), string(e.Action), e.Points, e.Details, e.TotalAfter})
	}

	achievements := sheet{name: SheetAchievements, header: []interface{}{"Logro", "Desbloqueado"}}
	keys := make([]string, 0, len(b.Achievements))
	for k := range b.Achievements {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		achievements.rows = append(achievements.rows, []interface{}{k, b.Achievements[k].UnlockedAt.Format(time.RFC3339)})
	}

	return []sheet{summary, habits, challenges, progress, points, achievements}
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}
