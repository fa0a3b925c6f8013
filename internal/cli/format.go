package cli

import (
	"fmt"
	"strings"

	"github.com/julianstephens/reto21d/internal/models"
)

// PrintUnlocked announces freshly unlocked achievements
func PrintUnlocked(ctx *Context, unlocked []models.Achievement) {
	for _, a := range unlocked {
		ctx.Printf("%s Achievement unlocked: %s (%d pts)\n", a.Icon, a.Name, a.Points)
	}
}

// ProgressBar draws pct (0-100) as a bar of width cells
func ProgressBar(pct, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct * width / 100
	return fmt.Sprintf("[%s%s] %3d%%", strings.Repeat("█", filled), strings.Repeat("░", width-filled), pct)
}

// MaskPassword hides the password of a connection string for display
func MaskPassword(connStr string) string {
	if idx := strings.Index(connStr, "://"); idx != -1 {
		rest := connStr[idx+3:]
		if at := strings.LastIndex(rest, "@"); at != -1 {
			if colon := strings.Index(rest[:at], ":"); colon != -1 {
				return connStr[:idx+3] + rest[:colon] + ":****" + rest[at:]
			}
		}
		return connStr
	}

	fields := strings.Fields(connStr)
	for i, f := range fields {
		if k, _, ok := strings.Cut(f, "="); ok && strings.EqualFold(k, "password") {
			fields[i] = k + "=****"
		}
	}
	return strings.Join(fields, " ")
}
