package account

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/reto21d/internal/cli"
	"github.com/julianstephens/reto21d/internal/privacy"
)

type PrivacyCmd struct {
	Consents PrivacyConsentsCmd `cmd:"" help:"Show privacy consents." default:"1"`
	Set      PrivacySetCmd      `cmd:"" help:"Grant or revoke a consent."`
	Export   PrivacyExportCmd   `cmd:"" help:"Export all of your data."`
	Delete   PrivacyDeleteCmd   `cmd:"" help:"Request account deletion or erase local data."`
}

type PrivacyConsentsCmd struct{}

func (c *PrivacyConsentsCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	cs, err := a.Privacy.Consents(ctx.Context())
	if err != nil {
		return err
	}
	for _, row := range []struct {
		name string
		on   bool
	}{
		{privacy.ConsentAnalytics, cs.Analytics},
		{privacy.ConsentMarketing, cs.Marketing},
		{privacy.ConsentDataSharing, cs.DataSharing},
		{privacy.ConsentPhotoStorage, cs.PhotoStorage},
	} {
		mark := "✗"
		if row.on {
			mark = "✓"
		}
		ctx.Printf("%s %s\n", mark, row.name)
	}
	if cs.UpdatedAt != nil {
		ctx.Printf("Last updated %s\n", cs.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

type PrivacySetCmd struct {
	Name  string `arg:"" help:"Consent name (analytics, marketing, dataSharing, photoStorage)."`
	Value bool   `arg:"" help:"true to grant, false to revoke."`
}

func (c *PrivacySetCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if _, err := a.Privacy.UpdateConsent(ctx.Context(), c.Name, c.Value); err != nil {
		return err
	}
	ctx.Printf("Consent %s set to %t\n", c.Name, c.Value)
	return nil
}

type PrivacyExportCmd struct {
	Format string `help:"Export format (json or xlsx)." default:"json"`
	Output string `short:"o" help:"Output file or directory. Defaults to the current directory."`
}

func (c *PrivacyExportCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	format, err := privacy.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	bundle, err := a.ExportBundle(ctx.Context())
	if err != nil {
		return err
	}

	path := c.Output
	if path == "" {
		path = "."
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, privacy.Filename(format, bundle))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := privacy.Export(f, format, bundle); err != nil {
		f.Close()
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	ctx.Printf("✓ Data exported to %s\n", path)
	return nil
}

type PrivacyDeleteCmd struct {
	Local bool `help:"Erase all locally stored data now instead of filing a request."`
	Yes   bool `short:"y" help:"Do not ask for confirmation."`
}

func (c *PrivacyDeleteCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if !c.Local {
		req, err := a.Privacy.RequestDeletion(ctx.Context())
		if err != nil {
			return err
		}
		ctx.Printf("Deletion request %s recorded (%s)\n", req.ID, req.Status)
		return nil
	}

	if !c.Yes {
		return fmt.Errorf("erasing local data cannot be undone; rerun with --yes to confirm")
	}
	ctx.PerformAutomaticBackup()
	n, err := a.ClearLocalData(ctx.Context())
	if err != nil {
		return err
	}
	ctx.Printf("✓ Erased %d stored keys; seed data restored\n", n)
	return nil
}
