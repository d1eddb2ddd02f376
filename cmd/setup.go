package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/soundslate/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to the --config path.
//
// An existing file is validated instead of overwritten.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("config file exists, validating", "path", configPath)
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if err := config.Spotify.Validate(); err != nil {
			r.writePlain("⚠ %s exists but is incomplete: %v\n", configPath, err)
			return nil
		}
		return r.writePlain("✓ %s is ready\n", configPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat config: %w", err)
	}

	if err := shared.CreateConfigFile(configPath); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	r.logger.Info("config file created", "path", configPath)

	r.writePlain("✓ Configuration written to %s\n", configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Create an app at https://developer.spotify.com/dashboard\n")
	r.writePlain("2. Add your app URL as a redirect URI and fill in client_id and client_secret\n")
	r.writePlain("3. Run 'soundslate auth login'\n")
	return nil
}
