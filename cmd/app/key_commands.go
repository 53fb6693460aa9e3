package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/allisson/keyvault/cmd/app/commands"
	"github.com/allisson/keyvault/internal/app"
	"github.com/allisson/keyvault/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-master-secret",
			Usage: "Generate a new master secret, optionally encrypted with a KMS key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "kms-key-uri",
					Value:   "",
					Sources: cli.EnvVars("KMS_KEY_URI"),
					Usage:   "KMS key URI (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunCreateMasterSecret(
					ctx,
					container.KMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
				)
			},
		},
		{
			Name:  "rotate-master-secret",
			Usage: "Re-seal every stored credential under a new master secret",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "new-master-secret",
					Sources: cli.EnvVars("NEW_MASTER_SECRET"),
					Usage:   "New master secret, KMS encrypted when KMS_KEY_URI is set",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				newMasterSecret := cmd.String("new-master-secret")
				if newMasterSecret == "" {
					return errors.New("--new-master-secret or NEW_MASTER_SECRET is required")
				}

				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				current, err := container.Vault()
				if err != nil {
					return err
				}

				next, nextSecret, err := container.NewVault(ctx, newMasterSecret)
				if err != nil {
					return err
				}
				defer nextSecret.Close()

				rotationUseCase, err := container.RotationUseCase()
				if err != nil {
					return err
				}

				return commands.RunRotateMasterSecret(
					ctx,
					rotationUseCase,
					current,
					next,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
	}
}
