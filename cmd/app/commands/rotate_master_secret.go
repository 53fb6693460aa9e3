package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cryptoService "github.com/allisson/keyvault/internal/crypto/service"
	credentialsUseCase "github.com/allisson/keyvault/internal/credentials/usecase"
)

type rotationOutput struct {
	Total   int      `json:"total"`
	Rotated int      `json:"rotated"`
	Skipped []string `json:"skipped"`
}

// RunRotateMasterSecret re-seals every stored credential from the current
// vault to next in one transaction and prints the report. Credentials that do
// not open under the current secret are left as they are and listed.
func RunRotateMasterSecret(
	ctx context.Context,
	rotationUseCase credentialsUseCase.RotationUseCase,
	current, next cryptoService.Sealer,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	report, err := rotationUseCase.Rotate(ctx, current, next)
	if err != nil {
		return fmt.Errorf("failed to rotate master secret: %w", err)
	}

	logger.Info("master secret rotation completed",
		slog.Int("total", report.Total),
		slog.Int("rotated", report.Rotated),
		slog.Int("skipped", len(report.Skipped)),
	)

	output := rotationOutput{
		Total:   report.Total,
		Rotated: report.Rotated,
		Skipped: make([]string, 0, len(report.Skipped)),
	}
	for _, id := range report.Skipped {
		output.Skipped = append(output.Skipped, id.String())
	}

	if format == formatJSON {
		return writeJSON(writer, output)
	}

	_, _ = fmt.Fprintf(writer, "Rotated %d of %d credentials\n", output.Rotated, output.Total)
	if len(output.Skipped) > 0 {
		_, _ = fmt.Fprintf(writer, "Skipped %d credentials that did not open with the current master secret:\n",
			len(output.Skipped))
		for _, id := range output.Skipped {
			_, _ = fmt.Fprintf(writer, "  %s\n", id)
		}
	}
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintln(writer, "# Set MASTER_SECRET to the new value and restart the server.")
	return nil
}
