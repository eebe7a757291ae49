package migrations

import "embed"

// SQL migration files ship inside the binary so cmds can bootstrap a fresh
// database without a checkout.
var (
	//go:embed postgres/*.sql
	PostgresFS embed.FS

	//go:embed clickhouse/*.sql
	ClickhouseFS embed.FS
)
