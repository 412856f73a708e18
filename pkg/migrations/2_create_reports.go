package migrations

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/roadguard/reporter-middleware/pkg/pgutil/migrations"
	"github.com/roadguard/reporter-middleware/pkg/reportstore"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating reports table...")
		if err := mghelper.CreateSchema(ctx, db, &reportstore.ReportDao{}); err != nil {
			return err
		}
		// The anchor worker scans by status, report listings filter by reporter.
		return mghelper.CreateModelIndexes(ctx, db, &reportstore.ReportDao{}, "status", "reporter_commitment")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping reports table...")
		return mghelper.DropTables(ctx, db, &reportstore.ReportDao{})
	})
}
