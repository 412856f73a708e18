package migrations

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/roadguard/reporter-middleware/pkg/kvstore"
	mghelper "github.com/roadguard/reporter-middleware/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating kv_slots table...")
		return mghelper.CreateSchema(ctx, db, &kvstore.SlotDao{})
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping kv_slots table...")
		return mghelper.DropTables(ctx, db, &kvstore.SlotDao{})
	})
}
