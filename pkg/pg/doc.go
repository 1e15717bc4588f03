// Package pg connects to PostgreSQL through a pgx pool, applies goose
// migrations from an embedded filesystem and runs units of work inside a
// transaction.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err := pg.Migrate(ctx, pool, cfg, migrations.FS, log); err != nil { ... }
//
//	err = pg.WithTx(ctx, pool, func(tx pgx.Tx) error {
//	    // every statement here commits or rolls back together
//	    return nil
//	})
package pg
