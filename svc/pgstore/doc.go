// Package pgstore implements the twofactor and auth storage interfaces on
// PostgreSQL through pgx.
//
// Schema migrations are embedded and applied with pg.Migrate:
//
//	if err := pg.Migrate(ctx, pool, cfg, pgstore.Migrations(), log); err != nil {
//		return err
//	}
package pgstore
